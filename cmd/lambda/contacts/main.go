package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"contacts-function/internal/config"
	"contacts-function/internal/logger"
	"contacts-function/pkg/function"
	"contacts-function/pkg/server"
)

// API Gateway must map the resource to /contacts/{id+} or /contacts/{id}
// so the id arrives as a path parameter.
func main() {
	log, err := logger.Setup(config.GetEnv("LOG_LEVEL", "info"), "json")
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	manager := server.GetConnectionManager(log)

	handle := func(ctx context.Context, req *function.Request) (*function.Response, error) {
		container, err := manager.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return container.Contacts.Handle(ctx, req)
	}

	awslambda.Start(function.APIGatewayHandler(handle, log))
}
