package function

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// FromAPIGatewayRequest converts an API Gateway proxy event to a generic request
func FromAPIGatewayRequest(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
	}, nil
}

// ToAPIGatewayResponse converts a generic response to an API Gateway proxy response
func ToAPIGatewayResponse(resp *Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}

// APIGatewayHandler adapts h to the signature expected by lambda.Start.
// Handler errors become 500 responses rather than Lambda invocation errors.
func APIGatewayHandler(h HandlerFunc, logger logrus.FieldLogger) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req, err := FromAPIGatewayRequest(event)
		if err != nil {
			logger.WithError(err).Warn("Rejected malformed API Gateway event")
			resp, _ := JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return ToAPIGatewayResponse(resp), nil
		}

		return ToAPIGatewayResponse(Invoke(ctx, h, req, logger)), nil
	}
}
