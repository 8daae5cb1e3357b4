package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"contacts-function/docs"
	"contacts-function/internal/config"
	"contacts-function/internal/logger"
	"contacts-function/pkg/server"
)

// Serves the contacts resource over HTTP. Under Azure Functions this binary is
// the custom handler and listens on FUNCTIONS_CUSTOMHANDLER_PORT.
func main() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	docs.SwaggerInfo.BasePath = "/" + cfg.RoutePrefix

	ctx := context.Background()
	container, err := server.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           container.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.WithFields(logrus.Fields{
		"port":         cfg.Port,
		"route_prefix": cfg.RoutePrefix,
		"backend":      cfg.Storage.Backend,
		"table":        cfg.Storage.TableName,
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
