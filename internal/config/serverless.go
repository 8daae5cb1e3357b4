package config

import (
	"os"
	"path/filepath"
)

// Platform identifies the host the function runs on
type Platform string

const (
	PlatformAzureFunctions Platform = "azure-functions"
	PlatformLambda         Platform = "aws-lambda"
	PlatformNone           Platform = "server"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	Platform     Platform
	FunctionName string
	Region       string
}

// DetectServerless inspects the variables set by the hosting runtime
func DetectServerless() *ServerlessConfig {
	switch {
	case os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "":
		return &ServerlessConfig{
			Platform:     PlatformLambda,
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       GetEnv("AWS_REGION", os.Getenv("AWS_DEFAULT_REGION")),
		}
	case os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT") != "" || os.Getenv("FUNCTIONS_WORKER_RUNTIME") != "":
		return &ServerlessConfig{
			Platform:     PlatformAzureFunctions,
			FunctionName: os.Getenv("WEBSITE_SITE_NAME"),
			Region:       os.Getenv("REGION_NAME"),
		}
	default:
		return &ServerlessConfig{Platform: PlatformNone}
	}
}

// IsServerless returns true when a function host was detected
func (s *ServerlessConfig) IsServerless() bool {
	return s.Platform != PlatformNone
}

// AdaptConfigForServerless modifies configuration for serverless deployment
func AdaptConfigForServerless(config *Config, serverless *ServerlessConfig) *Config {
	if !serverless.IsServerless() {
		return config
	}

	// json logs unless a format was chosen explicitly
	if os.Getenv("LOG_FORMAT") == "" {
		config.Log.Format = "json"
	}

	// Only /tmp is writable on Lambda
	if serverless.Platform == PlatformLambda && config.Storage.Backend == "sqlite" && !filepath.IsAbs(config.Database.Path) {
		config.Database.Path = filepath.Join(os.TempDir(), filepath.Base(config.Database.Path))
	}

	return config
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(config, DetectServerless()), nil
}
