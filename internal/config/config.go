// Where: internal/config/config.go
// What: Environment-driven service settings.
// Why: Keep endpoint/deployment resolution in one place for CLI and daemon.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names consumed at startup.
const (
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvAPIVersion = "AZURE_OPENAI_API_VERSION"
	EnvClientID   = "AZURE_CLIENT_ID"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultDeployment = "gpt-4o"
	DefaultAPIVersion = "2024-12-01-preview"
)

// Settings holds the resolved Azure OpenAI service configuration.
type Settings struct {
	Endpoint   string
	Deployment string
	APIVersion string
	ClientID   string
}

// LoadSettings reads service settings from the environment and applies
// defaults. The endpoint is the only required value.
func LoadSettings() (Settings, error) {
	settings := Settings{
		Endpoint:   strings.TrimSpace(os.Getenv(EnvEndpoint)),
		Deployment: strings.TrimSpace(os.Getenv(EnvDeployment)),
		APIVersion: strings.TrimSpace(os.Getenv(EnvAPIVersion)),
		ClientID:   strings.TrimSpace(os.Getenv(EnvClientID)),
	}
	if settings.Endpoint == "" {
		return Settings{}, fmt.Errorf(
			"%s environment variable is required; set it to your Azure OpenAI endpoint URL",
			EnvEndpoint,
		)
	}
	if settings.Deployment == "" {
		settings.Deployment = DefaultDeployment
	}
	if settings.APIVersion == "" {
		settings.APIVersion = DefaultAPIVersion
	}
	return settings, nil
}
