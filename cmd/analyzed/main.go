// Where: cmd/analyzed/main.go
// What: Web UI daemon entrypoint.
// Why: Serve the upload form and JSON API over the shared analysis path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/koloko/image-analyzer/internal/config"
	"github.com/koloko/image-analyzer/internal/identity"
	"github.com/koloko/image-analyzer/internal/vision"
	"github.com/koloko/image-analyzer/internal/webui"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	clientID := flag.String("client-id", "", "client ID of a user-assigned managed identity")
	envFile := flag.String("env-file", "", "path to .env file")
	presetsFile := flag.String("presets-file", "", "path to the prompt presets file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*addr, *clientID, *envFile, *presetsFile, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, clientID, envFile string, presetsFile string, logger *slog.Logger) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logger.Warn("failed to load .env", "error", err)
		}
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if clientID == "" {
		clientID = settings.ClientID
	}

	presets, err := config.LoadPresets(presetsFile)
	if err != nil {
		return err
	}

	// The chain is resolved once at startup so misconfigured identity fails
	// fast instead of on the first upload. Interactive login is never part
	// of the daemon chain; servers are headless.
	resolver := identity.NewChain(identity.Options{ClientID: clientID, Logger: logger})
	cred, err := resolver.Resolve(context.Background())
	if err != nil {
		return err
	}
	logger.Info("credential resolved", "source", resolver.SelectedSource())

	analyzer := vision.New(vision.Config{
		Endpoint:   settings.Endpoint,
		Deployment: settings.Deployment,
		APIVersion: settings.APIVersion,
		Credential: cred,
		AuthLabel:  resolver.SelectedSource(),
	})

	server, err := webui.New(analyzer, presets, logger)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	server.Register(e)

	logger.Info("serving web ui", "addr", addr, "endpoint", settings.Endpoint, "deployment", settings.Deployment)
	return e.Start(addr)
}
