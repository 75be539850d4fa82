// Where: cmd/analyze/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"log/slog"
	"os"

	"github.com/koloko/image-analyzer/internal/app"
	"github.com/koloko/image-analyzer/internal/identity"
	"github.com/koloko/image-analyzer/internal/vision"
)

var newLogger = func() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// buildDependencies constructs the production dependency set: the real
// credential chain and the Azure-backed analyzer, with diagnostics on stderr
// so they never mix with command output.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:    os.Stdout,
		Logger: newLogger(),
		NewResolver: func(opts identity.Options) app.TokenResolver {
			return identity.NewChain(opts)
		},
		NewAnalyzer: func(cfg vision.Config) app.ImageAnalyzer {
			return vision.New(cfg)
		},
	}
}
