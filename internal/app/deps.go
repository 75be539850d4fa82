// Where: internal/app/deps.go
// What: Injected dependencies for CLI command execution.
// Why: Allow swapping the credential chain and analyzer in tests.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/koloko/image-analyzer/internal/config"
	"github.com/koloko/image-analyzer/internal/identity"
	"github.com/koloko/image-analyzer/internal/vision"
)

// TokenResolver resolves the credential chain to one usable credential.
type TokenResolver interface {
	Resolve(ctx context.Context) (azcore.TokenCredential, error)
	SelectedSource() string
}

// ImageAnalyzer is the analysis surface the commands depend on.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, req vision.Request) (string, error)
	TestConnection(ctx context.Context) error
	ServiceInfo() vision.ServiceInfo
}

// Dependencies holds all injected dependencies required for CLI command
// execution. Zero-value fields are replaced with production defaults.
type Dependencies struct {
	Out          io.Writer
	Logger       *slog.Logger
	LoadSettings func() (config.Settings, error)
	LoadPresets  func(path string) (config.Presets, error)
	LoadImage    func(path string) ([]byte, string, error)
	NewResolver  func(identity.Options) TokenResolver
	NewAnalyzer  func(vision.Config) ImageAnalyzer
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if d.LoadSettings == nil {
		d.LoadSettings = config.LoadSettings
	}
	if d.LoadPresets == nil {
		d.LoadPresets = config.LoadPresets
	}
	if d.LoadImage == nil {
		d.LoadImage = vision.LoadImage
	}
	if d.NewResolver == nil {
		d.NewResolver = func(opts identity.Options) TokenResolver {
			return identity.NewChain(opts)
		}
	}
	if d.NewAnalyzer == nil {
		d.NewAnalyzer = func(cfg vision.Config) ImageAnalyzer {
			return vision.New(cfg)
		}
	}
	return d
}
