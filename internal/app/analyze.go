// Where: internal/app/analyze.go
// What: Analyze and test-connection command handlers.
// Why: Tie image loading, the credential chain, and the vision call together.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/koloko/image-analyzer/internal/config"
	"github.com/koloko/image-analyzer/internal/identity"
	"github.com/koloko/image-analyzer/internal/ui"
	"github.com/koloko/image-analyzer/internal/vision"
)

const resultBanner = "=================================================="

// runAnalyze executes the main analysis flow: validate the image locally,
// resolve credentials, make one analysis call, print the result.
func runAnalyze(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	settings, err := deps.LoadSettings()
	if err != nil {
		return exitWithError(out, err)
	}

	systemPrompt, userPrompt, err := resolvePrompts(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	// The image is validated before any credential or network work so an
	// unreadable path fails fast.
	image, mime, err := deps.LoadImage(cli.ImagePath)
	if err != nil {
		return exitWithError(out, err)
	}

	analyzer, err := connect(ctx, cli, settings, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	description, err := analyzer.AnalyzeImage(ctx, vision.Request{
		Image:        image,
		MIME:         mime,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    cli.MaxTokens,
		Temperature:  cli.Temperature,
	})
	if err != nil {
		return exitWithError(out, err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, resultBanner)
	fmt.Fprintln(out, "IMAGE ANALYSIS RESULT")
	fmt.Fprintln(out, resultBanner)
	fmt.Fprintln(out, description)
	fmt.Fprintln(out, resultBanner)
	return 0
}

// runTestConnection prints the service configuration and performs a minimal
// completion to verify the endpoint and credentials.
func runTestConnection(cli CLI, deps Dependencies, out io.Writer) int {
	ctx := context.Background()

	settings, err := deps.LoadSettings()
	if err != nil {
		return exitWithError(out, err)
	}

	analyzer, err := connect(ctx, cli, settings, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	info := analyzer.ServiceInfo()
	console.Header("⚙️", "Azure OpenAI configuration")
	console.Item("endpoint", info.Endpoint)
	console.Item("deployment", info.Deployment)
	console.Item("api version", info.APIVersion)
	console.Item("authentication", info.AuthMode)

	console.Info("Testing connection...")
	if err := analyzer.TestConnection(ctx); err != nil {
		console.Failure(fmt.Sprintf("Connection failed: %v", err))
		return 1
	}
	console.Success("Connection successful!")
	return 0
}

// connect resolves the credential chain and builds the analyzer over the
// winning credential.
func connect(ctx context.Context, cli CLI, settings config.Settings, deps Dependencies) (ImageAnalyzer, error) {
	clientID := strings.TrimSpace(cli.ClientID)
	if clientID == "" {
		clientID = settings.ClientID
	}

	resolver := deps.NewResolver(identity.Options{
		ClientID:    clientID,
		Interactive: cli.InteractiveLogin,
		Logger:      deps.Logger,
	})
	cred, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	return deps.NewAnalyzer(vision.Config{
		Endpoint:   settings.Endpoint,
		Deployment: settings.Deployment,
		APIVersion: settings.APIVersion,
		Credential: cred,
		AuthLabel:  resolver.SelectedSource(),
	}), nil
}

// resolvePrompts merges preset prompts with explicit flag overrides. Presets
// only participate when --preset is given; otherwise the analyzer's own
// default prompt applies.
func resolvePrompts(cli CLI, deps Dependencies) (systemPrompt, userPrompt string, err error) {
	systemPrompt = cli.SystemPrompt
	userPrompt = cli.Prompt
	if cli.Preset == "" {
		return systemPrompt, userPrompt, nil
	}

	presets, err := deps.LoadPresets(cli.PresetsFile)
	if err != nil {
		return "", "", err
	}
	preset, ok := presets.Find(cli.Preset)
	if !ok {
		return "", "", fmt.Errorf("unknown preset %q (available: %s)", cli.Preset, strings.Join(presets.Names(), ", "))
	}
	if systemPrompt == "" {
		systemPrompt = preset.System
	}
	if userPrompt == "" {
		userPrompt = preset.Prompt
	}
	return systemPrompt, userPrompt, nil
}
