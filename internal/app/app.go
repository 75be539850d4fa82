// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/koloko/image-analyzer/internal/version"
)

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	ImagePath        string  `arg:"" optional:"" help:"Path to the image file to analyze"`
	Prompt           string  `help:"Custom prompt for image analysis"`
	SystemPrompt     string  `name:"system-prompt" help:"Custom system prompt to guide the model's behavior"`
	Preset           string  `help:"Named prompt preset from the presets file"`
	PresetsFile      string  `name:"presets-file" help:"Path to the prompt presets file (default: prompts.yaml)"`
	ClientID         string  `name:"client-id" help:"Client ID of a user-assigned managed identity"`
	InteractiveLogin bool    `name:"interactive-login" help:"Allow interactive browser login as a last resort"`
	EnvFile          string  `name:"env-file" help:"Path to .env file"`
	MaxTokens        int     `name:"max-tokens" default:"1000" help:"Maximum tokens in the response"`
	Temperature      float64 `default:"0.1" help:"Response temperature (0.0-1.0)"`
	TestConnection   bool    `name:"test-connection" help:"Verify endpoint and credentials, then exit"`
	Version          bool    `help:"Show version information"`
}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments and dispatches to the appropriate
// handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	deps = deps.withDefaults()
	out := deps.Out

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("analyze"),
		kong.Description("Analyze images using an Azure OpenAI vision deployment."),
	)
	if err != nil {
		return exitWithError(out, err)
	}
	if _, err := parser.Parse(args); err != nil {
		return exitWithError(out, err)
	}

	loadEnvFile(cli.EnvFile, out)

	switch {
	case cli.Version:
		fmt.Fprintln(out, version.GetVersion())
		return 0
	case cli.TestConnection:
		return runTestConnection(cli, deps, out)
	case cli.ImagePath == "":
		return runInfo(cli, deps, out)
	default:
		return runAnalyze(cli, deps, out)
	}
}

// loadEnvFile loads the named env file, or a .env in the current directory
// when none is given. Load failures are warnings, not fatal.
func loadEnvFile(path string, out io.Writer) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", path, err)
		}
		return
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
