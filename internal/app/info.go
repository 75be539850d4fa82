// Where: internal/app/info.go
// What: Configuration summary for invocations without an image path.
// Why: Give users a quick view of the service setup and usage examples.
package app

import (
	"io"

	"github.com/koloko/image-analyzer/internal/ui"
	"github.com/koloko/image-analyzer/internal/version"
)

// runInfo displays the resolved service configuration and usage hints.
// Invoked when analyze is called without an image path.
func runInfo(_ CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)

	console.Header("⚙️", "Azure OpenAI configuration")
	console.Item("version", version.GetVersion())

	settings, err := deps.LoadSettings()
	if err != nil {
		console.ItemPlain(err.Error())
	} else {
		console.Item("endpoint", settings.Endpoint)
		console.Item("deployment", settings.Deployment)
		console.Item("api version", settings.APIVersion)
		if settings.ClientID != "" {
			console.Item("client id", settings.ClientID)
		}
	}

	console.Header("💡", "Usage")
	console.ItemPlain("analyze image.jpg")
	console.ItemPlain(`analyze image.png --prompt "Describe the technical aspects of this diagram"`)
	console.ItemPlain(`analyze photo.jpg --system-prompt "You are a technical analyst"`)
	console.ItemPlain("analyze --test-connection")

	return 1
}
