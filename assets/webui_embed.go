// Where: assets/webui_embed.go
// What: Embed web UI templates for the analyzer daemon.
// Why: Ship the single-page form inside the binary.
package assets

import "embed"

//go:embed templates/*.tmpl
var WebTemplatesFS embed.FS
