// Where: cmd/analyze/main.go
// What: CLI entrypoint.
// Why: Execute the analyze command with configured dependencies.
package main

import (
	"os"

	"github.com/koloko/image-analyzer/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
