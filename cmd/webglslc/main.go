// Command webglslc ports cross-compiled GLSL shaders to WebGL2.
//
// Usage:
//
//	webglslc <command> [options]
//
// Examples:
//
//	webglslc shader unlit.vert                  # Rewrite to stdout
//	webglslc shader --stage fragment -o out.glsl in.glsl
//	webglslc extension -o scene.webgl.gltf scene.gltf
//	webglslc watch --out build/webgl shaders/
//	webglslc config show                        # Print effective settings
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

func main() {
	a := newApp(os.Stderr)
	if err := fang.Execute(
		context.Background(),
		a.rootCommand(),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitFailure)
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
