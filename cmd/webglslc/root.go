package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/webglsl"
	"github.com/gogpu/webglsl/extension"
	"github.com/gogpu/webglsl/internal/config"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	stderr io.Writer

	cfgFile  string
	verbose  bool
	logLevel string

	cfg     *config.Config
	cfgPath string
	logger  *log.Logger
}

func newApp(stderr io.Writer) *app {
	return &app{stderr: stderr}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "webglslc",
		Short: "Port cross-compiled GLSL shaders to WebGL2",
		Long: titleStyle.Render("webglslc") + subtitleStyle.Render(" - port cross-compiled GLSL shaders to WebGL2") + `

webglslc rewrites GLSL emitted by desktop cross-compilers into source a
WebGL2 context accepts: unsupported #version directives are downgraded,
uniform blocks unwrapped, layout qualifiers stripped and vertex attributes
renamed. Line numbers are preserved.

` + subtitleStyle.Render("Examples:") + `
  webglslc shader unlit.vert             Rewrite one shader to stdout
  webglslc extension scene.gltf          Rewrite every shader of a glTF file
  webglslc watch shaders/                Rewrite shaders as they change
  webglslc config show                   Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./webglsl.yaml or $XDG_CONFIG_HOME/webglsl/webglsl.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		a.shaderCommand(),
		a.extensionCommand(),
		a.watchCommand(),
		a.configCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, path, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	level, err := cfg.Log.LogLevel()
	if err != nil {
		return &ExitError{Code: exitConfig, Err: err}
	}

	a.cfg = cfg
	a.cfgPath = path
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix:          "webglslc",
		Level:           level,
		ReportTimestamp: a.verbose,
	})
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func (a *app) transcoder() (*webglsl.Transcoder, error) {
	opts, err := a.cfg.Rewrite.RewriteOptions()
	if err != nil {
		return nil, &ExitError{Code: exitConfig, Err: err}
	}
	codec, err := a.cfg.Rewrite.Codec()
	if err != nil {
		return nil, &ExitError{Code: exitConfig, Err: err}
	}
	return webglsl.New(webglsl.Options{Rewrite: opts, Codec: codec}), nil
}

func (a *app) processor(t *webglsl.Transcoder) (*extension.Processor, extension.Policy, error) {
	policy, err := a.cfg.Extension.Policy()
	if err != nil {
		return nil, 0, &ExitError{Code: exitConfig, Err: err}
	}
	return extension.NewProcessor(extension.Options{
		Workers:    a.cfg.Extension.Workers,
		Policy:     policy,
		Transcoder: t,
		Logger:     a.logger.WithPrefix("webglslc/extension"),
	}), policy, nil
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintln(a.stderr, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

func (a *app) warn(format string, args ...any) {
	fmt.Fprintln(a.stderr, warningStyle.Render("! ")+fmt.Sprintf(format, args...))
}
