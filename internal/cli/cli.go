package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vk/heacheck/internal/app"
	"github.com/vk/heacheck/internal/report"
)

// Exit codes. ExitFailure covers both a report with errors and a check
// that could not run.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// options collects every flag value before it becomes an app.Config.
type options struct {
	logLevel         string
	logFormat        string
	includes         []string
	excludes         []string
	skipStructure    bool
	hotspotThreshold int

	output      string
	dotPath     string
	mermaidPath string
	watch       bool
	debounce    time.Duration

	format string
}

func (o *options) config(args []string) (*app.Config, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	slog.Debug("Project root determined.", "root", root)

	cfg := app.Config{
		Root:             root,
		Includes:         o.includes,
		LogLevel:         strings.ToLower(o.logLevel),
		LogFormat:        strings.ToLower(o.logFormat),
		Output:           strings.ToLower(o.output),
		DotPath:          o.dotPath,
		MermaidPath:      o.mermaidPath,
		SkipStructure:    o.skipStructure,
		HotspotThreshold: o.hotspotThreshold,
		Watch:            o.watch,
		Debounce:         o.debounce,
	}
	// Leave Excludes nil unless the flag was given so the defaults apply.
	if len(o.excludes) > 0 {
		cfg.Excludes = o.excludes
	}

	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return c, nil
}

// NewRootCmd creates the heacheck command with its subcommands. Reports and
// graphs are written to outW, logs to errW.
func NewRootCmd(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "heacheck",
		Short: "heacheck - validate layered (HEA) architectures and graph their dependencies",
		Long: `heacheck discovers layer manifests (layer.hcl, layer.yaml, layer.yml) under a
project root, checks them against the HEA layer rules and analyses the
resulting dependency graph.`,
		Version:       app.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringArrayVar(&opts.includes, "include", nil, "Glob selecting manifest files, relative to the root (repeatable).")
	pf.StringArrayVar(&opts.excludes, "exclude", nil, "Glob excluding files and directories, relative to the root (repeatable).")
	pf.BoolVar(&opts.skipStructure, "skip-structure", false, "Skip the pipe/index file checks.")
	pf.IntVar(&opts.hotspotThreshold, "hotspot-threshold", 0, "Fan-out at which a module is reported as a hotspot. 0 uses the default.")

	root.AddCommand(newValidateCmd(opts, outW, errW))
	root.AddCommand(newGraphCmd(opts, outW, errW))
	return root
}

func newValidateCmd(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [ROOT]",
		Short: "Check every layer under ROOT and print a report",
		Args:  rootArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(args)
			if err != nil {
				return err
			}
			if err := app.NewApp(outW, errW, cfg).Run(cmd.Context()); err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", report.FormatText, "Report format. Options: "+strings.Join(report.Formats, ", ")+".")
	f.StringVar(&opts.dotPath, "dot", "", "Also write the layer graph as Graphviz DOT to this file.")
	f.StringVar(&opts.mermaidPath, "mermaid", "", "Also write the layer graph as Mermaid to this file.")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Re-run the checks whenever files under ROOT change.")
	f.DurationVar(&opts.debounce, "debounce", 0, "Quiet period before re-running in watch mode. 0 uses the default.")
	return cmd
}

func newGraphCmd(opts *options, outW, errW io.Writer) *cobra.Command {
	formats := []string{app.FormatDot, app.FormatMermaid, app.FormatModuleDot}
	cmd := &cobra.Command{
		Use:   "graph [ROOT]",
		Short: "Print the dependency graph of the layers under ROOT",
		Args:  rootArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(opts.format)
			if !slices.Contains(formats, format) {
				return usageError("invalid format %q: must be one of %s", opts.format, strings.Join(formats, ", "))
			}
			cfg, err := opts.config(args)
			if err != nil {
				return err
			}
			if err := app.NewApp(outW, errW, cfg).WriteGraph(cmd.Context(), format); err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", app.FormatDot, "Graph format. Options: "+strings.Join(formats, ", ")+".")
	return cmd
}

func rootArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return usageError("%s", err.Error())
	}
	return nil
}

// Execute runs the command tree with args. Every returned error is an
// *ExitError; errors raised by cobra itself, such as unknown commands, are
// usage errors.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	slog.Debug("CLI parser started.")
	root := NewRootCmd(outW, errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError("%s", err.Error())
}
