package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/telemetry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┌┐┌┌┬┐┌─┐┌─┐┌┬┐┌─┐┌─┐┌┐┌
  │  │ ││││ │ ├┤ └─┐ │ │ ┬├┤ │││
  └─┘└─┘┘└┘ ┴ └─┘└─┘ ┴ └─┘└─┘┘└┘
`

// Standard streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

var useColor = true

// globals holds state shared by every command for one invocation.
type globals struct {
	verbose     bool
	noColor     bool
	metricsFile string

	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code.
func run(args []string) int {
	g := &globals{}
	rootCmd := newRootCmd(g)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if mErr := g.writeMetrics(); mErr != nil && err == nil {
		err = mErr
	}
	if err != nil {
		errors.Fprint(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(g *globals) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contestgen",
		Short: "Solution skeletons for programming contests",
		Long: `contestgen renders {{scope.field}} templates into solution skeletons.

For each problem of a contest it writes a solution file and a test file
per language, plus a README and .gitignore for the contest workspace.
Existing files are never overwritten unless --force is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.setup()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&g.metricsFile, "metrics-file", "", "Write render metrics to this file in Prometheus text format")

	rootCmd.AddCommand(
		renderCmd(g),
		newCmd(g),
		initCmd(g),
		templatesCmd(g),
		versionCmd(),
	)
	return rootCmd
}

func (g *globals) setup() {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	g.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	g.telemetry = telemetry.New()

	useColor = !g.noColor
	if g.noColor {
		errors.DisableColors()
	} else {
		errors.EnableColors()
	}
}

// writeMetrics dumps the collected metrics when a metrics file was
// requested by flag or configuration.
func (g *globals) writeMetrics() error {
	if g.metricsFile == "" || g.telemetry == nil {
		return nil
	}
	if err := g.telemetry.WriteTextfile(g.metricsFile); err != nil {
		return err
	}
	g.logger.Debug("metrics written", "path", g.metricsFile)
	return nil
}

// printBanner prints the contestgen banner.
func printBanner() {
	fmt.Fprint(stdout, banner)
}

func paint(code, text string) string {
	if !useColor {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}
