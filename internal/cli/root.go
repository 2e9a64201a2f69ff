// Package cli implements the calliope command tree.
//
// Every command resolves its project the same way: an optional
// directory argument, the nearest calliope.cue manifest at or above it,
// and the storyboard the manifest names. Diagnostics found while
// lowering are data, not log lines; they flow through the output
// formatter so --format json stays machine-readable.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/calliope-vn/calliope/internal/frontend"
	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/project"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the calliope CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "calliope",
		Short: "Calliope storyboard compiler",
		Long:  "Compile storyboard documents into visual novel scripts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// configureLogging routes slog to stderr so JSON output on stdout stays
// intact.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// resolveProject finds and loads the manifest for the optional
// directory argument, defaulting to the working directory.
func resolveProject(args []string) (*project.Project, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	manifest, err := project.Find(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("using manifest", "path", manifest)
	return project.Load(manifest)
}

// loadProjectModel resolves the project and lowers its storyboard.
func loadProjectModel(args []string) (*project.Project, *vnmodel.ModelOp, error) {
	p, err := resolveProject(args)
	if err != nil {
		return nil, nil, err
	}
	ctx := ir.NewContext()
	slog.Debug("loading storyboard", "path", p.StoryboardPath())
	m, err := frontend.LoadModel(ctx, p.StoryboardPath())
	if err != nil {
		return nil, nil, err
	}
	return p, m, nil
}

// closeModel releases the per-compilation asset backing storage once a
// command is done with the model.
func closeModel(m *vnmodel.ModelOp) {
	if err := m.Context().Close(); err != nil {
		slog.Warn("removing asset backing directory", "error", err)
	}
}

// problemList renders the model's ErrorOps for output.
func problemList(m *vnmodel.ModelOp) []Problem {
	var out []Problem
	for _, e := range vnmodel.CollectErrors(m) {
		out = append(out, Problem{
			Code:     e.Code(),
			Message:  e.Message(),
			Location: e.Base().Loc().String(),
		})
	}
	return out
}

// Problem is one diagnostic in command output.
type Problem struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: [%s] %s", p.Location, p.Code, p.Message)
}
