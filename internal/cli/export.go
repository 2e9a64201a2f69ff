package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calliope-vn/calliope/internal/exportcache"
	"github.com/calliope-vn/calliope/internal/export/renpy"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [project-dir]",
		Short: "Generate the visual novel script and assets",
		Long: `Lower the project's storyboard and emit every target the manifest
lists into the output directory. Artifacts are cached by model content,
so re-exporting an unchanged story is a database read.

A story with lowering problems still exports; the problems land in the
script as comments and the command exits nonzero.

Example:
  calliope export
  calliope export ./demo --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, args, cmd)
		},
	}
	return cmd
}

type exportResult struct {
	Script   string    `json:"script"`
	Cached   bool      `json:"cached"`
	Assets   int       `json:"assets"`
	Problems []Problem `json:"problems,omitempty"`
}

func (r exportResult) String() string {
	if r.Cached {
		return fmt.Sprintf("wrote %s (cached), %d asset(s)", r.Script, r.Assets)
	}
	return fmt.Sprintf("wrote %s, %d asset(s)", r.Script, r.Assets)
}

func runExport(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p, m, err := loadProjectModel(args)
	if err != nil {
		formatter.Error(ErrCodeStory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export failed", err)
	}
	defer closeModel(m)
	for _, target := range p.Targets {
		if target != renpy.Target {
			err := fmt.Errorf("unknown export target %q", target)
			formatter.Error(ErrCodeExport, err.Error(), nil)
			return WrapExitError(ExitCommandError, "export failed", err)
		}
	}

	if err := os.MkdirAll(p.OutputDir(), 0o755); err != nil {
		formatter.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create output directory", err)
	}

	cache, err := exportcache.Open(p.CachePath())
	if err != nil {
		formatter.Error(ErrCodeExport, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open export cache", err)
	}
	defer func() {
		if closeErr := cache.Close(); closeErr != nil {
			slog.Error("closing export cache", "error", closeErr)
		}
	}()

	script, cached, err := renpy.ExportCached(cmd.Context(), cache, m)
	if err != nil {
		formatter.Error(ErrCodeExport, err.Error(), nil)
		return WrapExitError(ExitCommandError, "generate script", err)
	}
	slog.Debug("script generated", "bytes", len(script), "cached", cached)

	dest := filepath.Join(p.OutputDir(), "script.rpy")
	if err := os.WriteFile(dest, script, 0o644); err != nil {
		formatter.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write script", err)
	}
	if err := renpy.WriteAssets(m, p.OutputDir()); err != nil {
		formatter.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write assets", err)
	}

	result := exportResult{
		Script:   dest,
		Cached:   cached,
		Assets:   m.Assets().NumSymbols(),
		Problems: problemList(m),
	}
	if len(result.Problems) > 0 {
		formatter.Error(ErrCodeProblems,
			fmt.Sprintf("exported with %d problem(s)", len(result.Problems)),
			result.Problems)
		return NewExitError(ExitFailure, "story has problems")
	}
	return formatter.Success(result)
}
