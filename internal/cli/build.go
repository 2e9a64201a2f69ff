package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calliope-vn/calliope/internal/irjson"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [project-dir]",
		Short: "Lower the storyboard and write the serialized model",
		Long: `Lower the project's storyboard to the story model and write its
canonical serialized form into the output directory.

The written model.json is the exchange format the other commands and
the export cache key on. Lowering problems are reported and the model
is still written; the exit code tells them apart.

Example:
  calliope build
  calliope build ./demo --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, args, cmd)
		},
	}
	return cmd
}

type buildResult struct {
	Model      string    `json:"model"`
	ContentKey string    `json:"content_key"`
	Problems   []Problem `json:"problems,omitempty"`
}

func (r buildResult) String() string {
	return fmt.Sprintf("wrote %s (key %s)", r.Model, r.ContentKey)
}

func runBuild(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	p, m, err := loadProjectModel(args)
	if err != nil {
		formatter.Error(ErrCodeStory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "build failed", err)
	}
	defer closeModel(m)

	doc, err := irjson.ExportBytes(m)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "serialize model", err)
	}
	key, err := irjson.ExportContentKey(m)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "content key", err)
	}

	if err := os.MkdirAll(p.OutputDir(), 0o755); err != nil {
		formatter.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create output directory", err)
	}
	dest := filepath.Join(p.OutputDir(), "model.json")
	if err := os.WriteFile(dest, doc, 0o644); err != nil {
		formatter.Error(ErrCodeWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write model", err)
	}
	slog.Debug("model written", "path", dest, "bytes", len(doc))

	result := buildResult{Model: dest, ContentKey: key, Problems: problemList(m)}
	if len(result.Problems) > 0 {
		formatter.Error(ErrCodeProblems,
			fmt.Sprintf("story lowered with %d problem(s)", len(result.Problems)),
			result.Problems)
		return NewExitError(ExitFailure, "story has problems")
	}
	return formatter.Success(result)
}
