package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calliope-vn/calliope/internal/analysis"
	"github.com/calliope-vn/calliope/internal/ir"
	"github.com/calliope-vn/calliope/internal/vnmodel"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [project-dir]",
		Short: "Check the storyboard without writing anything",
		Long: `Parse and lower the project's storyboard, then report every problem
found: bad references recorded during lowering and blocks no path
reaches. Nothing is written.

Example:
  calliope validate
  calliope validate ./demo --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

type validateResult struct {
	Valid       bool      `json:"valid"`
	Problems    []Problem `json:"problems,omitempty"`
	Unreachable []string  `json:"unreachable,omitempty"`
}

func (r validateResult) String() string {
	if !r.Valid {
		return fmt.Sprintf("invalid: %d problem(s)", len(r.Problems))
	}
	if len(r.Unreachable) > 0 {
		return fmt.Sprintf("valid, %d unreachable block(s): %s",
			len(r.Unreachable), strings.Join(r.Unreachable, ", "))
	}
	return "valid"
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, m, err := loadProjectModel(args)
	if err != nil {
		formatter.Error(ErrCodeStory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validate failed", err)
	}
	defer closeModel(m)

	result := validateResult{Problems: problemList(m)}
	m.Functions().ForEachSymbol(func(s ir.SymbolOp) {
		fn := s.(*vnmodel.FunctionOp)
		for _, b := range analysis.BuildCFG(fn).Unreachable() {
			result.Unreachable = append(result.Unreachable,
				fmt.Sprintf("%s.%s", fn.SymbolName(), b.Name()))
		}
	})
	result.Valid = len(result.Problems) == 0

	if !result.Valid {
		formatter.Error(ErrCodeProblems,
			fmt.Sprintf("story has %d problem(s)", len(result.Problems)),
			result.Problems)
		return NewExitError(ExitFailure, "validation failed")
	}
	return formatter.Success(result)
}
