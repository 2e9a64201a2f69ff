package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/calliope-vn/calliope/internal/ir"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	HTML bool
	Out  string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump [project-dir]",
		Short: "Print the lowered story model",
		Long: `Lower the project's storyboard and print the model in the IR text
form, with value numbers and source locations. Useful for inspecting
what the frontend actually built.

Example:
  calliope dump
  calliope dump --html -o story.html`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "emit an HTML document instead of plain text")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write to a file instead of stdout")

	return cmd
}

func runDump(opts *DumpOptions, args []string, cmd *cobra.Command) error {
	_, m, err := loadProjectModel(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "dump failed", err)
	}
	defer closeModel(m)

	out := cmd.OutOrStdout()
	if opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return WrapExitError(ExitCommandError, "create dump file", err)
		}
		defer f.Close()
		out = f
	}

	wr := ir.NewWriter(out)
	if opts.HTML {
		wr = ir.NewHTMLWriter(out)
	}
	if err := wr.WriteOp(m); err != nil {
		return WrapExitError(ExitCommandError, "write dump", err)
	}
	return nil
}
