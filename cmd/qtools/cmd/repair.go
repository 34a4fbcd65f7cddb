package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coecms/qtools/internal/qtools"
)

func repairCmd(app *qtools.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Fix the string escaping of qstat -F json output",
		Long: `Fix the string escaping of qstat -F json output.

Reads the file, or standard input if none is given, and writes valid JSON, e.g.

  qstat -f -F json | qtools repair | jq .`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return app.Repair(path)
		},
	}
	return cmd
}
