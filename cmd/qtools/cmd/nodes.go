package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coecms/qtools/internal/qtools"
)

func nodesCmd(app *qtools.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List execution nodes and their jobs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			return app.Nodes(cmd.Context(), format)
		},
	}
	addOutputFlag(cmd.Flags())
	return cmd
}
