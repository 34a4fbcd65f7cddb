package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/qtools"
)

func costCmd(app *qtools.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost <queue> <ncpus> <mem> <walltime>",
		Short: "Print the SU charge of a job request",
		Long: `Print the SU charge of a job request.

Memory is given as <digits>GB or <digits>MB and walltime as H:MM:SS, e.g.

  qtools cost normal 48 190GB 10:00:00`,
		Args: cobra.ExactArgs(4),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ncpus, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return errors.WithStack(&pbserrors.ErrInvalidArgument{
					Name:    "ncpus",
					Value:   args[1],
					Message: "expected a whole number",
				})
			}
			breakdown, err := cmd.Flags().GetBool("breakdown")
			if err != nil {
				return err
			}
			return app.Cost(args[0], ncpus, args[2], args[3], breakdown)
		},
	}
	cmd.Flags().BoolP("breakdown", "b", false, "Show how the charge is calculated")
	return cmd
}
