package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coecms/qtools/internal/qtools"
)

func jobsCmd(app *qtools.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs [job ids...]",
		Short: "List jobs with their SU charges",
		Long: `List jobs with their SU charges.

Jobs are read from the first configured source that works. qstat and nqstat report what the
scheduler knows; pbsnodes rebuilds jobs from the node inventory and shares node memory evenly
between the jobs on a node.

Without --walltime the charge for one hour is shown.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, app)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := jobsOptions(cmd)
			if err != nil {
				return err
			}
			return app.Jobs(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().StringSlice("source", nil, "Job sources to try in order: qstat, nqstat, pbsnodes (default from config)")
	cmd.Flags().StringP("project", "P", "", "Project to query with nqstat")
	cmd.Flags().BoolP("finished", "x", false, "Include finished jobs in qstat queries")
	addOutputFlag(cmd.Flags())
	cmd.Flags().StringP("walltime", "w", "", "Charge for this walltime (H:MM:SS) instead of per hour")
	return cmd
}

func jobsOptions(cmd *cobra.Command) (qtools.JobsOptions, error) {
	opts := qtools.JobsOptions{}
	var err error
	if opts.Sources, err = cmd.Flags().GetStringSlice("source"); err != nil {
		return opts, err
	}
	if opts.Project, err = cmd.Flags().GetString("project"); err != nil {
		return opts, err
	}
	if opts.Finished, err = cmd.Flags().GetBool("finished"); err != nil {
		return opts, err
	}
	if opts.Walltime, err = cmd.Flags().GetString("walltime"); err != nil {
		return opts, err
	}
	opts.Output, err = outputFormat(cmd)
	return opts, err
}

func addOutputFlag(flags *pflag.FlagSet) {
	flags.StringP("output", "o", string(qtools.TableFormat), "Output format: table, json or yaml")
}

func outputFormat(cmd *cobra.Command) (qtools.OutputFormat, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	return qtools.ParseOutputFormat(output)
}
