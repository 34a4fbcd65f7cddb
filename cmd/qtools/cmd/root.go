package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coecms/qtools/internal/common"
	"github.com/coecms/qtools/internal/qtools"
	"github.com/coecms/qtools/internal/qtools/configuration"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qtools",
		Short: "qtools reports PBS job charges on Gadi.",
		Long: `qtools reports PBS job charges on Gadi.

It computes the service unit (SU) charge of a job request, lists jobs with their charges and can
rebuild job records from pbsnodes when qstat is unavailable.

Queue charging rates, node names and PBS settings can be overridden in a YAML config file.

Example structure:
queues:
  normal:
    chargeRate: 2
    memPerCpu: 4Gi
    coresPerNode: 48
pbs:
  sources: [qstat, pbsnodes]

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.qtools.yaml is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file (default is $HOME/.qtools.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(
		costCmd(qtools.New()),
		jobsCmd(qtools.New()),
		nodesCmd(qtools.New()),
		repairCmd(qtools.New()),
		versionCmd(qtools.New()),
	)

	return cmd
}

// initParams applies the persistent flags and loads the configuration into app.
func initParams(cmd *cobra.Command, app *qtools.App) error {
	common.SetVerbose(viper.GetBool("verbose"))

	config, err := configuration.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	app.Params.Config = config
	app.Out = cmd.OutOrStdout()
	app.In = cmd.InOrStdin()
	return nil
}
