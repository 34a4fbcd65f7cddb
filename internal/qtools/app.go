// Package qtools implements the operations behind the qtools command line.
package qtools

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/accounting"
	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/pbs/pbsnodes"
	"github.com/coecms/qtools/internal/pbs/reconcile"
	"github.com/coecms/qtools/internal/pbs/runner"
	"github.com/coecms/qtools/internal/pbs/source"
	"github.com/coecms/qtools/internal/qtools/build"
	"github.com/coecms/qtools/internal/qtools/configuration"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// In is read by Repair when no file is given. Defaults to standard in.
	In io.Reader
	// Runs the PBS tools. Built from the configuration when nil.
	Runner runner.Runner
	// Credentials for nqstat. A MUNGE credential when nil.
	Credentials source.Credentials
}

// Params struct holds all user-customizable parameters.
type Params struct {
	Config configuration.QtoolsConfig
}

// New instantiates an App with default parameters, reading from standard input and writing to
// standard output.
func New() *App {
	return &App{
		Params: &Params{Config: configuration.Default()},
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

func (a *App) costModel() (*accounting.CostModel, error) {
	return accounting.NewCostModel(a.Params.Config.QueueClasses())
}

func (a *App) runner() runner.Runner {
	if a.Runner != nil {
		return a.Runner
	}
	c := a.Params.Config.Pbs.Runner
	return runner.NewExecRunner(c.Attempts, c.Delay)
}

func (a *App) credentials() source.Credentials {
	if a.Credentials != nil {
		return a.Credentials
	}
	return &source.MungeCredentials{Runner: a.runner(), Path: a.Params.Config.Pbs.Nqstat.MungePath}
}

func (a *App) pbsnodesSource() *source.Pbsnodes {
	c := a.Params.Config
	return &source.Pbsnodes{
		Runner:     a.runner(),
		Path:       c.Pbs.PbsnodesPath,
		Parser:     pbsnodes.NewParser(c.Pbs.NodeNamePrefixes),
		Reconciler: reconcile.New(c.NodeQueueMapper(), c.Pbs.JobSuffix),
		JSON:       c.Pbs.PbsnodesJSON,
	}
}

// jobSource builds the chain of the named sources.
func (a *App) jobSource(names []string, project string, finished bool) (source.JobSource, error) {
	c := a.Params.Config
	chain := source.Chain{}
	for _, name := range names {
		switch name {
		case configuration.SourceQstat:
			chain = append(chain, &source.Qstat{Runner: a.runner(), Path: c.Pbs.QstatPath, Finished: finished})
		case configuration.SourceNqstat:
			n := c.Pbs.Nqstat
			chain = append(chain, source.NewNqstat(n.URL, project, c.Pbs.JobSuffix, a.credentials(), n.Timeout, n.Retries))
		case configuration.SourcePbsnodes:
			chain = append(chain, a.pbsnodesSource())
		default:
			return nil, invalidSource(name)
		}
	}
	return chain, nil
}

func invalidSource(name string) error {
	return errors.WithStack(&pbserrors.ErrInvalidArgument{
		Name:    "source",
		Value:   name,
		Message: "expected qstat, nqstat or pbsnodes",
	})
}
