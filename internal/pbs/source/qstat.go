package source

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/pbs"
	"github.com/coecms/qtools/internal/pbs/qstat"
	"github.com/coecms/qtools/internal/pbs/runner"
)

// DefaultQstatPath is where PBS Pro installs qstat.
const DefaultQstatPath = "/opt/pbs/default/bin/qstat"

// Qstat reads jobs from "qstat -f -F json".
type Qstat struct {
	Runner runner.Runner
	Path   string
	// Include finished jobs (qstat -x).
	Finished bool
}

func (s *Qstat) Name() string {
	return "qstat"
}

func (s *Qstat) Jobs(ctx context.Context, ids []string) (map[string]*pbs.Job, error) {
	path := s.Path
	if path == "" {
		path = DefaultQstatPath
	}
	args := []string{}
	if s.Finished {
		args = append(args, "-x")
	}
	args = append(args, "-f", "-F", "json")
	args = append(args, ids...)

	log.Debugf("querying %s", describe(s.Name(), ids))
	out, err := s.Runner.Run(ctx, path, args...)
	if err != nil {
		return nil, errors.WithMessage(err, "running qstat")
	}
	return qstat.ParseJobs(string(out))
}
