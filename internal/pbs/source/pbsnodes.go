package source

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/pbs"
	"github.com/coecms/qtools/internal/pbs/pbsnodes"
	"github.com/coecms/qtools/internal/pbs/reconcile"
	"github.com/coecms/qtools/internal/pbs/runner"
)

// DefaultPbsnodesPath is where PBS Pro installs pbsnodes.
const DefaultPbsnodesPath = "/opt/pbs/default/bin/pbsnodes"

// Pbsnodes rebuilds jobs from the node inventory. It works when job queries are disabled, at the
// cost of approximate memory figures and no walltime.
type Pbsnodes struct {
	Runner     runner.Runner
	Path       string
	Parser     *pbsnodes.Parser
	Reconciler *reconcile.Reconciler
	// Read the -F json form instead of text.
	JSON bool
}

func (s *Pbsnodes) Name() string {
	return "pbsnodes"
}

// Nodes runs pbsnodes and returns every node it lists.
func (s *Pbsnodes) Nodes(ctx context.Context) ([]*pbs.Node, error) {
	path := s.Path
	if path == "" {
		path = DefaultPbsnodesPath
	}
	args := []string{"-a"}
	if s.JSON {
		args = append(args, "-F", "json")
	}
	out, err := s.Runner.Run(ctx, path, args...)
	if err != nil {
		return nil, errors.WithMessage(err, "running pbsnodes")
	}
	if s.JSON {
		return pbsnodes.ParseJSON(bytes.NewReader(out))
	}
	parser := s.Parser
	if parser == nil {
		parser = pbsnodes.NewParser(pbsnodes.DefaultNodePrefixes)
	}
	return parser.Parse(bytes.NewReader(out))
}

func (s *Pbsnodes) Jobs(ctx context.Context, ids []string) (map[string]*pbs.Job, error) {
	log.Debugf("rebuilding %s", describe(s.Name(), ids))
	nodes, err := s.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	reconciler := s.Reconciler
	if reconciler == nil {
		reconciler = reconcile.New(nil, reconcile.DefaultJobSuffix)
	}
	return reconciler.Reconcile(nodes, ids)
}
