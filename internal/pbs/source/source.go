// Package source fetches job records from the PBS server. Each JobSource produces the same record
// schema, so callers can fall back from one to another.
package source

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/pbs"
)

// JobSource returns job records keyed by job id. With no ids, every job visible to the source is
// returned.
type JobSource interface {
	Name() string
	Jobs(ctx context.Context, ids []string) (map[string]*pbs.Job, error)
}

// Chain tries each of its sources in turn and returns the result of the first that succeeds.
type Chain []JobSource

func (c Chain) Name() string {
	return "chain"
}

func (c Chain) Jobs(ctx context.Context, ids []string) (map[string]*pbs.Job, error) {
	if len(c) == 0 {
		return nil, errors.New("no job sources configured")
	}
	var result *multierror.Error
	for _, s := range c {
		jobs, err := s.Jobs(ctx, ids)
		if err == nil {
			log.Debugf("got %d jobs from %s", len(jobs), s.Name())
			return jobs, nil
		}
		if ctx.Err() != nil {
			return nil, errors.WithStack(ctx.Err())
		}
		log.Warnf("%s failed, trying next source: %s", s.Name(), err)
		result = multierror.Append(result, errors.WithMessage(err, s.Name()))
	}
	return nil, result.ErrorOrNil()
}

// filter drops the jobs not named in ids. Ids are compared after adding suffix.
func filter(jobs map[string]*pbs.Job, ids []string, suffix string) map[string]*pbs.Job {
	if len(ids) == 0 {
		return jobs
	}
	filtered := make(map[string]*pbs.Job, len(ids))
	for _, id := range ids {
		id = pbs.NormalizeJobID(id, suffix)
		if job, ok := jobs[id]; ok {
			filtered[id] = job
		}
	}
	return filtered
}

func describe(name string, ids []string) string {
	if len(ids) == 0 {
		return name
	}
	return fmt.Sprintf("%s for %d jobs", name, len(ids))
}
