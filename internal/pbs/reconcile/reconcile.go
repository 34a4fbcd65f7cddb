// Package reconcile rebuilds per-job accounting records from pbsnodes output, for when the
// scheduler's own job query is unavailable.
package reconcile

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/pbs"
)

// DefaultJobSuffix is the server suffix of job ids on Gadi.
const DefaultJobSuffix = ".gadi-pbs"

// Reconciler turns node records into job records. The node-name prefix table is injected and never
// modified, so a Reconciler can be shared between goroutines.
type Reconciler struct {
	Queues    *pbs.NodeQueueMapper
	JobSuffix string
}

func New(queues *pbs.NodeQueueMapper, jobSuffix string) *Reconciler {
	return &Reconciler{Queues: queues, JobSuffix: jobSuffix}
}

// Reconcile accumulates the slots and memory of every job found on nodes.
//
// Memory assigned to a node is split evenly between the distinct jobs on it, rounding down. This
// overstates small jobs sharing a node with large ones; the figures are kept as-is since existing
// reports depend on them.
//
// If jobIDs is non-empty only those jobs are reported, and their state is left unknown since being
// listed on a node does not confirm what the scheduler thinks of them. Otherwise every job seen is
// reported as running. Requested jobs that are on no node are left out.
func (r *Reconciler) Reconcile(nodes []*pbs.Node, jobIDs []string) (map[string]*pbs.Job, error) {
	jobs := map[string]*pbs.Job{}
	explicit := len(jobIDs) > 0
	for _, id := range jobIDs {
		id = pbs.NormalizeJobID(id, r.JobSuffix)
		jobs[id] = pbs.NewJob(id)
	}

	for _, node := range nodes {
		if len(node.Jobs) == 0 {
			continue
		}
		distinct, counts := node.JobCounts()
		share, err := memoryShare(node, len(distinct))
		if err != nil {
			return nil, err
		}
		queue := r.Queues.QueueFor(node.Name)

		for _, id := range distinct {
			job, ok := jobs[id]
			if !ok {
				if explicit {
					continue
				}
				job = pbs.NewJob(id)
				job.State = pbs.JobStateRunning
				jobs[id] = job
			}
			job.NCPUs += int64(counts[id])
			job.MemUsed += share
			job.AddExecHost(node.Name)
			job.Queue = queue
		}
	}

	for id, job := range jobs {
		if job.NCPUs == 0 && job.MemUsed == 0 {
			delete(jobs, id)
		}
	}
	return jobs, nil
}

func memoryShare(node *pbs.Node, distinct int) (uint64, error) {
	text, ok := node.ResourcesAssigned["mem"]
	if !ok {
		return 0, errors.WithStack(&pbserrors.ErrParse{
			Source:  "pbsnodes",
			Message: fmt.Sprintf("node %s lists jobs but has no resources_assigned.mem", node.Name),
		})
	}
	mem, err := size.DecodeBytes(text)
	if err != nil {
		return 0, errors.WithMessagef(err, "node %s", node.Name)
	}
	return mem / uint64(distinct), nil
}
