package accounting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/pbs"
)

// ResourceRequest is a decoded job request.
type ResourceRequest struct {
	Queue    string
	NCPUs    int64
	Mem      uint64
	Walltime time.Duration
}

// Estimate shows how a charge was arrived at.
type Estimate struct {
	Queue    QueueClass
	NCPUs    int64
	Mem      uint64
	Walltime time.Duration
	// Cpus implied by the memory request, after the node cap.
	MemEquivalent int64
	// True if the node cap lowered MemEquivalent.
	Capped        bool
	CPUEquivalent int64
	Hours         float64
	Cost          float64
}

// CostModel charges jobs against a fixed table of queue classes.
type CostModel struct {
	queues map[string]QueueClass
}

// NewCostModel validates queues and returns a model over a copy of them. Every invalid class is
// reported.
func NewCostModel(queues map[string]QueueClass) (*CostModel, error) {
	validate := validator.New()
	var result *multierror.Error

	names := make([]string, 0, len(queues))
	for name := range queues {
		names = append(names, name)
	}
	sort.Strings(names)

	copied := make(map[string]QueueClass, len(queues))
	for _, name := range names {
		class := queues[name]
		if class.Name == "" {
			class.Name = name
		}
		if err := validate.Struct(class); err != nil {
			result = multierror.Append(result, errors.WithStack(&pbserrors.ErrInvalidArgument{
				Name:    "queues." + name,
				Value:   class.Name,
				Message: err.Error(),
			}))
			continue
		}
		if class.MemPerCPU.Sign() <= 0 {
			result = multierror.Append(result, errors.WithStack(&pbserrors.ErrInvalidArgument{
				Name:    "queues." + name + ".memPerCpu",
				Value:   class.MemPerCPU.String(),
				Message: "must be positive",
			}))
			continue
		}
		copied[name] = class
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &CostModel{queues: copied}, nil
}

// Queue returns the class named name.
func (m *CostModel) Queue(name string) (QueueClass, error) {
	class, ok := m.queues[name]
	if !ok {
		return QueueClass{}, errors.WithStack(&pbserrors.ErrConfig{Name: "queue", Value: name})
	}
	return class, nil
}

// Queues returns the names of all classes in ascending order.
func (m *CostModel) Queues() []string {
	names := make([]string, 0, len(m.queues))
	for name := range m.queues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cost returns the SU charge for ncpus cpus and mem memory (e.g. "32GB") held for walltime
// ("H:MM:SS") on queue.
func (m *CostModel) Cost(queue string, ncpus int64, mem, walltime string) (float64, error) {
	e, err := m.Explain(queue, ncpus, mem, walltime)
	if err != nil {
		return 0, err
	}
	return e.Cost, nil
}

// Explain is Cost, also returning the intermediate figures.
func (m *CostModel) Explain(queue string, ncpus int64, mem, walltime string) (*Estimate, error) {
	class, err := m.Queue(queue)
	if err != nil {
		return nil, err
	}
	bytes, err := size.ParseMemory(mem)
	if err != nil {
		return nil, err
	}
	d, err := ParseWalltime(walltime)
	if err != nil {
		return nil, err
	}
	return estimate(class, ncpus, bytes, d)
}

// Charge is Cost for an already decoded request.
func (m *CostModel) Charge(req ResourceRequest) (float64, error) {
	class, err := m.Queue(req.Queue)
	if err != nil {
		return 0, err
	}
	e, err := estimate(class, req.NCPUs, req.Mem, req.Walltime)
	if err != nil {
		return 0, err
	}
	return e.Cost, nil
}

// ParseWalltime reads an H:MM:SS walltime.
func ParseWalltime(s string) (time.Duration, error) {
	return pbs.ParseWalltime(s)
}

// estimate bills the larger of ncpus and the memory cpu equivalent. The memory equivalent is capped
// at the cores of every node the cpu request spans rather than at a single node, which only differs
// from a one-node cap for requests larger than a node.
func estimate(class QueueClass, ncpus int64, mem uint64, walltime time.Duration) (*Estimate, error) {
	if ncpus <= 0 {
		return nil, errors.WithStack(&pbserrors.ErrInvalidArgument{
			Name:    "ncpus",
			Value:   ncpus,
			Message: "must be positive",
		})
	}
	if walltime < 0 {
		return nil, errors.WithStack(&pbserrors.ErrInvalidArgument{
			Name:    "walltime",
			Value:   walltime,
			Message: "must not be negative",
		})
	}

	e := &Estimate{Queue: class, NCPUs: ncpus, Mem: mem, Walltime: walltime}

	quota := uint64(class.MemPerCPU.Value())
	memEquiv := mem / quota
	if mem%quota != 0 {
		memEquiv++
	}
	// The cap is the cores of the nodes the cpu request occupies, at least one node.
	if class.CoresPerNode > 0 {
		nodes := (ncpus + class.CoresPerNode - 1) / class.CoresPerNode
		limit := uint64(nodes * class.CoresPerNode)
		if memEquiv > limit {
			memEquiv = limit
			e.Capped = true
		}
	}
	if memEquiv > math.MaxInt64 {
		memEquiv = math.MaxInt64
	}
	e.MemEquivalent = int64(memEquiv)

	e.CPUEquivalent = ncpus
	if e.MemEquivalent > ncpus {
		e.CPUEquivalent = e.MemEquivalent
	}
	e.Hours = walltime.Hours()
	e.Cost = float64(e.CPUEquivalent) * class.ChargeRate * e.Hours
	return e, nil
}

func (e *Estimate) String() string {
	return fmt.Sprintf("%d cpu x %g SU x %g h = %g SU", e.CPUEquivalent, e.Queue.ChargeRate, e.Hours, e.Cost)
}
