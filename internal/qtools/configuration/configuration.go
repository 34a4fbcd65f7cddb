// Package configuration holds the settings of the qtools command, their defaults and how they are
// read from a YAML file.
package configuration

import (
	"time"

	"github.com/go-playground/validator/v10"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/coecms/qtools/internal/accounting"
	"github.com/coecms/qtools/internal/pbs"
	"github.com/coecms/qtools/internal/pbs/pbsnodes"
	"github.com/coecms/qtools/internal/pbs/reconcile"
	"github.com/coecms/qtools/internal/pbs/source"
)

// Names of the job sources that can appear in PbsConfig.Sources.
const (
	SourceQstat    = "qstat"
	SourceNqstat   = "nqstat"
	SourcePbsnodes = "pbsnodes"
)

type QtoolsConfig struct {
	// Charging parameters keyed by queue class. An entry in a config file replaces the default
	// entry of the same name as a whole.
	Queues map[string]QueueConfig `validate:"required,dive"`
	// Maps execution hosts onto execution queues. The first matching prefix wins.
	NodePrefixes []NodePrefixConfig `validate:"dive"`
	Pbs          PbsConfig
}

type QueueConfig struct {
	// Service units per cpu-hour.
	ChargeRate float64 `validate:"gt=0"`
	// Memory included with each cpu, e.g., 4Gi.
	MemPerCPU resource.Quantity
	// Cores per node. Memory requests are never billed above the cores of the nodes used.
	CoresPerNode int64 `validate:"gte=0"`
}

type NodePrefixConfig struct {
	Prefix string `validate:"required"`
	Queue  string `validate:"required"`
}

type PbsConfig struct {
	// Job sources to try, in order.
	Sources      []string `validate:"required,dive,oneof=qstat nqstat pbsnodes"`
	QstatPath    string   `validate:"required"`
	PbsnodesPath string   `validate:"required"`
	// Read "pbsnodes -a -F json" rather than the text form.
	PbsnodesJSON bool
	// Bare lines starting with one of these open a node block in pbsnodes output.
	NodeNamePrefixes []string
	// Server suffix added to bare job ids.
	JobSuffix string `validate:"required"`
	Nqstat    NqstatConfig
	Runner    RunnerConfig
}

type NqstatConfig struct {
	URL       string        `validate:"required,url"`
	MungePath string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
	// Retries after the first request.
	Retries int `validate:"gte=0"`
}

type RunnerConfig struct {
	Attempts uint `validate:"gte=1"`
	Delay    time.Duration
}

// Default returns the settings for Gadi.
func Default() QtoolsConfig {
	queues := map[string]QueueConfig{}
	for name, class := range accounting.DefaultQueues() {
		queues[name] = QueueConfig{
			ChargeRate:   class.ChargeRate,
			MemPerCPU:    class.MemPerCPU,
			CoresPerNode: class.CoresPerNode,
		}
	}
	return QtoolsConfig{
		Queues: queues,
		NodePrefixes: []NodePrefixConfig{
			{Prefix: "gadi-cpu-clx-", Queue: "normal-exec"},
			{Prefix: "gadi-dm-", Queue: "copyq-exec"},
			{Prefix: "gadi-hmem-clx-", Queue: "hugemem-exec"},
			{Prefix: "gadi-gpu-v100-", Queue: "gpuvolta-exec"},
			{Prefix: "gadi-hmem-bdw-", Queue: "hugemembw-exec"},
			{Prefix: "gadi-mmem-clx-", Queue: "megamem-exec"},
			{Prefix: "gadi-mmem-bdw-", Queue: "megamembw-exec"},
			{Prefix: "gadi-cpu-bdw-", Queue: "normalbw-exec"},
			{Prefix: "gadi-cpu-skl", Queue: "normalsl-exec"},
			{Prefix: "gadi-dgx-a100", Queue: "dgxa100-exec"},
			{Prefix: "gadi-analysis-", Queue: "analysis-exec"},
		},
		Pbs: PbsConfig{
			Sources:          []string{SourceQstat, SourcePbsnodes},
			QstatPath:        source.DefaultQstatPath,
			PbsnodesPath:     source.DefaultPbsnodesPath,
			NodeNamePrefixes: append([]string(nil), pbsnodes.DefaultNodePrefixes...),
			JobSuffix:        reconcile.DefaultJobSuffix,
			Nqstat: NqstatConfig{
				URL:       source.DefaultNqstatURL,
				MungePath: source.DefaultMungePath,
				Timeout:   source.DefaultNqstatTimeout,
				Retries:   2,
			},
			Runner: RunnerConfig{
				Attempts: 3,
				Delay:    time.Second,
			},
		},
	}
}

func (c QtoolsConfig) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(queueConfigValidation, QueueConfig{})
	return validate.Struct(c)
}

func queueConfigValidation(sl validator.StructLevel) {
	q := sl.Current().Interface().(QueueConfig)
	if q.MemPerCPU.Sign() <= 0 {
		sl.ReportError(q.MemPerCPU.String(), "MemPerCPU", "MemPerCPU", "positive", "")
	}
}

// QueueClasses converts the queue settings into cost model classes.
func (c QtoolsConfig) QueueClasses() map[string]accounting.QueueClass {
	classes := make(map[string]accounting.QueueClass, len(c.Queues))
	for name, q := range c.Queues {
		classes[name] = accounting.QueueClass{
			Name:         name,
			ChargeRate:   q.ChargeRate,
			MemPerCPU:    q.MemPerCPU,
			CoresPerNode: q.CoresPerNode,
		}
	}
	return classes
}

// NodeQueueMapper builds the host to execution queue mapping.
func (c QtoolsConfig) NodeQueueMapper() *pbs.NodeQueueMapper {
	rules := make([]pbs.NodePrefix, 0, len(c.NodePrefixes))
	for _, p := range c.NodePrefixes {
		rules = append(rules, pbs.NodePrefix{Prefix: p.Prefix, Queue: p.Queue})
	}
	return pbs.NewNodeQueueMapper(rules)
}
