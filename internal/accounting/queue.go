// Package accounting computes the service-unit (SU) charge of a job.
package accounting

import (
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

// QueueClass holds the charging parameters of a queue.
type QueueClass struct {
	Name string `validate:"required"`
	// Service units per cpu-hour.
	ChargeRate float64 `validate:"gt=0"`
	// Memory that comes with each cpu before the job is billed for extra cpus.
	MemPerCPU resource.Quantity
	// Cores of one node of the queue's hardware. Zero disables the memory cap.
	CoresPerNode int64 `validate:"gte=0"`
}

// DefaultQueues returns the Gadi queue classes. Only normal, express, normalbw and normalsl are
// checked against published charges; the remaining rows follow the hardware documentation.
func DefaultQueues() map[string]QueueClass {
	classes := []QueueClass{
		{Name: "normal", ChargeRate: 2, MemPerCPU: resource.MustParse("4Gi"), CoresPerNode: 48},
		{Name: "express", ChargeRate: 6, MemPerCPU: resource.MustParse("4Gi"), CoresPerNode: 48},
		{Name: "copyq", ChargeRate: 2, MemPerCPU: resource.MustParse("4Gi"), CoresPerNode: 48},
		{Name: "hugemem", ChargeRate: 3, MemPerCPU: resource.MustParse("31360Mi"), CoresPerNode: 48},
		{Name: "megamem", ChargeRate: 5, MemPerCPU: resource.MustParse("63488Mi"), CoresPerNode: 48},
		{Name: "gpuvolta", ChargeRate: 3, MemPerCPU: resource.MustParse("8150Mi"), CoresPerNode: 48},
		{Name: "normalbw", ChargeRate: 1.25, MemPerCPU: resource.MustParse("9362Mi"), CoresPerNode: 28},
		{Name: "expressbw", ChargeRate: 3.75, MemPerCPU: resource.MustParse("9362Mi"), CoresPerNode: 28},
		{Name: "hugemembw", ChargeRate: 1.25, MemPerCPU: resource.MustParse("37303Mi"), CoresPerNode: 28},
		{Name: "megamembw", ChargeRate: 1.25, MemPerCPU: resource.MustParse("96000Mi"), CoresPerNode: 32},
		{Name: "normalsl", ChargeRate: 1.5, MemPerCPU: resource.MustParse("6Gi"), CoresPerNode: 32},
		{Name: "dgxa100", ChargeRate: 4.5, MemPerCPU: resource.MustParse("16Gi"), CoresPerNode: 128},
	}
	queues := make(map[string]QueueClass, len(classes))
	for _, c := range classes {
		queues[c.Name] = c
	}
	return queues
}

// QueueForExecQueue maps an execution queue such as "normal-exec" onto its queue class name.
func QueueForExecQueue(execQueue string) string {
	return strings.TrimSuffix(execQueue, "-exec")
}
