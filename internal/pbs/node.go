package pbs

import (
	"strings"

	"github.com/samber/lo"
)

// Keys of the node attributes that get structured handling.
const (
	NodeKeyJobs               = "jobs"
	NodeKeyState              = "state"
	NodeKeyResourcesAvailable = "resources_available"
	NodeKeyResourcesAssigned  = "resources_assigned"
)

// Node is the state of one execution host as listed by pbsnodes.
type Node struct {
	Name               string            `json:"name"`
	State              string            `json:"state,omitempty"`
	ResourcesAvailable map[string]string `json:"resourcesAvailable"`
	ResourcesAssigned  map[string]string `json:"resourcesAssigned"`
	// One entry per occupied slot, so a job using four cpus on this node appears four times.
	Jobs []string `json:"jobs,omitempty"`
	// Every other key, stored verbatim. Includes "state".
	Attributes map[string]string `json:"attributes"`
}

// NewNode returns an empty Node named name.
func NewNode(name string) *Node {
	return &Node{
		Name:               name,
		ResourcesAvailable: map[string]string{},
		ResourcesAssigned:  map[string]string{},
		Attributes:         map[string]string{},
	}
}

// SetAttribute stores a key outside of the structured families. The "state" key is also mirrored
// into Node.State.
func (n *Node) SetAttribute(key, value string) {
	n.Attributes[key] = value
	if key == NodeKeyState {
		n.State = value
	}
}

// SetResource stores a "resources_available.<k>" or "resources_assigned.<k>" value.
// It reports false if family is neither of those.
func (n *Node) SetResource(family, key, value string) bool {
	switch family {
	case NodeKeyResourcesAvailable:
		n.ResourcesAvailable[key] = value
	case NodeKeyResourcesAssigned:
		n.ResourcesAssigned[key] = value
	default:
		return false
	}
	return true
}

// JobCounts returns the distinct job ids on the node in first-seen order, and the number of
// slots each occupies.
func (n *Node) JobCounts() ([]string, map[string]int) {
	return lo.Uniq(n.Jobs), lo.CountValues(n.Jobs)
}

// ParseJobList splits a jobs value into job ids, dropping the slot suffix of each entry but keeping
// one entry per slot. Entries may be separated by "+", "," or whitespace, so both
// "1.x/0+1.x/1" and "1.x/0, 1.x/1" are accepted.
func ParseJobList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '\t'
	})
	return lo.FilterMap(fields, func(f string, _ int) (string, bool) {
		id, _, _ := strings.Cut(f, "/")
		return id, id != ""
	})
}
