package pbs

import "strings"

// UnknownQueue is the queue reported for hosts that match no node-name prefix.
const UnknownQueue = "unknown"

// NodePrefix maps hosts whose name starts with Prefix onto an execution queue.
type NodePrefix struct {
	Prefix string
	Queue  string
}

// NodeQueueMapper resolves the execution queue a host belongs to from its name.
// Rules are tried in order and the first matching prefix wins.
type NodeQueueMapper struct {
	rules []NodePrefix
}

func NewNodeQueueMapper(rules []NodePrefix) *NodeQueueMapper {
	return &NodeQueueMapper{rules: append([]NodePrefix(nil), rules...)}
}

// QueueFor returns the execution queue of host, or UnknownQueue.
func (m *NodeQueueMapper) QueueFor(host string) string {
	if m == nil {
		return UnknownQueue
	}
	for _, r := range m.rules {
		if strings.HasPrefix(host, r.Prefix) {
			return r.Queue
		}
	}
	return UnknownQueue
}
