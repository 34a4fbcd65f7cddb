package pbsnodes

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/pbs"
	"github.com/coecms/qtools/internal/pbs/qstat"
)

type jsonDump struct {
	Nodes map[string]map[string]any `json:"nodes"`
}

// ParseJSON reads the output of "pbsnodes -a -F json". It produces the same records as Parse on the
// text form, ordered by node name. The document goes through the same line repair as qstat output,
// since both tools share the string escaping defect.
func ParseJSON(r io.Reader) ([]*pbs.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(&pbserrors.ErrParse{Source: "pbsnodes json", Err: err})
	}

	dec := json.NewDecoder(strings.NewReader(qstat.RepairLines(string(raw))))
	dec.UseNumber()
	var dump jsonDump
	if err := dec.Decode(&dump); err != nil {
		return nil, errors.WithStack(&pbserrors.ErrParse{Source: "pbsnodes json", Err: err})
	}

	names := make([]string, 0, len(dump.Nodes))
	for name := range dump.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	nodes := make([]*pbs.Node, 0, len(names))
	for _, name := range names {
		node, err := nodeFromJSON(name, dump.Nodes[name])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func nodeFromJSON(name string, attrs map[string]any) (*pbs.Node, error) {
	node := pbs.NewNode(name)
	for key, value := range attrs {
		switch key {
		case pbs.NodeKeyJobs:
			jobs, err := jobsFromJSON(name, value)
			if err != nil {
				return nil, err
			}
			node.Jobs = jobs
		case pbs.NodeKeyResourcesAvailable, pbs.NodeKeyResourcesAssigned:
			resources, ok := value.(map[string]any)
			if !ok {
				return nil, errors.WithStack(&pbserrors.ErrParse{
					Source:  "pbsnodes json",
					Message: fmt.Sprintf("node %s: %s is not an object", name, key),
				})
			}
			for k, v := range resources {
				node.SetResource(key, k, scalarString(v))
			}
		default:
			node.SetAttribute(key, scalarString(value))
		}
	}
	return node, nil
}

func jobsFromJSON(name string, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return pbs.ParseJobList(v), nil
	case []any:
		jobs := []string{}
		for _, entry := range v {
			s, ok := entry.(string)
			if !ok {
				return nil, errors.WithStack(&pbserrors.ErrParse{
					Source:  "pbsnodes json",
					Message: fmt.Sprintf("node %s: job entry %v is not a string", name, entry),
				})
			}
			jobs = append(jobs, pbs.ParseJobList(s)...)
		}
		return jobs, nil
	}
	return nil, errors.WithStack(&pbserrors.ErrParse{
		Source:  "pbsnodes json",
		Message: fmt.Sprintf("node %s: jobs is neither a list nor a string", name),
	})
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case nil:
		return ""
	}
	// Nested objects and lists are kept in their JSON form.
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}
