// Package pbsnodes reads the node inventory printed by "pbsnodes -a".
//
// The text form has no documented grammar. It is a sequence of blocks, one per node:
//
//	gadi-cpu-clx-0001
//	     Mom = gadi-cpu-clx-0001.gadi.nci.org.au
//	     state = job-busy
//	     jobs = 123.gadi-pbs/0, 123.gadi-pbs/1, 456.gadi-pbs/2
//	     resources_available.mem = 196608000kb
//	     resources_assigned.mem = 8388608kb
//
// A bare line starting with a node-name prefix opens a block, "key = value" lines fill it in, and
// the next line without "=" (normally a blank line) closes it.
package pbsnodes

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/pbs"
)

// DefaultNodePrefixes are the prefixes of execution host names on Gadi.
var DefaultNodePrefixes = []string{"gadi-"}

// The longest line the parser accepts. A busy node lists one jobs entry per cpu.
const maxLineLength = 16 * 1024 * 1024

type parseState int

const (
	// Between node blocks.
	stateOutside parseState = iota
	// Inside the block of the current node.
	stateInBlock
)

func (s parseState) String() string {
	switch s {
	case stateOutside:
		return "Outside"
	case stateInBlock:
		return "InBlock"
	}
	return fmt.Sprintf("parseState(%d)", int(s))
}

// Parser turns pbsnodes text into node records. A Parser holds no state between calls.
type Parser struct {
	nodePrefixes []string
}

// NewParser returns a Parser that opens node blocks on bare lines starting with any of
// nodePrefixes. With no prefixes, any non-empty bare line opens a block.
func NewParser(nodePrefixes []string) *Parser {
	return &Parser{nodePrefixes: append([]string(nil), nodePrefixes...)}
}

// Parse reads a whole dump and returns its nodes in the order they appear.
func (p *Parser) Parse(r io.Reader) ([]*pbs.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	m := &machine{
		state:      stateOutside,
		isNodeName: p.isNodeName,
		seen:       map[string]bool{},
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := m.step(lineNo, strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(&pbserrors.ErrParse{Source: "pbsnodes", Line: lineNo + 1, Err: err})
	}
	m.finish()
	return m.nodes, nil
}

// ParseString is Parse for an in-memory dump.
func (p *Parser) ParseString(s string) ([]*pbs.Node, error) {
	return p.Parse(strings.NewReader(s))
}

func (p *Parser) isNodeName(line string) bool {
	if line == "" {
		return false
	}
	if len(p.nodePrefixes) == 0 {
		return true
	}
	for _, prefix := range p.nodePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// machine is the state of a single Parse call.
type machine struct {
	state      parseState
	current    *pbs.Node
	nodes      []*pbs.Node
	seen       map[string]bool
	isNodeName func(string) bool
}

func (m *machine) step(lineNo int, line string) error {
	assignment := strings.Contains(line, "=")
	switch m.state {
	case stateOutside:
		if !assignment && m.isNodeName(line) {
			return m.open(lineNo, line)
		}
		// Headers, unrecognised hosts and their attributes are skipped.
		return nil
	case stateInBlock:
		if !assignment {
			m.close()
			return nil
		}
		return m.assign(lineNo, line)
	}
	return errors.Errorf("pbsnodes parser in invalid state %s", m.state)
}

func (m *machine) open(lineNo int, name string) error {
	if m.seen[name] {
		return parseError(lineNo, fmt.Sprintf("duplicate block for node %s", name))
	}
	m.seen[name] = true
	m.current = pbs.NewNode(name)
	m.nodes = append(m.nodes, m.current)
	m.state = stateInBlock
	return nil
}

func (m *machine) close() {
	m.current = nil
	m.state = stateOutside
}

// finish handles the end of input. A block still open at the end is closed implicitly.
func (m *machine) finish() {
	if m.state == stateInBlock {
		m.close()
	}
}

func (m *machine) assign(lineNo int, line string) error {
	key, value, _ := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return parseError(lineNo, "missing key before =")
	}

	if key == pbs.NodeKeyJobs {
		m.current.Jobs = pbs.ParseJobList(value)
		return nil
	}

	family, resource, found := strings.Cut(key, ".")
	if family == pbs.NodeKeyResourcesAvailable || family == pbs.NodeKeyResourcesAssigned {
		if !found || resource == "" {
			return parseError(lineNo, fmt.Sprintf("%s requires a resource name", family))
		}
		m.current.SetResource(family, resource, value)
		return nil
	}

	m.current.SetAttribute(key, value)
	return nil
}

func parseError(lineNo int, message string) error {
	return errors.WithStack(&pbserrors.ErrParse{Source: "pbsnodes", Line: lineNo, Message: message})
}
