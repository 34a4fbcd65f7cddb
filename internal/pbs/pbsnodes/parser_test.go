package pbsnodes

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

func TestParse(t *testing.T) {
	f, err := os.Open("testdata/pbsnodes.txt")
	require.NoError(t, err)
	defer f.Close()

	nodes, err := NewParser(DefaultNodePrefixes).Parse(f)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	first := nodes[0]
	assert.Equal(t, "gadi-cpu-clx-0001", first.Name)
	assert.Equal(t, "job-busy", first.State)
	assert.Equal(t, "job-busy", first.Attributes["state"])
	assert.Equal(t, "48", first.Attributes["pcpus"])
	assert.Equal(t, "offline by admin = maintenance", first.Attributes["comment"])
	assert.Equal(t, []string{"100.gadi-pbs", "100.gadi-pbs", "200.gadi-pbs"}, first.Jobs)
	assert.Equal(t, map[string]string{"mem": "196608000kb", "ncpus": "48"}, first.ResourcesAvailable)
	assert.Equal(t, map[string]string{"mem": "9000kb", "ncpus": "3"}, first.ResourcesAssigned)
	assert.NotContains(t, first.Attributes, "resources_assigned.mem")

	assert.Equal(t, "gadi-cpu-clx-0002", nodes[1].Name)
	assert.Equal(t, []string{"100.gadi-pbs", "100.gadi-pbs"}, nodes[1].Jobs)

	idle := nodes[2]
	assert.Equal(t, "gadi-hmem-clx-0001", idle.Name)
	assert.Equal(t, "free", idle.State)
	assert.Empty(t, idle.Jobs)
}

func TestParse_JobCounts(t *testing.T) {
	nodes, err := NewParser(DefaultNodePrefixes).ParseString("gadi-x\n jobs = 123.x/0+123.x/1+456.x/0\n\n")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	distinct, counts := nodes[0].JobCounts()
	assert.Equal(t, []string{"123.x", "456.x"}, distinct)
	assert.Equal(t, map[string]int{"123.x": 2, "456.x": 1}, counts)
}

func TestParse_ImplicitCloseAtEndOfInput(t *testing.T) {
	nodes, err := NewParser(DefaultNodePrefixes).ParseString("gadi-cpu-clx-0001\n state = free\n jobs = 7.gadi-pbs/0")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "free", nodes[0].State)
	assert.Equal(t, []string{"7.gadi-pbs"}, nodes[0].Jobs)
}

func TestParse_SkipsUnrecognisedBlocks(t *testing.T) {
	input := strings.Join([]string{
		"login-node-01",
		" state = free",
		"",
		"gadi-cpu-bdw-0001",
		" state = free",
		"",
	}, "\n")
	nodes, err := NewParser(DefaultNodePrefixes).ParseString(input)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "gadi-cpu-bdw-0001", nodes[0].Name)
}

func TestParse_NoPrefixes(t *testing.T) {
	nodes, err := NewParser(nil).ParseString("node1\n state = free\n\nnode2\n state = down\n")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node1", nodes[0].Name)
	assert.Equal(t, "down", nodes[1].State)
}

func TestParse_Empty(t *testing.T) {
	nodes, err := NewParser(DefaultNodePrefixes).ParseString("")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]struct {
		input string
		line  int
	}{
		"empty key": {
			"gadi-a\n = value\n",
			2,
		},
		"resource without name": {
			"gadi-a\n state = free\n resources_assigned = 3\n",
			3,
		},
		"resource with empty name": {
			"gadi-a\n resources_available. = 3\n",
			2,
		},
		"duplicate node": {
			"gadi-a\n state = free\n\ngadi-a\n state = down\n",
			4,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewParser(DefaultNodePrefixes).ParseString(tc.input)
			var e *pbserrors.ErrParse
			require.True(t, errors.As(err, &e), "expected ErrParse but got %v", err)
			assert.Equal(t, "pbsnodes", e.Source)
			assert.Equal(t, tc.line, e.Line)
		})
	}
}

func TestParseState_String(t *testing.T) {
	assert.Equal(t, "Outside", stateOutside.String())
	assert.Equal(t, "InBlock", stateInBlock.String())
	assert.Equal(t, "parseState(7)", parseState(7).String())
}
