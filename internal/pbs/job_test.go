package pbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStateFromCode(t *testing.T) {
	assert.Equal(t, JobStateRunning, JobStateFromCode("R"))
	assert.Equal(t, JobStateQueued, JobStateFromCode("Q"))
	assert.Equal(t, JobStateFinished, JobStateFromCode("F"))
	assert.Equal(t, JobStateUnknown, JobStateFromCode("Z"))
	assert.Equal(t, JobStateUnknown, JobStateFromCode(""))
}

func TestJobStateCode(t *testing.T) {
	for code, state := range stateCodes {
		assert.Equal(t, code, state.Code())
	}
	assert.Equal(t, "", JobStateUnknown.Code())
}

func TestJob_AddExecHost(t *testing.T) {
	j := NewJob("1.gadi-pbs")
	j.AddExecHost("A")
	j.AddExecHost("B")
	j.AddExecHost("A")

	assert.Equal(t, []string{"A", "B"}, j.ExecHosts)
	assert.Equal(t, "A+B", j.ExecHost())
}

func TestJob_ExecHostEmpty(t *testing.T) {
	assert.Equal(t, "", NewJob("1.gadi-pbs").ExecHost())
}

func TestParseExecHost(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []string
	}{
		"empty":          {"", []string{}},
		"single host":    {"gadi-cpu-clx-0001/0*48", []string{"gadi-cpu-clx-0001"}},
		"two hosts":      {"gadi-cpu-clx-0001/0*48+gadi-cpu-clx-0002/0*48", []string{"gadi-cpu-clx-0001", "gadi-cpu-clx-0002"}},
		"bare hosts":     {"A+B", []string{"A", "B"}},
		"repeated host":  {"A/0*2+A/1*2+B/0", []string{"A", "B"}},
		"empty segments": {"A++B", []string{"A", "B"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseExecHost(tc.input))
		})
	}
}

func TestNormalizeJobID(t *testing.T) {
	assert.Equal(t, "123.gadi-pbs", NormalizeJobID("123", ".gadi-pbs"))
	assert.Equal(t, "123.gadi-pbs", NormalizeJobID("123.gadi-pbs", ".gadi-pbs"))
	assert.Equal(t, "123", NormalizeJobID("123", ""))
}

func TestSortedJobIDs(t *testing.T) {
	jobs := map[string]*Job{
		"3.x": NewJob("3.x"),
		"1.x": NewJob("1.x"),
		"2.x": NewJob("2.x"),
	}
	assert.Equal(t, []string{"1.x", "2.x", "3.x"}, SortedJobIDs(jobs))
}
