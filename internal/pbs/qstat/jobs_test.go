package qstat

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/pbs"
)

func TestParseJobs(t *testing.T) {
	text, err := os.ReadFile("testdata/qstat.json")
	require.NoError(t, err)

	jobs, err := ParseJobs(string(text))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	running := jobs["1234567.gadi-pbs"]
	require.NotNil(t, running)
	assert.Equal(t, "1234567.gadi-pbs", running.ID)
	assert.Equal(t, pbs.JobStateRunning, running.State)
	assert.Equal(t, "normal-exec", running.Queue)
	assert.Equal(t, int64(96), running.NCPUs)
	assert.Equal(t, uint64(100663296*1024), running.MemUsed)
	assert.Equal(t, []string{"gadi-cpu-clx-0001", "gadi-cpu-clx-0002"}, running.ExecHosts)
	assert.Equal(t, "gadi-cpu-clx-0001+gadi-cpu-clx-0002", running.ExecHost())
	assert.Equal(t, time.Hour+5*time.Second, running.Walltime)
	assert.Equal(t, `run "big" model`, running.Attributes[pbs.AttrJobName])
	assert.Equal(t, `-v FOO="bar" job.sh`, running.Attributes[pbs.AttrSubmitArguments])

	queued := jobs["1234568.gadi-pbs"]
	require.NotNil(t, queued)
	assert.Equal(t, pbs.JobStateQueued, queued.State)
	assert.Equal(t, int64(4), queued.NCPUs)
	assert.Equal(t, uint64(0), queued.MemUsed)
	assert.Equal(t, []string{}, queued.ExecHosts)
	assert.Equal(t, time.Duration(0), queued.Walltime)
}

func TestParseJobs_NoJobs(t *testing.T) {
	jobs, err := ParseJobs(`{"timestamp":1600000000,"pbs_version":"2020.1","pbs_server":"gadi-pbs-01"}`)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestParseJobs_Invalid(t *testing.T) {
	tests := map[string]struct {
		input string
		check func(error) bool
	}{
		"jobs not an object": {
			`{"Jobs":[]}`,
			func(err error) bool { var e *pbserrors.ErrParse; return errors.As(err, &e) },
		},
		"job not an object": {
			`{"Jobs":{"1.gadi-pbs":3}}`,
			func(err error) bool { var e *pbserrors.ErrParse; return errors.As(err, &e) },
		},
		"bad memory": {
			"{\"Jobs\":{\"1.gadi-pbs\":{\n\"resources_used\":{\n\"mem\":\"12GB\"\n}}}}",
			func(err error) bool { var e *pbserrors.ErrFormat; return errors.As(err, &e) },
		},
		"bad ncpus": {
			"{\"Jobs\":{\"1.gadi-pbs\":{\"Resource_List\":{\"ncpus\":1.5}}}}",
			func(err error) bool { var e *pbserrors.ErrFormat; return errors.As(err, &e) },
		},
		"bad walltime": {
			"{\"Jobs\":{\"1.gadi-pbs\":{\n\"resources_used\":{\n\"walltime\":\"1:2:3\"\n}}}}",
			func(err error) bool { var e *pbserrors.ErrFormat; return errors.As(err, &e) },
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJobs(tc.input)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error %v", err)
		})
	}
}

func TestParseNqstat(t *testing.T) {
	body := []byte(`{"qstat":[
		{
			"Job_ID":                  "42.gadi-pbs",
			"Job_Name":                "analysis",
			"job_state":               "R",
			"queue":                   "normalbw-exec",
			"exec_host":               "gadi-cpu-bdw-0001+gadi-cpu-bdw-0002",
			"Resource_List.ncpus":     56,
			"Resource_List.mem":       "262144000kb",
			"resources_used.mem":      "1024kb",
			"resources_used.vmem":     "2048kb",
			"resources_used.walltime": "10:00:00",
			"Submit_arguments": "<jsdl-hpcpa:Argument>-P</jsdl-hpcpa:Argument><jsdl-hpcpa:Argument>w35</jsdl-hpcpa:Argument>"
		},
		{
			"Job_ID":    "43.gadi-pbs",
			"job_state": "Q",
			"queue":     "normal-exec",
			"Resource_List.ncpus": "4"
		}
	]}`)

	jobs, err := ParseNqstat(body)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	job := jobs["42.gadi-pbs"]
	require.NotNil(t, job)
	assert.Equal(t, pbs.JobStateRunning, job.State)
	assert.Equal(t, "normalbw-exec", job.Queue)
	assert.Equal(t, int64(56), job.NCPUs)
	assert.Equal(t, uint64(1024*1024), job.MemUsed)
	assert.Equal(t, "gadi-cpu-bdw-0001+gadi-cpu-bdw-0002", job.ExecHost())
	assert.Equal(t, 10*time.Hour, job.Walltime)

	assert.NotContains(t, job.Attributes, pbs.AttrJobID)
	assert.Equal(t, "-P w35 ", job.Attributes[pbs.AttrSubmitArguments])
	assert.Equal(t, uint64(262144000*1024), job.Attributes["Resource_List.mem"])
	assert.Equal(t, uint64(2048*1024), job.Attributes["resources_used.vmem"])
	assert.Equal(t, json.Number("56"), job.Attributes[pbs.AttrNCPUs])

	queued := jobs["43.gadi-pbs"]
	require.NotNil(t, queued)
	assert.Equal(t, int64(4), queued.NCPUs)
	assert.Equal(t, pbs.JobStateQueued, queued.State)
}

func TestParseNqstat_Invalid(t *testing.T) {
	tests := map[string]struct {
		input string
		check func(error) bool
	}{
		"not json": {
			`<html>`,
			func(err error) bool { var e *pbserrors.ErrParse; return errors.As(err, &e) },
		},
		"missing job id": {
			`{"qstat":[{"queue":"normal-exec"}]}`,
			func(err error) bool { var e *pbserrors.ErrParse; return errors.As(err, &e) },
		},
		"bad size attribute": {
			`{"qstat":[{"Job_ID":"1.gadi-pbs","resources_used.jobfs":"1GB"}]}`,
			func(err error) bool { var e *pbserrors.ErrFormat; return errors.As(err, &e) },
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseNqstat([]byte(tc.input))
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error %v", err)
		})
	}
}
