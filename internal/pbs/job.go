// Package pbs holds the job and node records shared by every PBS reader in qtools, whether the
// records come from a status query or are reconstructed from a node dump.
package pbs

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/exp/maps"
)

// Attribute names used by qstat for the fields that make up a Job record.
const (
	AttrJobID           = "Job_ID"
	AttrJobName         = "Job_Name"
	AttrJobOwner        = "Job_Owner"
	AttrJobState        = "job_state"
	AttrQueue           = "queue"
	AttrProject         = "project"
	AttrExecHost        = "exec_host"
	AttrNCPUs           = "Resource_List.ncpus"
	AttrRequestedMem    = "Resource_List.mem"
	AttrRequestedWall   = "Resource_List.walltime"
	AttrMemUsed         = "resources_used.mem"
	AttrWalltimeUsed    = "resources_used.walltime"
	AttrSubmitArguments = "Submit_arguments"
)

// JobState is the state of a job as reported by qstat.
type JobState string

const (
	JobStateUnknown   JobState = ""
	JobStateQueued    JobState = "Queued"
	JobStateRunning   JobState = "Running"
	JobStateHeld      JobState = "Held"
	JobStateExiting   JobState = "Exiting"
	JobStateFinished  JobState = "Finished"
	JobStateWaiting   JobState = "Waiting"
	JobStateSuspended JobState = "Suspended"
	JobStateBegun     JobState = "Begun"
	JobStateExpired   JobState = "Expired"
	JobStateMoved     JobState = "Moved"
	JobStateTransit   JobState = "Transiting"
	JobStateUserSusp  JobState = "UserSuspended"
)

var stateCodes = map[string]JobState{
	"Q": JobStateQueued,
	"R": JobStateRunning,
	"H": JobStateHeld,
	"E": JobStateExiting,
	"F": JobStateFinished,
	"W": JobStateWaiting,
	"S": JobStateSuspended,
	"B": JobStateBegun,
	"X": JobStateExpired,
	"M": JobStateMoved,
	"T": JobStateTransit,
	"U": JobStateUserSusp,
}

// JobStateFromCode maps a single-letter PBS state code onto a JobState.
// Unrecognised codes map to JobStateUnknown.
func JobStateFromCode(code string) JobState {
	return stateCodes[code]
}

// Code returns the single-letter PBS code for the state, or "" if there is none.
func (s JobState) Code() string {
	for code, state := range stateCodes {
		if state == s {
			return code
		}
	}
	return ""
}

// Job is a per-job accounting record. Jobs are either read from a status query (qstat, nqstat) or
// synthesized from node records; downstream code does not need to know which.
type Job struct {
	ID        string   `json:"id"`
	State     JobState `json:"state,omitempty"`
	Queue     string   `json:"queue"`
	NCPUs     int64    `json:"ncpus"`
	MemUsed   uint64   `json:"memUsed"`
	ExecHosts []string `json:"execHosts"`
	// Walltime used so far; zero for synthesized records.
	Walltime time.Duration `json:"walltime,omitempty"`
	// Raw status-query attributes; nil for synthesized records.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// NewJob returns a Job with zeroed counters.
func NewJob(id string) *Job {
	return &Job{ID: id, ExecHosts: []string{}}
}

// ExecHost joins the execution hosts into the "+"-separated form used by qstat.
func (j *Job) ExecHost() string {
	return strings.Join(j.ExecHosts, "+")
}

// AddExecHost appends host unless it is already present.
func (j *Job) AddExecHost(host string) {
	for _, h := range j.ExecHosts {
		if h == host {
			return
		}
	}
	j.ExecHosts = append(j.ExecHosts, host)
}

// ParseExecHost splits a qstat exec_host value such as "n1/0*48+n2/0*48" into distinct host names.
func ParseExecHost(s string) []string {
	hosts := []string{}
	if s == "" {
		return hosts
	}
	j := Job{ExecHosts: hosts}
	for _, part := range strings.Split(s, "+") {
		host, _, _ := strings.Cut(part, "/")
		if host = strings.TrimSpace(host); host != "" {
			j.AddExecHost(host)
		}
	}
	return j.ExecHosts
}

// NormalizeJobID appends suffix to id unless id already ends with it.
func NormalizeJobID(id, suffix string) string {
	if strings.HasSuffix(id, suffix) {
		return id
	}
	return id + suffix
}

// SortedJobIDs returns the keys of jobs in ascending order.
func SortedJobIDs(jobs map[string]*Job) []string {
	ids := maps.Keys(jobs)
	sort.Strings(ids)
	return ids
}
