package qstat

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/pbs"
)

// Attributes of nqstat records that hold PBS byte sizes.
var nqstatSizeKeys = []string{
	"resources_used.mem",
	"resources_used.vmem",
	"resources_used.jobfs",
	"Resource_List.mem",
	"Resource_List.jobfs",
}

var jsdlArgumentReplacer = strings.NewReplacer(
	"<jsdl-hpcpa:Argument>", "",
	"</jsdl-hpcpa:Argument>", " ",
)

// ParseJobs repairs and decodes the output of "qstat -f -F json" and converts its Jobs object into
// Job records keyed by job id.
func ParseJobs(text string) (map[string]*pbs.Job, error) {
	record, err := Parse(text)
	if err != nil {
		return nil, err
	}
	rawJobs, ok := record["Jobs"]
	if !ok {
		// qstat omits Jobs entirely when nothing matched.
		return map[string]*pbs.Job{}, nil
	}
	jobAttrs, ok := rawJobs.(map[string]any)
	if !ok {
		return nil, errors.WithStack(&pbserrors.ErrParse{Source: "qstat json", Message: "Jobs is not an object"})
	}

	jobs := make(map[string]*pbs.Job, len(jobAttrs))
	for id, raw := range jobAttrs {
		attrs, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.WithStack(&pbserrors.ErrParse{Source: "qstat json", Message: fmt.Sprintf("job %s is not an object", id)})
		}
		job, err := JobFromAttributes(id, attrs)
		if err != nil {
			return nil, err
		}
		jobs[id] = job
	}
	return jobs, nil
}

type nqstatResponse struct {
	Qstat []map[string]any `json:"qstat"`
}

// ParseNqstat converts the body of an nqstat response, a list of flattened job attribute maps, into
// Job records keyed by job id. Byte-size attributes are decoded in place and the jsdl markup is
// stripped from Submit_arguments, so the attributes look like those of qstat.
func ParseNqstat(body []byte) (map[string]*pbs.Job, error) {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	var resp nqstatResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.WithStack(parseError("nqstat json", string(body), err))
	}

	jobs := make(map[string]*pbs.Job, len(resp.Qstat))
	for i, raw := range resp.Qstat {
		id, ok := raw[pbs.AttrJobID].(string)
		if !ok || id == "" {
			return nil, errors.WithStack(&pbserrors.ErrParse{
				Source:  "nqstat json",
				Message: fmt.Sprintf("entry %d has no %s", i, pbs.AttrJobID),
			})
		}

		attrs := make(map[string]any, len(raw))
		for k, v := range raw {
			if k != pbs.AttrJobID && k != pbs.AttrSubmitArguments {
				attrs[k] = v
			}
		}
		if args, ok := raw[pbs.AttrSubmitArguments].(string); ok {
			attrs[pbs.AttrSubmitArguments] = jsdlArgumentReplacer.Replace(args)
		}
		for _, k := range nqstatSizeKeys {
			s, ok := attrs[k].(string)
			if !ok {
				continue
			}
			n, err := size.DecodeBytes(s)
			if err != nil {
				return nil, errors.WithMessagef(err, "job %s attribute %s", id, k)
			}
			attrs[k] = n
		}

		job, err := JobFromAttributes(id, attrs)
		if err != nil {
			return nil, err
		}
		jobs[id] = job
	}
	return jobs, nil
}

// JobFromAttributes builds a Job from qstat attributes. Resource attributes may be given either
// flattened ("resources_used.mem") or nested ({"resources_used": {"mem": ...}}).
func JobFromAttributes(id string, attrs map[string]any) (*pbs.Job, error) {
	job := pbs.NewJob(id)
	job.Attributes = attrs

	if s, ok := lookup(attrs, pbs.AttrJobState).(string); ok {
		job.State = pbs.JobStateFromCode(s)
	}
	if s, ok := lookup(attrs, pbs.AttrQueue).(string); ok {
		job.Queue = s
	}
	if s, ok := lookup(attrs, pbs.AttrExecHost).(string); ok {
		job.ExecHosts = pbs.ParseExecHost(s)
	}

	if v := lookup(attrs, pbs.AttrNCPUs); v != nil {
		n, err := toInt64(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "job %s attribute %s", id, pbs.AttrNCPUs)
		}
		job.NCPUs = n
	}

	switch v := lookup(attrs, pbs.AttrMemUsed).(type) {
	case nil:
	case uint64:
		job.MemUsed = v
	case string:
		n, err := size.DecodeBytes(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "job %s attribute %s", id, pbs.AttrMemUsed)
		}
		job.MemUsed = n
	default:
		n, err := toInt64(v)
		if err != nil || n < 0 {
			return nil, errors.WithStack(&pbserrors.ErrFormat{Kind: "byte size", Value: fmt.Sprint(v), Message: "job " + id})
		}
		job.MemUsed = uint64(n)
	}

	if s, ok := lookup(attrs, pbs.AttrWalltimeUsed).(string); ok {
		d, err := pbs.ParseWalltime(s)
		if err != nil {
			return nil, errors.WithMessagef(err, "job %s attribute %s", id, pbs.AttrWalltimeUsed)
		}
		job.Walltime = d
	}
	return job, nil
}

// lookup finds a possibly dotted attribute, first as a flat key and then as a nested member.
func lookup(attrs map[string]any, key string) any {
	if v, ok := attrs[key]; ok {
		return v
	}
	group, member, found := strings.Cut(key, ".")
	if !found {
		return nil
	}
	if nested, ok := attrs[group].(map[string]any); ok {
		return nested[member]
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return parseInt(n.String())
	case string:
		return parseInt(n)
	case float64:
		if n != math.Trunc(n) {
			break
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), nil
		}
	}
	return 0, errors.WithStack(&pbserrors.ErrFormat{Kind: "integer", Value: fmt.Sprint(v)})
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.WithStack(&pbserrors.ErrFormat{Kind: "integer", Value: s})
	}
	return n, nil
}
