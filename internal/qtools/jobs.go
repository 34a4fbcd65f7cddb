package qtools

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/accounting"
	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/pbs"
)

// JobsOptions are the settings of a single Jobs call.
type JobsOptions struct {
	// Sources to try in order. The configured sources when empty.
	Sources []string
	// Project passed to nqstat.
	Project string
	// Include finished jobs in qstat queries.
	Finished bool
	Output   OutputFormat
	// Walltime to charge for. Without it, the charge per hour is reported.
	Walltime string
}

// JobReport is a job record together with its charge.
type JobReport struct {
	*pbs.Job
	// Queue class the job is charged against.
	Class string `json:"class"`
	// Charge for the requested walltime, or per hour; nil if the class is unknown.
	ServiceUnits *float64 `json:"serviceUnits,omitempty"`
}

var jobColumns = []tableColumn[JobReport]{
	{ColumnConfig: table.ColumnConfig{Name: "Job ID"}, Value: func(r JobReport) string { return r.ID }},
	{ColumnConfig: table.ColumnConfig{Name: "State"}, Value: func(r JobReport) string { return string(r.State) }},
	{ColumnConfig: table.ColumnConfig{Name: "Queue"}, Value: func(r JobReport) string { return r.Queue }},
	{ColumnConfig: numeric("Cpus"), Value: func(r JobReport) string { return strconv.FormatInt(r.NCPUs, 10) }},
	{ColumnConfig: numeric("Memory"), Value: func(r JobReport) string { return size.Format(float64(r.MemUsed)) }},
	{ColumnConfig: numeric("Walltime"), Value: func(r JobReport) string { return pbs.FormatWalltime(r.Walltime) }},
	{ColumnConfig: numeric("SU"), Value: func(r JobReport) string {
		if r.ServiceUnits == nil {
			return "-"
		}
		return strconv.FormatFloat(*r.ServiceUnits, 'f', 2, 64)
	}},
	{ColumnConfig: table.ColumnConfig{Name: "Hosts"}, Value: func(r JobReport) string { return r.ExecHost() }},
}

// Jobs fetches the jobs named by ids, or every visible job, and prints them with their charge.
func (a *App) Jobs(ctx context.Context, ids []string, opts JobsOptions) error {
	model, err := a.costModel()
	if err != nil {
		return err
	}
	walltime := time.Hour
	if opts.Walltime != "" {
		if walltime, err = accounting.ParseWalltime(opts.Walltime); err != nil {
			return err
		}
	}
	names := opts.Sources
	if len(names) == 0 {
		names = a.Params.Config.Pbs.Sources
	}
	src, err := a.jobSource(names, opts.Project, opts.Finished)
	if err != nil {
		return err
	}

	jobs, err := src.Jobs(ctx, ids)
	if err != nil {
		return err
	}
	log.Debugf("found %d jobs", len(jobs))

	reports := make([]JobReport, 0, len(jobs))
	for _, id := range pbs.SortedJobIDs(jobs) {
		job := jobs[id]
		report := JobReport{Job: job, Class: accounting.QueueForExecQueue(job.Queue)}
		su, err := model.Charge(accounting.ResourceRequest{
			Queue:    report.Class,
			NCPUs:    job.NCPUs,
			Mem:      job.MemUsed,
			Walltime: walltime,
		})
		if err != nil {
			log.Debugf("not charging job %s: %s", id, err)
		} else {
			report.ServiceUnits = &su
		}
		reports = append(reports, report)
	}

	format := opts.Output
	if format == "" {
		format = TableFormat
	}
	if format == TableFormat {
		if opts.Walltime != "" {
			fmt.Fprintf(a.Out, "Charges for %s walltime\n", pbs.FormatWalltime(walltime))
		} else {
			fmt.Fprintln(a.Out, "Charges per hour")
		}
	}
	return output(a.Out, format, jobColumns, reports)
}
