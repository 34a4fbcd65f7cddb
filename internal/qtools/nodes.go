package qtools

import (
	"context"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/pbs"
)

// NodeReport is a node record with its execution queue.
type NodeReport struct {
	*pbs.Node
	Queue string `json:"queue"`
}

var nodeColumns = []tableColumn[NodeReport]{
	{ColumnConfig: table.ColumnConfig{Name: "Node"}, Value: func(r NodeReport) string { return r.Name }},
	{ColumnConfig: table.ColumnConfig{Name: "Queue"}, Value: func(r NodeReport) string { return r.Queue }},
	{ColumnConfig: table.ColumnConfig{Name: "State"}, Value: func(r NodeReport) string { return r.State }},
	{ColumnConfig: numeric("Jobs"), Value: func(r NodeReport) string {
		distinct, _ := r.JobCounts()
		return strconv.Itoa(len(distinct))
	}},
	{ColumnConfig: numeric("Slots used"), Value: func(r NodeReport) string { return strconv.Itoa(len(r.Jobs)) }},
	{ColumnConfig: numeric("Memory assigned"), Value: func(r NodeReport) string {
		text, ok := r.ResourcesAssigned["mem"]
		if !ok {
			return "-"
		}
		mem, err := size.DecodeBytes(text)
		if err != nil {
			return text
		}
		return size.Format(float64(mem))
	}},
}

// Nodes prints the node inventory reported by pbsnodes.
func (a *App) Nodes(ctx context.Context, format OutputFormat) error {
	nodes, err := a.pbsnodesSource().Nodes(ctx)
	if err != nil {
		return err
	}
	mapper := a.Params.Config.NodeQueueMapper()
	reports := make([]NodeReport, 0, len(nodes))
	for _, n := range nodes {
		reports = append(reports, NodeReport{Node: n, Queue: mapper.QueueFor(n.Name)})
	}
	if format == "" {
		format = TableFormat
	}
	return output(a.Out, format, nodeColumns, reports)
}
