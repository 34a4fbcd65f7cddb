package qtools

import (
	"fmt"

	"github.com/coecms/qtools/internal/common/size"
	"github.com/coecms/qtools/internal/common/util"
	"github.com/coecms/qtools/internal/pbs"
)

// Cost prints the SU charge of a job on queue using ncpus cpus and mem memory (e.g. "32GB") for
// walltime ("H:MM:SS"). With breakdown, the intermediate figures are printed as well.
func (a *App) Cost(queue string, ncpus int64, mem, walltime string, breakdown bool) error {
	model, err := a.costModel()
	if err != nil {
		return err
	}
	e, err := model.Explain(queue, ncpus, mem, walltime)
	if err != nil {
		return err
	}
	if !breakdown {
		_, err = fmt.Fprintf(a.Out, "%g\n", e.Cost)
		return err
	}

	tsb := util.NewTabbedStringBuilder(1, 1, 1, ' ', 0)
	tsb.Row("Queue:", e.Queue.Name)
	tsb.Writef("Charge rate:\t%g SU per cpu-hour\n", e.Queue.ChargeRate)
	tsb.Row("Memory per cpu:", size.Format(float64(e.Queue.MemPerCPU.Value())))
	tsb.Row("Cpus requested:", e.NCPUs)
	tsb.Row("Memory requested:", size.Format(float64(e.Mem)))
	capped := ""
	if e.Capped {
		capped = " (capped at node size)"
	}
	tsb.Writef("Memory cpu equivalent:\t%d%s\n", e.MemEquivalent, capped)
	tsb.Row("Billed cpus:", e.CPUEquivalent)
	tsb.Row("Walltime:", fmt.Sprintf("%s (%g h)", pbs.FormatWalltime(e.Walltime), e.Hours))
	tsb.Row("Cost:", fmt.Sprintf("%g SU", e.Cost))
	_, err = fmt.Fprint(a.Out, tsb.String())
	return err
}
