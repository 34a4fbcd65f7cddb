package qtools

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/pbs/qstat"
)

// Repair reads qstat JSON from path, or from the app input when path is empty or "-", and prints it
// as valid JSON. Nothing is printed if the repaired text still does not parse.
func (a *App) Repair(path string) error {
	var in io.Reader = a.In
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return errors.WithStack(err)
	}

	repaired := qstat.RepairLines(string(text))
	if _, err := qstat.ParseRepaired(repaired); err != nil {
		return err
	}
	_, err = io.WriteString(a.Out, repaired)
	return err
}
