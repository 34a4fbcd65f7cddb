package logging

import (
	"bytes"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

// CommandLineFormatter writes the bare message for humans at a terminal. Warnings and errors are
// prefixed with their level, fields follow as key=value pairs in key order and a stack trace added by
// WithStacktrace goes on the lines after.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	if entry.Level <= log.WarnLevel {
		b.WriteString(entry.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(entry.Message)

	keys := maps.Keys(entry.Data)
	sort.Strings(keys)
	for _, k := range keys {
		if k == Stacktrace {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')

	if stack, ok := entry.Data[Stacktrace]; ok {
		fmt.Fprintf(&b, "%+v\n", stack)
	}
	return b.Bytes(), nil
}
