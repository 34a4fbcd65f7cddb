package qtools

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

type OutputFormat string

const (
	TableFormat OutputFormat = "table"
	JSONFormat  OutputFormat = "json"
	YAMLFormat  OutputFormat = "yaml"
)

var AllFormats = []OutputFormat{TableFormat, JSONFormat, YAMLFormat}

// ParseOutputFormat accepts any of AllFormats, ignoring case.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(s))
	if !lo.Contains(AllFormats, f) {
		return "", errors.WithStack(&pbserrors.ErrInvalidArgument{
			Name:    "output",
			Value:   s,
			Message: "expected table, json or yaml",
		})
	}
	return f, nil
}

var plainStyle = table.Style{
	Name:   "qtools",
	Box:    table.StyleBoxDefault,
	Color:  table.ColorOptionsDefault,
	Format: table.FormatOptionsDefault,
	HTML:   table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

type tableColumn[T any] struct {
	table.ColumnConfig
	Value func(T) string
}

// numeric is the column layout for figures.
func numeric(name string) table.ColumnConfig {
	return table.ColumnConfig{Name: name, Align: text.AlignRight, AlignHeader: text.AlignRight}
}

func output[T any](out io.Writer, format OutputFormat, columns []tableColumn[T], items []T) error {
	switch format {
	case TableFormat:
		outputTable(out, columns, items)
		return nil
	default:
		return outputNonTabular(out, format, items)
	}
}

func outputNonTabular(out io.Writer, format OutputFormat, v any) error {
	switch format {
	case JSONFormat:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case YAMLFormat:
		b, err := yaml.Marshal(v)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = out.Write(b)
		return err
	}
	return errors.Errorf("invalid format %q", format)
}

func outputTable[T any](out io.Writer, columns []tableColumn[T], items []T) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(plainStyle)

	tw.SetColumnConfigs(lo.Map(columns, func(c tableColumn[T], i int) table.ColumnConfig {
		config := c.ColumnConfig
		config.Number = i + 1
		return config
	}))
	tw.AppendHeader(lo.Map(columns, func(c tableColumn[T], _ int) any { return c.Name }))
	for _, item := range items {
		tw.AppendRow(lo.Map(columns, func(c tableColumn[T], _ int) any { return c.Value(item) }))
	}
	tw.Render()
}
