// Package qstat reads the JSON written by "qstat -f -F json" and by the site nqstat service.
//
// qstat does not escape string values: a job name or submit argument containing a double quote is
// written as-is, which makes the document invalid JSON. Only the first and last quote of a value on
// a line can be relied on, and every string attribute sits on a line of its own, so the document is
// repaired one line at a time before being decoded.
package qstat

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

// stringEntry matches a line holding a single "key":"value" member. Object and array boundaries
// never match and pass through unchanged.
var stringEntry = regexp.MustCompile(`^\s*"([^"]+)":"(.*)"(,?)$`)

// RepairLines re-escapes the value of every single-string-member line of text.
func RepairLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		m := stringEntry.FindStringSubmatch(line)
		if m == nil {
			lines[i] = line
			continue
		}
		key, value, comma := m[1], m[2], m[3]
		lines[i] = `"` + key + `":` + encodeString(value) + comma
	}
	return strings.Join(lines, "\n")
}

// Parse repairs text and decodes it. Numbers are kept as json.Number so that large integers
// survive a round trip.
func Parse(text string) (map[string]any, error) {
	return ParseRepaired(RepairLines(text))
}

// ParseRepaired decodes text that has already been through RepairLines. Repairing twice would
// escape the escapes added by the first pass.
func ParseRepaired(text string) (map[string]any, error) {
	record, err := decode(text)
	if err != nil {
		return nil, errors.WithStack(parseError("qstat json", text, err))
	}
	return record, nil
}

func decode(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level object")
	}
	if record == nil {
		return nil, errors.New("top-level value is not an object")
	}
	return record, nil
}

func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// parseError converts a JSON decoding error into an ErrParse carrying the line and column of the
// offending byte, when the decoder reported one.
func parseError(source, text string, err error) *pbserrors.ErrParse {
	e := &pbserrors.ErrParse{Source: source, Err: err}
	var offset int64
	{
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
	}
	{
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			offset = typeErr.Offset
		}
	}
	if offset > 0 {
		// The decoder counts the offending byte itself.
		pos := int(offset) - 1
		if pos > len(text) {
			pos = len(text)
		}
		prefix := text[:pos]
		e.Line = strings.Count(prefix, "\n") + 1
		e.Column = pos - strings.LastIndex(prefix, "\n")
	}
	return e
}
