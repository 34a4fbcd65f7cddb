// Package size converts between byte counts and the textual size encodings used by PBS and qtools.
//
// There are two unrelated encodings and they must never be confused:
//
//   - the PBS byte-suffix form, e.g. "196608000kb" or "512b", decoded by DecodeBytes;
//   - the unit-prefix form, e.g. "4GB" or "1.50GiB", produced by Format and read back by Parse,
//     with the narrower cost-model argument form ("4GB", "8192MB") read by ParseMemory.
package size

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

// Base is the multiplier between successive unit prefixes.
const Base = 1024

// DefaultDecimals is the number of decimals Format rounds the mantissa to.
const DefaultDecimals = 2

var prefixes = []string{"", "K", "M", "G", "T", "P", "E", "Z", "Y"}

// Scale letters accepted by the PBS byte-suffix form.
var byteSuffixScales = map[byte]uint64{
	'k': 1024,
}

var (
	displayPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)([KMGTPEZY]?)(i?)B$`)
	memoryPattern  = regexp.MustCompile(`^\d+(GB|MB)$`)
)

// DecodeBytes converts a PBS size such as "4194304kb" into a number of bytes.
// The trailing "b" is mandatory; the only scale letter recognised before it is "k".
func DecodeBytes(s string) (uint64, error) {
	if !strings.HasSuffix(s, "b") {
		return 0, formatError("byte size", s, "missing trailing b")
	}
	digits := s[:len(s)-1]

	scale := uint64(1)
	if n := len(digits); n > 0 && !isDigit(digits[n-1]) {
		var ok bool
		scale, ok = byteSuffixScales[digits[n-1]]
		if !ok {
			return 0, formatError("byte size", s, fmt.Sprintf("unknown scale %q", digits[n-1]))
		}
		digits = digits[:n-1]
	}

	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		return 0, formatError("byte size", s, "expected digits")
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || n > math.MaxUint64/scale {
		return 0, formatError("byte size", s, "value out of range")
	}
	return n * scale, nil
}

// DecodeBytesOptional is DecodeBytes for attributes that may be absent; nil decodes to nil.
func DecodeBytesOptional(s *string) (*uint64, error) {
	if s == nil {
		return nil, nil
	}
	n, err := DecodeBytes(*s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Format renders a byte count for humans, e.g. 1536 => "1.50KiB" and 100 => "100.00B".
func Format(val float64) string {
	return FormatWith(val, "iB", Base, DefaultDecimals)
}

// FormatWith chooses the largest unit prefix that keeps the mantissa below base and rounds the
// mantissa to the given number of decimals. Magnitudes below base use a bare "B" instead of "iB".
func FormatWith(val float64, suffix string, base float64, decimals int) string {
	sign := 1.0
	if val < 0 {
		sign = -1.0
		val = -val
	}

	i := 0
	if val < base {
		if suffix == "iB" {
			suffix = "B"
		}
	} else {
		for i < len(prefixes)-1 && val >= math.Pow(base, float64(i+1)) {
			i++
		}
	}

	mantissa := round(val/math.Pow(base, float64(i)), decimals)
	return fmt.Sprintf("%.*f%s%s", decimals, sign*mantissa, prefixes[i], suffix)
}

// Parse reads back text produced by Format, e.g. "1.50KiB" => 1536. Both "KiB" and "KB" are
// read with a 1024 multiplier. The result is rounded to the nearest byte.
func Parse(s string) (int64, error) {
	m := displayPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, formatError("display size", s, "")
	}
	mantissa, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, formatError("display size", s, err.Error())
	}
	exponent := 0
	if m[2] != "" {
		exponent = strings.Index("KMGTPEZY", m[2]) + 1
	}
	if m[2] == "" && m[3] != "" {
		return 0, formatError("display size", s, "iB requires a unit prefix")
	}

	bytes := math.Round(mantissa * math.Pow(Base, float64(exponent)))
	if bytes > math.MaxInt64 || bytes < math.MinInt64 {
		return 0, formatError("display size", s, "value out of range")
	}
	return int64(bytes), nil
}

// ParseMemory reads the memory argument of a cost calculation, e.g. "4GB" or "8192MB",
// using binary multipliers.
func ParseMemory(s string) (uint64, error) {
	if !memoryPattern.MatchString(s) {
		return 0, formatError("memory size", s, "expected <digits>GB or <digits>MB")
	}
	v, err := datasize.ParseString(s)
	if err != nil {
		return 0, formatError("memory size", s, err.Error())
	}
	return v.Bytes(), nil
}

func formatError(kind, value, message string) error {
	return errors.WithStack(&pbserrors.ErrFormat{Kind: kind, Value: value, Message: message})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func round(val float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(val*p) / p
}
