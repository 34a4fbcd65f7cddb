package size

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

func TestDecodeBytes(t *testing.T) {
	tests := map[string]struct {
		input string
		want  uint64
	}{
		"bytes":          {"512b", 512},
		"kilobytes":      {"4194304kb", 4194304 * 1024},
		"zero kilobytes": {"0kb", 0},
		"zero bytes":     {"0b", 0},
		"large node":     {"196608000kb", 196608000 * 1024},
		"leading zeroes": {"007kb", 7 * 1024},
		"single byte":    {"1b", 1},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeBytes(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeBytes_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing terminator":    "4096k",
		"bare digits":           "4096",
		"unit prefix form":      "4GB",
		"upper case terminator": "4096KB",
		"unknown scale":         "4096mb",
		"no digits":             "kb",
		"empty":                 "",
		"terminator only":       "b",
		"negative":              "-1kb",
		"fraction":              "1.5kb",
		"overflow":              "99999999999999999999kb",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBytes(input)
			require.Error(t, err)
			var e *pbserrors.ErrFormat
			assert.True(t, errors.As(err, &e), "expected ErrFormat but got %T", errors.Cause(err))
		})
	}
}

func TestDecodeBytesOptional(t *testing.T) {
	got, err := DecodeBytesOptional(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2kb"
	got, err = DecodeBytesOptional(&s)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2048), *got)

	s = "2k"
	_, err = DecodeBytesOptional(&s)
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := map[string]struct {
		input float64
		want  string
	}{
		"zero":               {0, "0.00B"},
		"below base":         {100, "100.00B"},
		"just below base":    {1023, "1023.00B"},
		"exactly base":       {1024, "1.00KiB"},
		"fractional kib":     {1536, "1.50KiB"},
		"exact mebibyte":     {1024 * 1024, "1.00MiB"},
		"exact gibibyte":     {4 * 1024 * 1024 * 1024, "4.00GiB"},
		"node memory":        {196608000 * 1024, "187.50GiB"},
		"rounded mantissa":   {1000 * 1024, "1000.00KiB"},
		"negative":           {-2048, "-2.00KiB"},
		"negative below":     {-10, "-10.00B"},
		"yobibyte saturates": {1 << 90, "1024.00YiB"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.input))
		})
	}
}

func TestFormatWith(t *testing.T) {
	assert.Equal(t, "1.5KB", FormatWith(1536, "B", 1024, 1))
	assert.Equal(t, "999B", FormatWith(999, "B", 1000, 0))
	assert.Equal(t, "2.000Kb", FormatWith(2000, "b", 1000, 3))
}

func TestParse(t *testing.T) {
	tests := map[string]struct {
		input string
		want  int64
	}{
		"bare bytes":    {"100.00B", 100},
		"no decimals":   {"512B", 512},
		"kib":           {"1.50KiB", 1536},
		"kb":            {"1.50KB", 1536},
		"gib":           {"4.00GiB", 4 << 30},
		"negative":      {"-2.00KiB", -2048},
		"fractional tb": {"0.25TiB", 1 << 38},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "4", "4kb", "4 GiB", "4XiB", "4iB", "GiB", "1.GiB"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			var e *pbserrors.ErrFormat
			assert.True(t, errors.As(err, &e))
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// Byte counts exactly representable with at most two decimals under their unit prefix.
	for _, n := range []int64{
		0,
		1,
		1023,
		1024,
		1536,
		1024 + 256,
		3 * 1024 * 1024,
		5*1024*1024 + 1024*1024/4,
		190 << 30,
		7 << 40,
		-(3 << 20),
	} {
		got, err := Parse(Format(float64(n)))
		require.NoError(t, err)
		assert.Equal(t, n, got, "round trip via %q", Format(float64(n)))
	}
}

func TestParseMemory(t *testing.T) {
	tests := map[string]struct {
		input string
		want  uint64
	}{
		"gigabytes":    {"4GB", 4 << 30},
		"megabytes":    {"8192MB", 8 << 30},
		"one megabyte": {"1MB", 1 << 20},
		"large":        {"256GB", 256 << 30},
		"zero":         {"0GB", 0},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseMemory(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMemory_Invalid(t *testing.T) {
	for _, input := range []string{"4", "4gb", "4G", "4GiB", "4 GB", "4kb", "4194304kb", "1.5GB", "-4GB", "4TB", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMemory(input)
			var e *pbserrors.ErrFormat
			assert.True(t, errors.As(err, &e))
		})
	}
}
