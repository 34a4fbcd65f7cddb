package pbserrors

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"ErrFormat":                       {&ErrFormat{}, ExitDataErr},
		"ErrParse":                        {&ErrParse{}, ExitDataErr},
		"ErrConfig":                       {&ErrConfig{}, ExitConfig},
		"ErrInvalidArgument":              {&ErrInvalidArgument{}, ExitUsage},
		"pkg.Error => ErrFormat":          {errors.WithMessage(&ErrFormat{}, "foo"), ExitDataErr},
		"pkg.Error => ErrConfig":          {errors.WithStack(&ErrConfig{}), ExitConfig},
		"pkg.Error => ErrInvalidArgument": {errors.Wrap(&ErrInvalidArgument{}, "foo"), ExitUsage},
		"multierror => ErrConfig":         {multierror.Append(nil, &ErrConfig{}, &ErrFormat{}), ExitConfig},
		"pkg.Error":                       {errors.New("foo"), ExitFailure},
		"nil":                             {nil, ExitOK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"format": {
			&ErrFormat{Kind: "byte size", Value: "12", Message: "missing trailing b"},
			`"12" is not a valid byte size; missing trailing b`,
		},
		"config": {
			&ErrConfig{Name: "queue", Value: "normalx"},
			`unknown queue "normalx"`,
		},
		"invalid configuration": {
			&ErrConfig{Name: "configuration", Message: "queues.normal.chargeRate must be greater than 0"},
			"invalid configuration; queues.normal.chargeRate must be greater than 0",
		},
		"parse with position": {
			&ErrParse{Source: "qstat json", Line: 3, Column: 7, Message: "invalid character"},
			"failed to parse qstat json at line 3, column 7: invalid character",
		},
		"parse with line only": {
			&ErrParse{Source: "pbsnodes", Line: 12, Message: "empty key"},
			"failed to parse pbsnodes at line 12: empty key",
		},
		"invalid argument": {
			&ErrInvalidArgument{Name: "ncpus", Value: 0, Message: "must be positive"},
			`value 0 is invalid for argument "ncpus"; must be positive`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestErrParseUnwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := errors.WithStack(&ErrParse{Source: "qstat json", Err: cause})

	assert.True(t, errors.Is(err, cause))
	var e *ErrParse
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "qstat json", e.Source)
}
