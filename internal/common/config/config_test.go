package config

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

type testConfig struct {
	Mem      resource.Quantity
	Timeout  time.Duration
	Sources  []string
	Attempts int    `validate:"gte=1"`
	Name     string `validate:"required"`
}

func TestCustomHooks(t *testing.T) {
	v := viper.New()
	v.Set("mem", "4Gi")
	v.Set("timeout", "2m")
	v.Set("sources", "qstat,pbsnodes")

	var c testConfig
	require.NoError(t, v.Unmarshal(&c, CustomHooks...))
	assert.Equal(t, int64(4<<30), c.Mem.Value())
	assert.Equal(t, 2*time.Minute, c.Timeout)
	assert.Equal(t, []string{"qstat", "pbsnodes"}, c.Sources)
}

func TestQuantityDecodeHook_Number(t *testing.T) {
	v := viper.New()
	v.Set("mem", 1024)

	var c testConfig
	require.NoError(t, v.Unmarshal(&c, CustomHooks...))
	assert.Equal(t, int64(1024), c.Mem.Value())
}

func TestQuantityDecodeHook_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("mem", "lots")

	var c testConfig
	assert.Error(t, v.Unmarshal(&c, CustomHooks...))
}

func TestAsConfigErrors(t *testing.T) {
	err := validator.New().Struct(testConfig{})
	require.Error(t, err)

	converted := AsConfigErrors(err)
	var merr *multierror.Error
	require.True(t, errors.As(converted, &merr))
	require.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "Attempts has invalid value 0: gte")
	assert.Contains(t, merr.Errors[1].Error(), "Name is required")
	assert.Equal(t, pbserrors.ExitConfig, pbserrors.ExitCode(converted))

	other := errors.New("boom")
	assert.Equal(t, other, AsConfigErrors(other))
}
