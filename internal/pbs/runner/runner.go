// Package runner executes the PBS command line tools.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the local host, retrying failed runs.
type ExecRunner struct {
	// Total number of runs, including the first. Zero means one.
	Attempts uint
	// Wait between runs.
	Delay time.Duration
}

func NewExecRunner(attempts uint, delay time.Duration) *ExecRunner {
	return &ExecRunner{Attempts: attempts, Delay: delay}
}

// Run returns the output of the first successful run. A command that cannot be started is not
// retried. The error of the last run carries the command's standard error.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	attempts := r.Attempts
	if attempts == 0 {
		attempts = 1
	}

	var out []byte
	err := retry.Do(
		func() error {
			var err error
			out, err = runOnce(ctx, name, args...)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(r.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var exitErr *exec.ExitError
			return errors.As(err, &exitErr)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debugf("%s failed on attempt %d: %s", name, n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func runOnce(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running %s %s", name, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "%s: %s", name, msg)
		}
		return nil, errors.Wrap(err, name)
	}
	return stdout.Bytes(), nil
}
