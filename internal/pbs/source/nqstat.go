package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/coecms/qtools/internal/pbs"
	"github.com/coecms/qtools/internal/pbs/qstat"
	"github.com/coecms/qtools/internal/pbs/runner"
)

const (
	DefaultNqstatURL     = "http://gadi-pbs-01.gadi.nci.org.au:8812/qstat"
	DefaultNqstatTimeout = 120 * time.Second
	DefaultMungePath     = "munge"
)

// Credentials provides the token sent in the Authorization header of nqstat requests.
type Credentials interface {
	Credential(ctx context.Context) (string, error)
}

// MungeCredentials gets a fresh MUNGE credential from "munge -n" for each request.
type MungeCredentials struct {
	Runner runner.Runner
	Path   string
}

func (m *MungeCredentials) Credential(ctx context.Context) (string, error) {
	path := m.Path
	if path == "" {
		path = DefaultMungePath
	}
	out, err := m.Runner.Run(ctx, path, "-n")
	if err != nil {
		return "", errors.WithMessage(err, "creating munge credential")
	}
	cred := strings.TrimSpace(string(out))
	if cred == "" {
		return "", errors.New("munge returned an empty credential")
	}
	return cred, nil
}

// Nqstat reads the jobs of one project from the site nqstat service.
type Nqstat struct {
	URL         string
	Project     string
	JobSuffix   string
	Credentials Credentials
	client      *retryablehttp.Client
}

// NewNqstat returns a source querying endpoint. Requests that fail with a connection error or a
// server error are retried up to retries times.
func NewNqstat(endpoint, project, jobSuffix string, credentials Credentials, timeout time.Duration, retries int) *Nqstat {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.HTTPClient.Timeout = timeout
	client.Logger = leveledLogger{}
	return &Nqstat{
		URL:         endpoint,
		Project:     project,
		JobSuffix:   jobSuffix,
		Credentials: credentials,
		client:      client,
	}
}

func (s *Nqstat) Name() string {
	return "nqstat"
}

func (s *Nqstat) Jobs(ctx context.Context, ids []string) (map[string]*pbs.Job, error) {
	if s.Project == "" {
		return nil, errors.New("nqstat requires a project")
	}
	endpoint, err := url.Parse(s.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid nqstat url %q", s.URL)
	}
	query := endpoint.Query()
	query.Set("project", s.Project)
	endpoint.RawQuery = query.Encode()

	cred, err := s.Credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Authorization", "MUNGE "+cred)
	req.Header.Set("Accept", "application/json")

	log.Debugf("querying %s", describe(s.Name(), ids))
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "querying nqstat")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading nqstat response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("nqstat returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	jobs, err := qstat.ParseNqstat(body)
	if err != nil {
		return nil, err
	}
	return filter(jobs, ids, s.JobSuffix), nil
}

// leveledLogger routes the HTTP client's logging through logrus. Retries are routine, so they are
// only shown at debug level.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Error(msg)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.WithFields(fields(keysAndValues)).Debug(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
