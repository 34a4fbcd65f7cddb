package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const Stacktrace = "stacktrace"

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStacktrace adds err and, if one was recorded, the innermost stack trace of its chain to
// logger. The innermost trace is the one closest to where the error was created.
func WithStacktrace(logger *logrus.Entry, err error) *logrus.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack returns the innermost errors.StackTrace in the chain of err, or nil.
func ExtractStack(err error) errors.StackTrace {
	var stack errors.StackTrace
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			stack = st.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return stack
}
