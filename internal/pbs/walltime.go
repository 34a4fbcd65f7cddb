package pbs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/coecms/qtools/internal/common/pbserrors"
)

var walltimePattern = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)

// ParseWalltime reads a PBS walltime of the form H:MM:SS. Hours are unbounded; minutes and seconds
// are exactly two digits and below 60.
func ParseWalltime(s string) (time.Duration, error) {
	m := walltimePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, walltimeError(s, "expected H:MM:SS")
	}
	hours, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || hours > int64(math.MaxInt64/time.Hour) {
		return 0, walltimeError(s, "hours out of range")
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if minutes >= 60 || seconds >= 60 {
		return 0, walltimeError(s, "minutes and seconds must be below 60")
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if d < 0 {
		return 0, walltimeError(s, "hours out of range")
	}
	return d, nil
}

// FormatWalltime renders d as H:MM:SS, truncating to whole seconds.
func FormatWalltime(d time.Duration) string {
	s := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

func walltimeError(s, message string) error {
	return errors.WithStack(&pbserrors.ErrFormat{Kind: "walltime", Value: s, Message: message})
}
