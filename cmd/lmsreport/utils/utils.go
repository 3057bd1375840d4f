package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kardolus/lms-reports/internal"
)

// ParseID reads a positive numeric identifier given on the command line.
func ParseID(kind, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing %s", kind)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", kind, s)
	}
	return id, nil
}

// DateRange validates a YYYY-MM-DD range. A missing end defaults to today,
// a missing start to the given number of days before the end.
func DateRange(start, end string, today time.Time, days int) (string, string, error) {
	var (
		e   time.Time
		err error
	)

	if end == "" {
		e = truncateDay(today)
	} else if e, err = time.Parse(internal.DateLayout, end); err != nil {
		return "", "", fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", end)
	}

	s := e.AddDate(0, 0, -days)
	if start != "" {
		if s, err = time.Parse(internal.DateLayout, start); err != nil {
			return "", "", fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", start)
		}
	}

	if s.After(e) {
		return "", "", fmt.Errorf("start date %s is after end date %s", s.Format(internal.DateLayout), e.Format(internal.DateLayout))
	}

	return s.Format(internal.DateLayout), e.Format(internal.DateLayout), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LoadLocation resolves an IANA timezone name. Empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// SplitList accepts repeated flags as well as comma separated values.
func SplitList(values []string) []string {
	var result []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
