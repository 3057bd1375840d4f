package report

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/kardolus/lms-reports/api"
)

const fieldURL = "url"

// PageViewCounts maps a course URL to the number of page views it received.
type PageViewCounts map[string]int

type PageViewRow struct {
	URL       string `json:"url"`
	PageViews int    `json:"pageviews"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CourseURL derives the browser URL of a course from the API location,
// keeping only the scheme and host.
func CourseURL(apiURL string, courseID int64) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid API url %q: %w", apiURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid API url %q: scheme and host are required", apiURL)
	}
	return strings.ToLower(fmt.Sprintf("%s://%s/courses/%d", u.Scheme, u.Host, courseID)), nil
}

// IsCourseURL reports whether target is the course page itself or any page
// below it. The comparison ignores case.
func IsCourseURL(courseURL, target string) bool {
	courseURL = strings.ToLower(courseURL)
	target = strings.ToLower(target)
	return target == courseURL || strings.HasPrefix(target, courseURL+"/")
}

// CountPageViews counts the page views that fall inside the course. Page
// views without a url are ignored.
func CountPageViews(courseURL string, pageViews api.ResultSet) (PageViewCounts, error) {
	counts, err := GroupBy(pageViews, func(r api.Record) (string, bool, error) {
		if _, ok := r.Get(fieldURL); !ok {
			return "", false, nil
		}
		target, err := r.RequireString(fieldURL)
		if err != nil {
			return "", false, fmt.Errorf("invalid page view: %w", err)
		}
		return target, IsCourseURL(courseURL, target), nil
	}, Count)
	if err != nil {
		return nil, err
	}
	return PageViewCounts(counts), nil
}

// Rows lists the counts by URL ascending, stamped with the date range.
func (c PageViewCounts) Rows(startTime, endTime string) []PageViewRow {
	rows := make([]PageViewRow, 0, len(c))
	for u, n := range c {
		rows = append(rows, PageViewRow{URL: u, PageViews: n, StartTime: startTime, EndTime: endTime})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].URL < rows[j].URL
	})
	return rows
}

func (c PageViewCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// UniqueUserIDs returns the distinct, non-null user_id values of the
// enrollments in ascending order. A user enrolled more than once appears
// once.
func UniqueUserIDs(enrollments api.ResultSet) ([]int64, error) {
	seen, err := GroupBy(enrollments, func(r api.Record) (int64, bool, error) {
		if _, ok := r.Get(fieldUserID); !ok {
			return 0, false, nil
		}
		id, err := r.RequireInt(fieldUserID)
		if err != nil {
			return 0, false, fmt.Errorf("invalid enrollment: %w", err)
		}
		return id, true, nil
	}, Count)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids, nil
}
