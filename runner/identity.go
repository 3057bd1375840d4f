package runner

import (
	"net/url"
	"strings"

	"github.com/kardolus/lms-reports/cache"
)

const (
	ReportPageViews       = "pageviews"
	ReportRubrics         = "rubrics"
	ReportDueDates        = "duedates"
	ReportEmails          = "emails"
	ReportCourses         = "courses"
	ReportAssignmentViews = "assignmentviews"
)

// DefaultCacheMode is used when no cache mode is configured. Reports that
// issue one request per user share one file per run.
func DefaultCacheMode(name string) cache.Mode {
	switch name {
	case ReportPageViews, ReportDueDates, ReportAssignmentViews:
		return cache.ModeRun
	default:
		return cache.ModeCall
	}
}

// RunIdentity names the data set of one report run. It picks the shared
// cache file when caching per run.
func RunIdentity(name string, params url.Values) cache.Identity {
	return cache.Identity{Endpoint: name, Params: params}
}

func (o PageViewsOptions) RunIdentity() cache.Identity {
	return RunIdentity(ReportPageViews, url.Values{
		"course":           {id(o.CourseID)},
		"enrollment_types": {strings.Join(o.EnrollmentTypes, "")},
		"start_time":       {o.Start},
		"end_time":         {o.End},
	})
}

func (o RubricsOptions) RunIdentity() cache.Identity {
	return RunIdentity(ReportRubrics, url.Values{"course": {id(o.CourseID)}})
}

func (o DueDatesOptions) RunIdentity() cache.Identity {
	return RunIdentity(ReportDueDates, url.Values{
		"account": {id(o.AccountID)},
		"term":    {o.TermID},
	})
}

func (o AssignmentViewsOptions) RunIdentity() cache.Identity {
	return RunIdentity(ReportAssignmentViews, url.Values{
		"course":     {id(o.CourseID)},
		"start_time": {o.Start},
		"end_time":   {o.End},
	})
}
