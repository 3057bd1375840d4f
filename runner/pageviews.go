package runner

import (
	"context"
	"fmt"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/report"
	"go.uber.org/zap"
)

type PageViewsOptions struct {
	CourseID        int64
	Start           string
	End             string
	EnrollmentTypes []string
}

// PageViews counts the page views of every user enrolled in the course,
// restricted to pages of that course, and writes them as CSV and JSON.
func (r *Runner) PageViews(ctx context.Context, opts PageViewsOptions) ([]string, error) {
	sugar := zap.S()
	courseID := id(opts.CourseID)

	sugar.Infof("=> Fetching course data")
	course, err := r.loader.Load(ctx, client.CourseRequest(courseID))
	if err != nil {
		return nil, err
	}
	if len(course) != 1 {
		return nil, fmt.Errorf("course %d not found", opts.CourseID)
	}

	courseURL, err := report.CourseURL(r.config.URL, opts.CourseID)
	if err != nil {
		return nil, err
	}

	// A user with several enrollments (teacher and student, or more than
	// one section) is listed once per enrollment.
	sugar.Infof("=> Fetching enrolled users for course %d", opts.CourseID)
	enrollments, err := r.loader.Load(ctx, client.EnrollmentsRequest(courseID, opts.EnrollmentTypes, r.config.PerPage))
	if err != nil {
		return nil, err
	}
	users, err := report.UniqueUserIDs(enrollments)
	if err != nil {
		return nil, err
	}
	sugar.Infof("=> Retrieved %d enrolled users for course %d", len(users), opts.CourseID)

	views := api.ResultSet{}
	for i, userID := range users {
		sugar.Infof("=> Fetching %d of %d user page views [user_id=%d]", i+1, len(users), userID)
		result, err := r.loader.Load(ctx, client.UserPageViewsRequest(userID, opts.Start, opts.End, r.config.PerPage, client.PageViewFields))
		if err != nil {
			return nil, err
		}
		views = append(views, result...)
	}
	sugar.Infof("=> Fetched page views of %d users with %d total objects", len(users), len(views))

	counts, err := report.CountPageViews(courseURL, views)
	if err != nil {
		return nil, err
	}
	sugar.Infof("=> Counted %d page views across %d course pages", counts.Total(), len(counts))

	rows := counts.Rows(opts.Start, opts.End)
	base := fmt.Sprintf("pageviews_%d_%s-%s", opts.CourseID, opts.Start, opts.End)

	csvPath := r.path(base + ".csv")
	if err := report.WriteFile(csvPath, []byte(report.PageViewsCSV(rows))); err != nil {
		return nil, err
	}
	jsonPath := r.path(base + ".json")
	if err := report.WriteJSONFile(jsonPath, rows); err != nil {
		return nil, err
	}

	sugar.Infof("=> Saved page views to %s and %s", csvPath, jsonPath)
	return []string{csvPath, jsonPath}, nil
}
