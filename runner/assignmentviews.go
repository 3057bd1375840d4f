package runner

import (
	"context"
	"fmt"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/report"
	"go.uber.org/zap"
)

type AssignmentViewsOptions struct {
	CourseID int64
	Start    string
	End      string
}

// AssignmentViews dumps the students of the course and every page view they
// made in the date range, unfiltered.
func (r *Runner) AssignmentViews(ctx context.Context, opts AssignmentViewsOptions) ([]string, error) {
	sugar := zap.S()

	students, err := r.loader.Load(ctx, client.CourseStudentsRequest(id(opts.CourseID), r.config.PerPage))
	if err != nil {
		return nil, err
	}

	views := api.ResultSet{}
	for i, student := range students {
		userID, err := student.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid student at position %d: %w", i, err)
		}

		result, err := r.loader.Load(ctx, client.UserPageViewsRequest(userID, opts.Start, opts.End, r.config.PerPage, nil))
		if err != nil {
			return nil, err
		}
		sugar.Debugf("Page views for user_id=%d: %d", userID, len(result))
		views = append(views, result...)
	}

	path := r.path(fmt.Sprintf("%d.json", opts.CourseID))
	sugar.Infof("=> Writing data to %s", path)
	data := map[string]any{
		"course_users": students,
		"page_views":   views,
	}
	if err := report.WriteJSONFile(path, data); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
