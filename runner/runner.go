package runner

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/config"
	"github.com/kardolus/lms-reports/report"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=loadermocks_test.go -package=runner_test github.com/kardolus/lms-reports/runner Loader
type Loader interface {
	Load(ctx context.Context, req api.Request) (api.ResultSet, error)
}

// Runner executes the reports. Every request goes through the loader, one
// at a time.
type Runner struct {
	config config.Config
	loader Loader
	out    io.Writer
}

func New(cfg config.Config, loader Loader, out io.Writer) *Runner {
	return &Runner{
		config: cfg,
		loader: loader,
		out:    out,
	}
}

func (r *Runner) path(name string) string {
	return filepath.Join(r.config.OutputDir, name)
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Courses prints the courses of the token's owner.
func (r *Runner) Courses(ctx context.Context) error {
	courses, err := r.loader.Load(ctx, client.ListCoursesRequest(r.config.PerPage))
	if err != nil {
		return err
	}

	zap.S().Infof("=> Retrieved %d courses", len(courses))
	report.RenderCourses(r.out, courses)
	return nil
}

// Emails prints "email,name" for every student of the course.
func (r *Runner) Emails(ctx context.Context, courseID int64) error {
	students, err := r.loader.Load(ctx, client.CourseStudentsRequest(id(courseID), r.config.PerPage))
	if err != nil {
		return err
	}

	rows, err := report.StudentEmails(students)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(r.out, report.EmailsCSV(rows))
	return err
}
