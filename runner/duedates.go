package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/report"
	"go.uber.org/zap"
)

const dueDatesFile = "duedates.xlsx"

var ErrExamWithoutReading = errors.New("an exam period requires a reading period")

type DueDatesOptions struct {
	AccountID int64
	TermID    string
	Reading   *report.Period
	Exam      *report.Period
	Location  *time.Location
}

func (o DueDatesOptions) Validate() error {
	if o.Exam != nil && o.Reading == nil {
		return ErrExamWithoutReading
	}
	return nil
}

// DueDates lists the due dates of every published course of the account
// and, given a reading period, the courses with work due during it.
func (r *Runner) DueDates(ctx context.Context, opts DueDatesOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	sugar := zap.S()

	courses, err := r.loader.Load(ctx, client.AccountCoursesRequest(id(opts.AccountID), opts.TermID, r.config.PerPage))
	if err != nil {
		return nil, err
	}
	courses = report.PublishedCourses(courses)
	sugar.Infof("=> Published courses in account %d: %d", opts.AccountID, len(courses))

	list := make([]report.CourseAssignments, 0, len(courses))
	for _, course := range courses {
		courseID, err := course.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid course: %w", err)
		}

		assignments, err := r.loader.Load(ctx, client.AssignmentsRequest(id(courseID), r.config.PerPage))
		if err != nil {
			return nil, err
		}
		sugar.Debugf("Course %d: %d assignments", courseID, len(assignments))

		list = append(list, report.CourseAssignments{Course: course, Assignments: assignments})
	}

	rows, err := report.DueDates(list, loc)
	if err != nil {
		return nil, err
	}

	book := report.DueDatesBook{Zone: loc.String(), Rows: rows}
	if opts.Reading != nil {
		conflicts, err := report.PeriodConflicts(list, *opts.Reading, opts.Exam)
		if err != nil {
			return nil, err
		}
		sugar.Infof("=> Courses with due dates during the reading period %s: %d", opts.Reading, len(conflicts))

		book.Reading = opts.Reading
		book.Exam = opts.Exam
		book.Conflicts = conflicts
	}

	path := r.path(dueDatesFile)
	sugar.Infof("=> Saving spreadsheet to %s", path)
	if err := report.WriteDueDatesWorkbook(path, book); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
