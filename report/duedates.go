package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/internal"
)

const (
	fieldDueAt         = "due_at"
	fieldTerm          = "term"
	fieldWorkflowState = "workflow_state"

	workflowUnpublished = "unpublished"
	noDueDate           = "None"

	localDueLayout  = "Mon, Jan 02 at 03:04PM"
	dayHeaderLayout = "Mon Jan 02, 2006"
	rangeLayout     = "01/02/2006"
)

var ErrIncompletePeriod = errors.New("a period needs both a start and an end date")

// Period is a closed range of calendar days in one location. The last day
// counts until its end.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod reads two YYYY-MM-DD dates as midnight in loc. Both empty
// yields nil; exactly one empty is an error.
func ParsePeriod(start, end string, loc *time.Location) (*Period, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, ErrIncompletePeriod
	}

	s, err := time.ParseInLocation(internal.DateLayout, start, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(internal.DateLayout, end, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return nil, fmt.Errorf("period ends (%s) before it starts (%s)", end, start)
	}
	return &Period{Start: s, End: e}, nil
}

// Days lists every calendar day of the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (p Period) Contains(t time.Time) bool {
	t = t.In(p.Start.Location())
	return !t.Before(p.Start) && t.Before(p.End.AddDate(0, 0, 1))
}

func (p Period) String() string {
	return p.Start.Format(rangeLayout) + " - " + p.End.Format(rangeLayout)
}

// PublishedCourses drops unpublished courses and sorts the rest by name.
func PublishedCourses(courses api.ResultSet) api.ResultSet {
	result := api.ResultSet{}
	for _, course := range courses {
		if state, _ := course.String(fieldWorkflowState); state == workflowUnpublished {
			continue
		}
		result = append(result, course)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, _ := result[i].String(fieldName)
		b, _ := result[j].String(fieldName)
		return a < b
	})
	return result
}

type CourseAssignments struct {
	Course      api.Record
	Assignments api.ResultSet
}

type DueDateRow struct {
	Term       string
	Course     string
	Assignment string
	DueUTC     string
	DueLocal   string
}

// PeriodConflict is a course with at least one assignment due during the
// reading period. Exam holds due days of the exam period, if one was given.
type PeriodConflict struct {
	Term    string
	Course  string
	Reading map[string]bool
	Exam    map[string]bool
}

func (c PeriodConflict) HasExam() bool {
	return len(c.Exam) > 0
}

// DueDates lists every assignment of every course with its due date both as
// given and in loc.
func DueDates(courses []CourseAssignments, loc *time.Location) ([]DueDateRow, error) {
	var rows []DueDateRow
	for _, ca := range courses {
		term, course, err := courseLabels(ca.Course)
		if err != nil {
			return nil, err
		}

		for _, assignment := range ca.Assignments {
			label, err := assignmentLabel(assignment)
			if err != nil {
				return nil, fmt.Errorf("course %s: %w", course, err)
			}

			row := DueDateRow{Term: term, Course: course, Assignment: label, DueUTC: noDueDate, DueLocal: noDueDate}
			due, ok, err := dueAt(assignment)
			if err != nil {
				return nil, fmt.Errorf("course %s, assignment %s: %w", course, label, err)
			}
			if ok {
				raw, _ := assignment.String(fieldDueAt)
				row.DueUTC = raw
				row.DueLocal = due.In(loc).Format(localDueLayout)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// PeriodConflicts finds the courses with due dates inside the reading
// period. A due date inside both periods counts for the reading period only.
func PeriodConflicts(courses []CourseAssignments, reading Period, exam *Period) ([]PeriodConflict, error) {
	var result []PeriodConflict
	for _, ca := range courses {
		term, course, err := courseLabels(ca.Course)
		if err != nil {
			return nil, err
		}

		conflict := PeriodConflict{Term: term, Course: course, Reading: map[string]bool{}, Exam: map[string]bool{}}
		for _, assignment := range ca.Assignments {
			due, ok, err := dueAt(assignment)
			if err != nil {
				return nil, fmt.Errorf("course %s: %w", course, err)
			}
			if !ok {
				continue
			}

			switch {
			case reading.Contains(due):
				conflict.Reading[dayKey(due, reading)] = true
			case exam != nil && exam.Contains(due):
				conflict.Exam[dayKey(due, *exam)] = true
			}
		}

		if len(conflict.Reading) > 0 {
			result = append(result, conflict)
		}
	}
	return result, nil
}

func dayKey(t time.Time, p Period) string {
	return t.In(p.Start.Location()).Format(internal.DateLayout)
}

func dueAt(assignment api.Record) (time.Time, bool, error) {
	raw, ok := assignment.String(fieldDueAt)
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid due_at %q: %w", raw, err)
	}
	return t, true, nil
}

func courseLabels(course api.Record) (string, string, error) {
	id, err := course.ID()
	if err != nil {
		return "", "", fmt.Errorf("invalid course: %w", err)
	}
	name, _ := course.String(fieldName)

	term := ""
	if t, ok := course.Map(fieldTerm); ok {
		term, _ = t.String(fieldName)
	}
	return term, fmt.Sprintf("%s (%d)", name, id), nil
}

func assignmentLabel(assignment api.Record) (string, error) {
	id, err := assignment.ID()
	if err != nil {
		return "", fmt.Errorf("invalid assignment: %w", err)
	}
	name, _ := assignment.String(fieldName)
	return fmt.Sprintf("%s (%d)", name, id), nil
}
