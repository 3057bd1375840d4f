package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kardolus/lms-reports/api"
)

const fieldCourseCode = "course_code"

func PageViewsCSV(rows []PageViewRow) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"URL", "Page Views", "Start Time", "End Time"})
	for _, row := range rows {
		t.AppendRow(table.Row{row.URL, row.PageViews, row.StartTime, row.EndTime})
	}
	return t.RenderCSV() + "\n"
}

// EmailsCSV renders one "email,name" line per student, without a header.
func EmailsCSV(rows []EmailRow) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.NewWriter()
	for _, row := range rows {
		t.AppendRow(table.Row{row.Email, row.Name})
	}
	return t.RenderCSV() + "\n"
}

// RenderCourses prints the courses as a terminal table.
func RenderCourses(w io.Writer, courses api.ResultSet) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Course Code", "Term", "State"})

	for _, course := range courses {
		id, _ := course.String(fieldID)
		name, _ := course.String(fieldName)
		code, _ := course.String(fieldCourseCode)
		state, _ := course.String(fieldWorkflowState)

		term := ""
		if record, ok := course.Map(fieldTerm); ok {
			term, _ = record.String(fieldName)
		}

		t.AppendRow(table.Row{id, name, code, term, state})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", len(courses)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
