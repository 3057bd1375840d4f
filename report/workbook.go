package report

import (
	"fmt"

	"github.com/kardolus/lms-reports/internal"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet       = "Sheet1"
	rubricsSheet       = "Rubrics"
	readingPeriodSheet = "Reading Period Sheet"
	coursesSheet       = "Courses Sheet"

	yes = "YES"
	no  = "NO"
)

// WriteRubricsWorkbook writes one row per student. Each assignment takes a
// group of columns, two per criterion: points then comments.
func WriteRubricsWorkbook(path string, rubrics StudentRubrics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, rubricsSheet); err != nil {
		return err
	}

	header := []any{"Student ID", "Name", "Sortable Name", "Email"}
	criteria := []any{"", "", "", ""}

	// merged ranges redirect writes to their top-left cell, so the header
	// rows are written before any group is merged
	var groups [][2]int

	if len(rubrics) > 0 {
		col := len(header) + 1
		for _, a := range rubrics[0].Assignments {
			width := 2 * len(a.Criteria)
			if width == 0 {
				continue
			}

			header = append(header, fmt.Sprintf("%s (%d)", a.AssignmentName, a.AssignmentID))
			for i := 1; i < width; i++ {
				header = append(header, "")
			}
			for _, c := range a.Criteria {
				criteria = append(criteria, c.Description+" Points", c.Description+" Comments")
			}

			groups = append(groups, [2]int{col, col + width - 1})
			col += width
		}
	}

	if err := setRow(f, rubricsSheet, 1, header); err != nil {
		return err
	}
	if err := setRow(f, rubricsSheet, 2, criteria); err != nil {
		return err
	}
	for _, g := range groups {
		if err := mergeRow(f, rubricsSheet, 1, g[0], g[1]); err != nil {
			return err
		}
	}

	for i, student := range rubrics {
		row := []any{student.StudentID, student.Name, student.SortableName, student.Email}
		for _, a := range student.Assignments {
			for _, c := range a.Criteria {
				var points, comments any = "", ""
				if c.Points != nil {
					points = *c.Points
				}
				if c.Comments != nil {
					comments = *c.Comments
				}
				row = append(row, points, comments)
			}
		}
		if err := setRow(f, rubricsSheet, i+3, row); err != nil {
			return err
		}
	}

	return save(f, path)
}

// DueDatesBook is the content of the due dates workbook. Conflicts and the
// reading period sheet are only written when Reading is set.
type DueDatesBook struct {
	Zone      string
	Rows      []DueDateRow
	Reading   *Period
	Exam      *Period
	Conflicts []PeriodConflict
}

func WriteDueDatesWorkbook(path string, book DueDatesBook) error {
	f := excelize.NewFile()
	defer f.Close()

	first := coursesSheet
	if book.Reading != nil {
		first = readingPeriodSheet
	}
	if err := f.SetSheetName(defaultSheet, first); err != nil {
		return err
	}

	if book.Reading != nil {
		if err := writeReadingPeriodSheet(f, book); err != nil {
			return err
		}
		if _, err := f.NewSheet(coursesSheet); err != nil {
			return err
		}
	}

	if err := setRow(f, coursesSheet, 1, []any{"All course assignment due dates"}); err != nil {
		return err
	}
	header := []any{"Term", "Course", "Assignment", "Due Date (UTC)", fmt.Sprintf("Due Date (%s)", book.Zone)}
	if err := setRow(f, coursesSheet, 2, header); err != nil {
		return err
	}
	for i, r := range book.Rows {
		if err := setRow(f, coursesSheet, i+3, []any{r.Term, r.Course, r.Assignment, r.DueUTC, r.DueLocal}); err != nil {
			return err
		}
	}

	return save(f, path)
}

func writeReadingPeriodSheet(f *excelize.File, book DueDatesBook) error {
	title := fmt.Sprintf("Courses with assignment due dates during Reading Period: %s", book.Reading)
	if err := setRow(f, readingPeriodSheet, 1, []any{title}); err != nil {
		return err
	}

	header := []any{"Term", "Course", "Due Dates during Reading Period?", "Due Dates also during Exam Period?"}
	var keys []string
	for _, p := range []*Period{book.Reading, book.Exam} {
		if p == nil {
			continue
		}
		for _, d := range p.Days() {
			header = append(header, d.Format(dayHeaderLayout))
			keys = append(keys, d.Format(internal.DateLayout))
		}
	}
	if err := setRow(f, readingPeriodSheet, 2, header); err != nil {
		return err
	}

	readingDays := len(book.Reading.Days())
	for i, c := range book.Conflicts {
		exam := no
		if c.HasExam() {
			exam = yes
		}

		row := []any{c.Term, c.Course, yes, exam}
		for j, key := range keys {
			mark := ""
			if (j < readingDays && c.Reading[key]) || (j >= readingDays && c.Exam[key]) {
				mark = "X"
			}
			row = append(row, mark)
		}
		if err := setRow(f, readingPeriodSheet, i+3, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func mergeRow(f *excelize.File, sheet string, row, fromCol, toCol int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.MergeCell(sheet, from, to)
}

func save(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
