package report

import (
	"fmt"
	"sort"

	"github.com/kardolus/lms-reports/api"
)

type EmailRow struct {
	Email string
	Name  string
}

// StudentEmails lists students by email address. Students without an email
// are listed with an empty one, first.
func StudentEmails(students api.ResultSet) ([]EmailRow, error) {
	rows := make([]EmailRow, 0, len(students))
	for i, s := range students {
		if _, err := s.ID(); err != nil {
			return nil, fmt.Errorf("invalid student at position %d: %w", i, err)
		}
		email, _ := s.String(fieldEmail)
		name, _ := s.String(fieldName)
		rows = append(rows, EmailRow{Email: email, Name: name})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Email < rows[j].Email
	})
	return rows, nil
}
