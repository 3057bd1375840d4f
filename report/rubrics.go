package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kardolus/lms-reports/api"
)

const (
	fieldAssignmentID     = "assignment_id"
	fieldComments         = "comments"
	fieldDescription      = "description"
	fieldEmail            = "email"
	fieldID               = "id"
	fieldName             = "name"
	fieldPoints           = "points"
	fieldRubric           = "rubric"
	fieldRubricAssessment = "rubric_assessment"
	fieldSortableName     = "sortable_name"
	fieldUserID           = "user_id"
)

type CriterionScore struct {
	CriterionID string   `json:"criterion_id"`
	Description string   `json:"description"`
	Comments    *string  `json:"comments"`
	Points      *float64 `json:"points"`
}

type AssignmentRubric struct {
	AssignmentID   int64            `json:"assignment_id"`
	AssignmentName string           `json:"assignment_name"`
	Assessed       bool             `json:"assessed"`
	Criteria       []CriterionScore `json:"criteria"`
}

type StudentRubric struct {
	StudentID    int64              `json:"student_id"`
	Name         string             `json:"name"`
	SortableName string             `json:"sortable_name"`
	Email        string             `json:"email,omitempty"`
	Assignments  []AssignmentRubric `json:"assignments"`
}

// StudentRubrics holds one entry per student, each listing every rubric
// bearing assignment of the course.
type StudentRubrics []StudentRubric

type criterion struct {
	id          string
	description string
}

type rubricAssignment struct {
	id       int64
	name     string
	criteria []criterion
}

type assessmentKey struct {
	assignmentID int64
	userID       int64
}

// GroupRubrics crosses every student with every assignment that carries a
// rubric. Each pair lists all criteria in rubric order; criteria the student
// was not assessed on have null comments and points.
//
// Students are ordered by sortable_name, then name, then ID. Assignments
// keep their listing order.
func GroupRubrics(students, assignments, submissions api.ResultSet) (StudentRubrics, error) {
	rubrics, err := rubricsByAssignment(assignments)
	if err != nil {
		return nil, err
	}

	assessments, err := assessmentsBySubmission(submissions)
	if err != nil {
		return nil, err
	}

	people, err := sortStudents(students)
	if err != nil {
		return nil, err
	}

	result := make(StudentRubrics, 0, len(people))
	for _, student := range people {
		for _, rubric := range rubrics {
			assessment, assessed := assessments[assessmentKey{assignmentID: rubric.id, userID: student.StudentID}]

			scores := make([]CriterionScore, 0, len(rubric.criteria))
			for _, c := range rubric.criteria {
				score := CriterionScore{CriterionID: c.id, Description: c.description}
				if assessed {
					if entry, ok := assessment.Map(c.id); ok {
						if comments, ok := entry.String(fieldComments); ok {
							score.Comments = &comments
						}
						if points, ok := entry.Float(fieldPoints); ok {
							score.Points = &points
						}
					}
				}
				scores = append(scores, score)
			}

			student.Assignments = append(student.Assignments, AssignmentRubric{
				AssignmentID:   rubric.id,
				AssignmentName: rubric.name,
				Assessed:       assessed,
				Criteria:       scores,
			})
		}
		if student.Assignments == nil {
			student.Assignments = []AssignmentRubric{}
		}
		result = append(result, student)
	}

	return result, nil
}

func rubricsByAssignment(assignments api.ResultSet) ([]rubricAssignment, error) {
	var result []rubricAssignment

	for i, assignment := range assignments {
		id, err := assignment.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid assignment at position %d: %w", i, err)
		}

		items, ok := assignment.Slice(fieldRubric)
		if !ok || len(items) == 0 {
			continue
		}

		name, _ := assignment.String(fieldName)
		rubric := rubricAssignment{id: id, name: name}

		for j, item := range items {
			record, ok := api.AsRecord(item)
			if !ok {
				return nil, fmt.Errorf("invalid rubric of assignment %d: criterion %d is not an object", id, j)
			}
			criterionID, err := record.RequireString(fieldID)
			if err != nil {
				return nil, fmt.Errorf("invalid rubric of assignment %d: criterion %d: %w", id, j, err)
			}
			description, err := record.RequireString(fieldDescription)
			if err != nil {
				return nil, fmt.Errorf("invalid rubric of assignment %d: criterion %s: %w", id, criterionID, err)
			}
			rubric.criteria = append(rubric.criteria, criterion{id: criterionID, description: description})
		}

		result = append(result, rubric)
	}

	return result, nil
}

// assessmentsBySubmission keeps the first rubric assessment seen for each
// (assignment, user) pair.
func assessmentsBySubmission(submissions api.ResultSet) (map[assessmentKey]api.Record, error) {
	return GroupBy(submissions, func(r api.Record) (assessmentKey, bool, error) {
		userID, err := r.RequireInt(fieldUserID)
		if err != nil {
			return assessmentKey{}, false, fmt.Errorf("invalid submission: %w", err)
		}
		assignmentID, err := r.RequireInt(fieldAssignmentID)
		if err != nil {
			return assessmentKey{}, false, fmt.Errorf("invalid submission for user %d: %w", userID, err)
		}
		_, assessed := r.Map(fieldRubricAssessment)
		return assessmentKey{assignmentID: assignmentID, userID: userID}, assessed, nil
	}, func(current api.Record, r api.Record) api.Record {
		if current != nil {
			return current
		}
		assessment, _ := r.Map(fieldRubricAssessment)
		return assessment
	})
}

func sortStudents(students api.ResultSet) ([]StudentRubric, error) {
	result := make([]StudentRubric, 0, len(students))
	for i, s := range students {
		id, err := s.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid student at position %d: %w", i, err)
		}
		name, _ := s.String(fieldName)
		sortable, _ := s.String(fieldSortableName)
		email, _ := s.String(fieldEmail)
		result = append(result, StudentRubric{StudentID: id, Name: name, SortableName: sortable, Email: email})
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := sortKey(result[i]), sortKey(result[j])
		if a != b {
			return a < b
		}
		return result[i].StudentID < result[j].StudentID
	})
	return result, nil
}

func sortKey(s StudentRubric) string {
	if s.SortableName != "" {
		return strings.ToLower(s.SortableName)
	}
	return strings.ToLower(s.Name)
}
