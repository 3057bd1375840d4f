package runner

import (
	"context"
	"fmt"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/client"
	"github.com/kardolus/lms-reports/report"
	"go.uber.org/zap"
)

type RubricsOptions struct {
	CourseID int64
	Mapping  *report.Mapping
}

type rubricAssessments struct {
	AssignmentID      int64         `json:"assignment_id"`
	RubricAssessments api.ResultSet `json:"rubric_assessments"`
	Total             int           `json:"total"`
}

// Rubrics writes the raw assignment and submission data of the course, the
// rubric scores grouped per student and a workbook of those scores.
func (r *Runner) Rubrics(ctx context.Context, opts RubricsOptions) ([]string, error) {
	sugar := zap.S()
	courseID := id(opts.CourseID)

	assignments, err := r.loader.Load(ctx, client.AssignmentsRequest(courseID, r.config.PerPage))
	if err != nil {
		return nil, err
	}
	if assignments, err = opts.Mapping.Apply(assignments); err != nil {
		return nil, err
	}
	sugar.Infof("=> Retrieved %d assignments for course %d", len(assignments), opts.CourseID)

	submissions := api.ResultSet{}
	sets := make([]rubricAssessments, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentID, err := assignment.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid assignment: %w", err)
		}

		result, err := r.loader.Load(ctx, client.SubmissionsRequest(courseID, assignmentID, r.config.PerPage))
		if err != nil {
			return nil, err
		}
		sugar.Debugf("Rubric assessments for assignment %d: %d", assignmentID, len(result))

		sets = append(sets, rubricAssessments{AssignmentID: assignmentID, RubricAssessments: result, Total: len(result)})
		submissions = append(submissions, result...)
	}

	students, err := r.loader.Load(ctx, client.CourseStudentsRequest(courseID, r.config.PerPage))
	if err != nil {
		return nil, err
	}

	logPath := r.path(fmt.Sprintf("%d.json.log", opts.CourseID))
	sugar.Infof("=> Writing data to %s", logPath)
	raw := map[string]any{
		"Assignments":              assignments,
		"Assignments Total":        len(assignments),
		"Rubric Assessments":       sets,
		"Rubric Assessments Total": len(submissions),
	}
	if err := report.WriteJSONFile(logPath, raw); err != nil {
		return nil, err
	}

	grouped, err := report.GroupRubrics(students, assignments, submissions)
	if err != nil {
		return nil, err
	}

	jsonPath := r.path(fmt.Sprintf("rubrics_%d.json", opts.CourseID))
	if err := report.WriteJSONFile(jsonPath, grouped); err != nil {
		return nil, err
	}
	xlsxPath := r.path(fmt.Sprintf("rubrics_%d.xlsx", opts.CourseID))
	if err := report.WriteRubricsWorkbook(xlsxPath, grouped); err != nil {
		return nil, err
	}

	sugar.Infof("=> Saved rubric scores of %d students to %s and %s", len(grouped), jsonPath, xlsxPath)
	return []string{logPath, jsonPath, xlsxPath}, nil
}
