package report

import (
	"fmt"
	"os"

	"github.com/kardolus/lms-reports/api"
	"gopkg.in/yaml.v3"
)

// Mapping selects and relabels assignments in the rubric report:
//
//	assignments:
//	  1201: "Essay 1"
//	  1202: "Essay 2"
type Mapping struct {
	Assignments map[int64]string `yaml:"assignments"`
}

func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	if len(m.Assignments) == 0 {
		return nil, fmt.Errorf("mapping file %s lists no assignments", path)
	}
	return &m, nil
}

// Apply keeps only the mapped assignments, in listing order, and renames
// those with a non-empty label. The input is left untouched.
func (m *Mapping) Apply(assignments api.ResultSet) (api.ResultSet, error) {
	if m == nil {
		return assignments, nil
	}

	result := api.ResultSet{}
	for i, assignment := range assignments {
		id, err := assignment.ID()
		if err != nil {
			return nil, fmt.Errorf("invalid assignment at position %d: %w", i, err)
		}
		label, ok := m.Assignments[id]
		if !ok {
			continue
		}

		copied := make(api.Record, len(assignment))
		for k, v := range assignment {
			copied[k] = v
		}
		if label != "" {
			copied[fieldName] = label
		}
		result = append(result, copied)
	}
	return result, nil
}
