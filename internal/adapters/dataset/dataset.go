// Package dataset reads organizational input data from YAML files.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// Sentinel kinds for dataset errors.
var (
	ErrInvalidDataset = errors.New("invalid dataset")
)

// LoadFile reads and validates the dataset at path.
func LoadFile(path string) (model.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// Decode parses a YAML dataset from r. Unknown fields are rejected.
func Decode(r io.Reader) (model.Dataset, error) {
	var ds model.Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return model.Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if err := Validate(ds); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// Validate checks ids and references. Ratings may reference employees or
// projects that are absent; scoring simply never looks them up.
func Validate(ds model.Dataset) error {
	employees := make(map[string]struct{}, len(ds.Employees))
	for i, e := range ds.Employees {
		if e.ID == "" {
			return fmt.Errorf("%w: employee #%d has no id", ErrInvalidDataset, i)
		}
		employees[e.ID] = struct{}{}
	}

	projects := make(map[string]struct{}, len(ds.Projects))
	for i, p := range ds.Projects {
		if p.ID == "" {
			return fmt.Errorf("%w: project #%d has no id", ErrInvalidDataset, i)
		}
		if p.Weightage < 0 {
			return fmt.Errorf("%w: project %s has negative weightage", ErrInvalidDataset, p.ID)
		}
		projects[p.ID] = struct{}{}
	}

	for i, t := range ds.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task #%d has no id", ErrInvalidDataset, i)
		}
		if _, ok := projects[t.ProjectID]; !ok {
			return fmt.Errorf("%w: task %s references unknown project %q", ErrInvalidDataset, t.ID, t.ProjectID)
		}
		for _, a := range t.AssigneeIDs {
			if _, ok := employees[a]; !ok {
				return fmt.Errorf("%w: task %s assigned to unknown employee %q", ErrInvalidDataset, t.ID, a)
			}
		}
	}

	for _, r := range append(append([]model.Rating{}, ds.ManagerRatings...), ds.PeerRatings...) {
		if !inScale(r.Volume) || !inScale(r.Quality) || !inScale(r.Speed) {
			return fmt.Errorf("%w: rating for %s on %s outside 0-5", ErrInvalidDataset, r.EmployeeID, r.ProjectID)
		}
	}
	for _, k := range ds.KPIs {
		if !inScale(k.Value) {
			return fmt.Errorf("%w: kpi %s for %s on %s outside 0-5", ErrInvalidDataset, k.Metric, k.EmployeeID, k.ProjectID)
		}
	}
	return nil
}

func inScale(v float64) bool { return v >= 0 && v <= 5 }
