// Package bonus splits a fixed monetary pool across a cohort in proportion to
// each employee's total contribution score.
package bonus

import (
	"math"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/cohort"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

const percent = 100.0

// ValidatePool rejects pools that cannot be split.
func ValidatePool(pool float64) error {
	if math.IsNaN(pool) || math.IsInf(pool, 0) || pool <= 0 {
		return ErrInvalidPool
	}
	return nil
}

// Allocate splits pool across members. Members with a zero score stay in the
// result with a zero allocation. An empty cohort yields an empty, non-nil result.
func Allocate(pool float64, members []cohort.Member) ([]model.BonusAllocation, error) {
	if err := ValidatePool(pool); err != nil {
		return nil, err
	}

	shares := cohort.Shares(members)
	out := make([]model.BonusAllocation, len(members))
	for i, m := range members {
		out[i] = model.BonusAllocation{
			EmployeeID:             m.Employee.ID,
			EmployeeName:           m.Employee.Name,
			TotalScore:             m.Total(),
			ContributionPercentage: shares[i] * percent,
			BonusAmount:            pool * shares[i],
			Breakdown:              m.Result.Breakdown,
		}
	}
	return out, nil
}
