// Package promotion ranks a cohort by total contribution score and marks the
// top candidates as recommended for a fixed number of slots.
package promotion

import (
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/cohort"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// ValidateSlots rejects slot counts that cannot select anyone.
func ValidateSlots(totalSlots int) error {
	if totalSlots <= 0 {
		return ErrInvalidSlots
	}
	return nil
}

// Rank orders members highest score first and recommends the first totalSlots.
// Ranks are 1..N with no ties; equal scores fall back to cohort order.
func Rank(totalSlots int, members []cohort.Member) ([]model.PromotionCandidate, error) {
	if err := ValidateSlots(totalSlots); err != nil {
		return nil, err
	}

	order := cohort.RankOrder(members)
	out := make([]model.PromotionCandidate, len(order))
	for pos, idx := range order {
		m := members[idx]
		rank := pos + 1
		out[pos] = model.PromotionCandidate{
			EmployeeID:   m.Employee.ID,
			EmployeeName: m.Employee.Name,
			TotalScore:   m.Total(),
			Rank:         rank,
			Recommended:  rank <= totalSlots,
			Breakdown:    m.Result.Breakdown,
		}
	}
	return out, nil
}
