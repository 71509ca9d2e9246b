// Package cohort normalizes total scores across a set of employees.
package cohort

import (
	"cmp"
	"slices"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
)

// Member is a scored employee within a cohort.
type Member struct {
	Employee model.Employee
	Result   scoring.Result
}

// Total returns the member's total contribution score.
func (m Member) Total() float64 { return m.Result.TotalScore }

// Shares returns each member's fraction of the cohort's summed score.
// A cohort summing to zero gets all-zero shares.
func Shares(members []Member) []float64 {
	shares := make([]float64, len(members))
	sum := 0.0
	for _, m := range members {
		sum += m.Total()
	}
	if sum == 0 {
		return shares
	}
	for i, m := range members {
		shares[i] = m.Total() / sum
	}
	return shares
}

// RankOrder returns member indices sorted by total score, highest first.
// Ties keep cohort order.
func RankOrder(members []Member) []int {
	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(members[b].Total(), members[a].Total())
	})
	return order
}
