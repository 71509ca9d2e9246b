// Package audit compares human bonus and promotion decisions with the engine's
// own recommendation and flags the divergent ones for review.
package audit

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// Policy thresholds.
const (
	// VarianceThreshold is the bonus variance, in percent, above which an entry is
	// flagged. The test uses the unrounded variance; only the stored value is rounded.
	VarianceThreshold = 20.0
	// SeverityUnjustified is recorded when a human rewards someone the engine would not.
	SeverityUnjustified = 100.0
	// SeverityMissed is recorded when a human passes over someone the engine recommends.
	SeverityMissed = 50.0

	percent = 100.0
	// varianceEpsilon absorbs float error such as 200/1000*100 = 20.000000000000004.
	varianceEpsilon = 1e-9
)

// Reason used when the engine finds no justification for a human-granted bonus.
const reasonZeroRecommendation = "AI recommended $0, Manager gave bonus"

// ValidateBonusAmounts rejects negative or non-finite human amounts.
func ValidateBonusAmounts(amounts map[string]float64) error {
	for _, v := range amounts {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// ValidatePromotionDecisions rejects values other than 0/1 and decisions
// that promote nobody, since no slot count can be inferred from them.
func ValidatePromotionDecisions(decisions map[string]int) error {
	for _, v := range decisions {
		if v != 0 && v != 1 {
			return ErrInvalidDecision
		}
	}
	if ImpliedSlots(decisions) == 0 {
		return ErrNoPromotions
	}
	return nil
}

// ImpliedSlots counts the employees a human marked as promoted.
func ImpliedSlots(decisions map[string]int) int {
	n := 0
	for _, v := range decisions {
		if v == 1 {
			n++
		}
	}
	return n
}

// ScopeDecisions keeps the decisions for employeeIDs only. Decisions about
// anyone else cannot be compared and must not count toward the slot total.
func ScopeDecisions(decisions map[string]int, employeeIDs []string) map[string]int {
	out := make(map[string]int, len(employeeIDs))
	for _, id := range employeeIDs {
		if v, ok := decisions[id]; ok {
			out[id] = v
		}
	}
	return out
}

// CompareBonus builds one entry per engine allocation. Employees missing from
// human count as a $0 award. Entries come back highest variance first.
func CompareBonus(human map[string]float64, engine []model.BonusAllocation) []model.AuditEntry {
	entries := make([]model.AuditEntry, 0, len(engine))
	for _, a := range engine {
		h := human[a.EmployeeID]
		e := model.AuditEntry{
			EmployeeID:   a.EmployeeID,
			EmployeeName: a.EmployeeName,
			HumanValue:   h,
			AIValue:      a.BonusAmount,
		}

		switch {
		case a.BonusAmount == 0 && h == 0:
			e.Reason = "AI and Manager both gave $0"
		case a.BonusAmount == 0:
			e.Variance = SeverityUnjustified
			e.IsFlagged = true
			e.Reason = reasonZeroRecommendation
		default:
			raw := math.Abs(h-a.BonusAmount) / a.BonusAmount * percent
			e.Variance = round2(raw)
			if raw > VarianceThreshold+varianceEpsilon {
				e.IsFlagged = true
				e.Reason = fmt.Sprintf("Manager amount differs from AI recommendation by %.0f%% (threshold %.0f%%)",
					e.Variance, VarianceThreshold)
			} else {
				e.Reason = fmt.Sprintf("Within %.0f%% of AI recommendation (variance %.0f%%)",
					VarianceThreshold, e.Variance)
			}
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b model.AuditEntry) int {
		return cmp.Compare(b.Variance, a.Variance)
	})
	return entries
}

// ComparePromotion builds one entry per ranked candidate. ranked must come from
// a ranking run with ImpliedSlots(human) slots. Flagged entries come first.
func ComparePromotion(human map[string]int, ranked []model.PromotionCandidate) []model.AuditEntry {
	slots := ImpliedSlots(human)
	if slots == 0 {
		return []model.AuditEntry{}
	}

	entries := make([]model.AuditEntry, 0, len(ranked))
	for _, c := range ranked {
		promoted := human[c.EmployeeID] == 1
		e := model.AuditEntry{
			EmployeeID:   c.EmployeeID,
			EmployeeName: c.EmployeeName,
			HumanValue:   boolValue(promoted),
			AIValue:      boolValue(c.Recommended),
			AIRank:       c.Rank,
		}

		switch {
		case promoted && !c.Recommended:
			e.Variance = SeverityUnjustified
			e.IsFlagged = true
			e.Reason = fmt.Sprintf("Manager promoted, but AI ranked #%d (outside top %d)", c.Rank, slots)
		case !promoted && c.Recommended:
			e.Variance = SeverityMissed
			e.IsFlagged = true
			e.Reason = fmt.Sprintf("Manager did not promote, but AI ranked #%d (within top %d)", c.Rank, slots)
		default:
			e.Reason = fmt.Sprintf("Decision matches AI recommendation (rank #%d)", c.Rank)
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b model.AuditEntry) int {
		switch {
		case a.IsFlagged == b.IsFlagged:
			return 0
		case a.IsFlagged:
			return -1
		default:
			return 1
		}
	})
	return entries
}

// AgreementScore is the percentage of entries that are not flagged; 0 for no entries.
func AgreementScore(entries []model.AuditEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	flagged := 0
	for _, e := range entries {
		if e.IsFlagged {
			flagged++
		}
	}
	return round2(float64(len(entries)-flagged) / float64(len(entries)) * percent)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*percent) / percent
}
