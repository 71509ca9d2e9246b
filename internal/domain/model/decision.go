package model

import "time"

// ProjectContribution explains how one project fed into an employee's total score.
type ProjectContribution struct {
	ProjectID         string  `json:"project_id"`
	ProjectName       string  `json:"project_name"`
	PerformanceScore  float64 `json:"performance_score"`  // 0-10
	ContributionScore float64 `json:"contribution_score"` // share of the 0-100 project weight earned
	TaskRatio         float64 `json:"task_ratio"`
	NormalizedWeight  float64 `json:"normalized_weight"`
}

// BonusAllocation is one employee's slice of a bonus pool.
type BonusAllocation struct {
	EmployeeID             string                `json:"employee_id"`
	EmployeeName           string                `json:"employee_name"`
	TotalScore             float64               `json:"total_score"`
	ContributionPercentage float64               `json:"contribution_percentage"`
	BonusAmount            float64               `json:"bonus_amount"`
	Breakdown              []ProjectContribution `json:"breakdown"`
}

// PromotionCandidate is one employee's position in a promotion ranking.
type PromotionCandidate struct {
	EmployeeID   string                `json:"employee_id"`
	EmployeeName string                `json:"employee_name"`
	TotalScore   float64               `json:"total_score"`
	Rank         int                   `json:"rank"` // 1 = highest
	Recommended  bool                  `json:"recommended"`
	Breakdown    []ProjectContribution `json:"breakdown"`
}

// DecisionType names the kind of human decision an audit compares against.
type DecisionType string

// Supported decision types.
const (
	DecisionBonus     DecisionType = "BONUS"
	DecisionPromotion DecisionType = "PROMOTION"
)

// Valid reports whether d is a known decision type.
func (d DecisionType) Valid() bool {
	return d == DecisionBonus || d == DecisionPromotion
}

// AuditEntry compares one human decision with the engine's recommendation.
type AuditEntry struct {
	ID           string  `json:"id"`
	RecordID     string  `json:"record_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	HumanValue   float64 `json:"human_value"`
	AIValue      float64 `json:"ai_value"`
	AIRank       int     `json:"ai_rank,omitempty"` // promotion audits only
	Variance     float64 `json:"variance"`
	IsFlagged    bool    `json:"is_flagged"`
	Reason       string  `json:"reason"`
}

// Flag marks the entry for review. There is no way back: a flagged entry stays flagged.
// It reports whether the call changed the entry.
func (e *AuditEntry) Flag() bool {
	if e.IsFlagged {
		return false
	}
	e.IsFlagged = true
	return true
}

// AuditRecord is a named, timestamped snapshot of an audit run.
type AuditRecord struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	DecisionType          DecisionType `json:"decision_type"`
	DepartmentID          string       `json:"department_id,omitempty"`
	TotalEmployeesAudited int          `json:"total_employees_audited"`
	AgreementScore        float64      `json:"agreement_score"`
	CreatedAt             time.Time    `json:"created_at"`
	Entries               []AuditEntry `json:"entries"`
}

// FlaggedCount returns how many entries are currently flagged.
func (r AuditRecord) FlaggedCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.IsFlagged {
			n++
		}
	}
	return n
}
