package repository

import (
	"time"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

type employeeRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string
	Role         string
	DepartmentID string `gorm:"index;size:64"`
}

func (employeeRow) TableName() string { return "employees" }

type projectRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string
	Weightage    int
	DepartmentID string `gorm:"index;size:64"`
}

func (projectRow) TableName() string { return "projects" }

type taskRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProjectID string `gorm:"index;size:64"`
	Weightage int
	// Single-assignee column kept for older data.
	AssigneeID string `gorm:"size:64"`
}

func (taskRow) TableName() string { return "tasks" }

type taskAssigneeRow struct {
	TaskID     string `gorm:"primaryKey;size:64"`
	EmployeeID string `gorm:"primaryKey;size:64"`
}

func (taskAssigneeRow) TableName() string { return "task_assignees" }

type ratingColumns struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	EmployeeID string `gorm:"index:idx_rating_pair;size:64"`
	ProjectID  string `gorm:"index:idx_rating_pair;size:64"`
	Volume     float64
	Quality    float64
	Speed      float64
}

type managerRatingRow struct{ ratingColumns }

func (managerRatingRow) TableName() string { return "manager_ratings" }

type peerRatingRow struct{ ratingColumns }

func (peerRatingRow) TableName() string { return "peer_ratings" }

type kpiRow struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	EmployeeID string `gorm:"index:idx_kpi_pair;size:64"`
	ProjectID  string `gorm:"index:idx_kpi_pair;size:64"`
	Metric     string `gorm:"size:64"`
	Value      float64
}

func (kpiRow) TableName() string { return "kpi_records" }

type auditRecordRow struct {
	ID                    string `gorm:"primaryKey;size:36"`
	Name                  string
	DecisionType          string `gorm:"size:16"`
	DepartmentID          string `gorm:"size:64"`
	TotalEmployeesAudited int
	AgreementScore        float64
	CreatedAt             time.Time `gorm:"index"`
}

func (auditRecordRow) TableName() string { return "audit_records" }

type auditEntryRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	RecordID     string `gorm:"index;size:36"`
	Position     int
	EmployeeID   string `gorm:"size:64"`
	EmployeeName string
	HumanValue   float64
	AIValue      float64 `gorm:"column:ai_value"`
	AIRank       int     `gorm:"column:ai_rank"`
	Variance     float64
	IsFlagged    bool `gorm:"index"`
	Reason       string
}

func (auditEntryRow) TableName() string { return "audit_entries" }

func allTables() []any {
	return []any{
		&employeeRow{}, &projectRow{}, &taskRow{}, &taskAssigneeRow{},
		&managerRatingRow{}, &peerRatingRow{}, &kpiRow{},
		&auditRecordRow{}, &auditEntryRow{},
	}
}

func (r employeeRow) toModel() model.Employee {
	return model.Employee{ID: r.ID, Name: r.Name, Role: r.Role, DepartmentID: r.DepartmentID}
}

func (r projectRow) toModel() model.Project {
	return model.Project{ID: r.ID, Name: r.Name, Weightage: r.Weightage, DepartmentID: r.DepartmentID}
}

func (r ratingColumns) toModel() model.Rating {
	return model.Rating{EmployeeID: r.EmployeeID, ProjectID: r.ProjectID, Volume: r.Volume, Quality: r.Quality, Speed: r.Speed}
}

func ratingColumnsFrom(r model.Rating) ratingColumns {
	return ratingColumns{EmployeeID: r.EmployeeID, ProjectID: r.ProjectID, Volume: r.Volume, Quality: r.Quality, Speed: r.Speed}
}

func recordRowFrom(rec model.AuditRecord) auditRecordRow {
	return auditRecordRow{
		ID:                    rec.ID,
		Name:                  rec.Name,
		DecisionType:          string(rec.DecisionType),
		DepartmentID:          rec.DepartmentID,
		TotalEmployeesAudited: rec.TotalEmployeesAudited,
		AgreementScore:        rec.AgreementScore,
		CreatedAt:             rec.CreatedAt.UTC(),
	}
}

func (r auditRecordRow) toModel() model.AuditRecord {
	return model.AuditRecord{
		ID:                    r.ID,
		Name:                  r.Name,
		DecisionType:          model.DecisionType(r.DecisionType),
		DepartmentID:          r.DepartmentID,
		TotalEmployeesAudited: r.TotalEmployeesAudited,
		AgreementScore:        r.AgreementScore,
		CreatedAt:             r.CreatedAt.UTC(),
	}
}

func entryRowFrom(recordID string, pos int, e model.AuditEntry) auditEntryRow {
	return auditEntryRow{
		ID:           e.ID,
		RecordID:     recordID,
		Position:     pos,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		HumanValue:   e.HumanValue,
		AIValue:      e.AIValue,
		AIRank:       e.AIRank,
		Variance:     e.Variance,
		IsFlagged:    e.IsFlagged,
		Reason:       e.Reason,
	}
}

func (r auditEntryRow) toModel() model.AuditEntry {
	return model.AuditEntry{
		ID:           r.ID,
		RecordID:     r.RecordID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		HumanValue:   r.HumanValue,
		AIValue:      r.AIValue,
		AIRank:       r.AIRank,
		Variance:     r.Variance,
		IsFlagged:    r.IsFlagged,
		Reason:       r.Reason,
	}
}
