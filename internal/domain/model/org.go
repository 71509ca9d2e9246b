// Package model contains domain models passed between layers.
package model

import "slices"

// Employee is a member of the organization that can be scored.
type Employee struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Role         string `json:"role" yaml:"role"`
	DepartmentID string `json:"department_id" yaml:"department_id"`
}

// Project groups tasks and carries a relative importance.
type Project struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Weightage    int    `json:"weightage" yaml:"weightage"` // relative importance, 1-10 typical
	DepartmentID string `json:"department_id" yaml:"department_id"`
}

// Task belongs to exactly one project and may have several assignees.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
	Weightage int    `json:"weightage" yaml:"weightage"` // 0 means unset

	AssigneeIDs []string `json:"assignee_ids,omitempty" yaml:"assignee_ids"`
	// LegacyAssigneeID is the single-assignee column older records use.
	LegacyAssigneeID string `json:"legacy_assignee_id,omitempty" yaml:"legacy_assignee_id"`
}

// EffectiveWeight returns the task weightage, defaulting to 1 when unset.
func (t Task) EffectiveWeight() int {
	if t.Weightage <= 0 {
		return 1
	}
	return t.Weightage
}

// AssignedTo reports whether employeeID is among the task's assignees.
func (t Task) AssignedTo(employeeID string) bool {
	if employeeID == "" {
		return false
	}
	if t.LegacyAssigneeID == employeeID {
		return true
	}
	return slices.Contains(t.AssigneeIDs, employeeID)
}

// CohortFilter narrows the set of employees an operation runs over.
// An empty filter selects every employee.
type CohortFilter struct {
	DepartmentIDs []string `json:"department_ids,omitempty"`
	EmployeeIDs   []string `json:"employee_ids,omitempty"`
}

// Empty reports whether the filter selects everyone.
func (f CohortFilter) Empty() bool {
	return len(f.DepartmentIDs) == 0 && len(f.EmployeeIDs) == 0
}

// Match reports whether e passes the filter. Both lists must match when both are set.
func (f CohortFilter) Match(e Employee) bool {
	if len(f.DepartmentIDs) > 0 && !slices.Contains(f.DepartmentIDs, e.DepartmentID) {
		return false
	}
	if len(f.EmployeeIDs) > 0 && !slices.Contains(f.EmployeeIDs, e.ID) {
		return false
	}
	return true
}

// DepartmentScope returns the single department the filter is scoped to, or "".
func (f CohortFilter) DepartmentScope() string {
	if len(f.DepartmentIDs) == 1 {
		return f.DepartmentIDs[0]
	}
	return ""
}
