package model

// Rating is a manager or peer assessment of one employee on one project.
// Sub-scores are on a 0-5 scale.
type Rating struct {
	EmployeeID string  `json:"employee_id" yaml:"employee_id"`
	ProjectID  string  `json:"project_id" yaml:"project_id"`
	Volume     float64 `json:"volume" yaml:"volume"`
	Quality    float64 `json:"quality" yaml:"quality"`
	Speed      float64 `json:"speed" yaml:"speed"`
}

// Average returns the mean of the three sub-scores.
func (r Rating) Average() float64 {
	return (r.Volume + r.Quality + r.Speed) / 3
}

// KPIRecord is one named metric value (0-5) for an employee on a project.
type KPIRecord struct {
	EmployeeID string  `json:"employee_id" yaml:"employee_id"`
	ProjectID  string  `json:"project_id" yaml:"project_id"`
	Metric     string  `json:"metric" yaml:"metric"` // Volume, Quality, Speed, Complexity...
	Value      float64 `json:"value" yaml:"value"`
}

// RatingSet bundles the three rating collections for a set of projects.
type RatingSet struct {
	Manager []Rating    `json:"manager"`
	Peer    []Rating    `json:"peer"`
	KPI     []KPIRecord `json:"kpi"`
}

// Dataset is a complete import unit of organizational input data.
type Dataset struct {
	Employees      []Employee  `yaml:"employees"`
	Projects       []Project   `yaml:"projects"`
	Tasks          []Task      `yaml:"tasks"`
	ManagerRatings []Rating    `yaml:"manager_ratings"`
	PeerRatings    []Rating    `yaml:"peer_ratings"`
	KPIs           []KPIRecord `yaml:"kpis"`
}
