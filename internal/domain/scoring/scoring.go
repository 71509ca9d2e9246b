// Package scoring computes the per-project performance and contribution scores
// that every allocation, ranking and audit is built on.
//
// The weighting constants are fixed: 40% manager, 30% peer, 30% KPI, scaled
// from the 0-5 rating range onto 0-10.
package scoring

import (
	"cmp"
	"slices"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

// Scoring constants.
const (
	managerWeight = 0.4
	peerWeight    = 0.3
	kpiWeight     = 0.3
	ratingScale   = 2.0 // maps a 0-5 weighted average onto 0-10

	// NeutralRating stands in for a missing manager or peer rating.
	NeutralRating = 3.0

	maxPerformance = 10.0
	percent        = 100.0
)

// Input is everything needed to score one employee.
type Input struct {
	Employee model.Employee
	Projects []model.Project
	Tasks    []model.Task
	Ratings  model.RatingSet
}

// Result is an employee's total contribution score with its per-project breakdown.
type Result struct {
	EmployeeID string                      `json:"employee_id"`
	TotalScore float64                     `json:"total_score"`
	Breakdown  []model.ProjectContribution `json:"breakdown"`
}

// Score computes the contribution score for a single employee.
func Score(in Input) Result {
	return NewSnapshot(in.Projects, in.Tasks, in.Ratings).Score(in.Employee)
}

// PerformanceScore combines the three rating averages into a 0-10 score.
func PerformanceScore(managerAvg, peerAvg, kpiAvg float64) float64 {
	return (managerAvg*managerWeight + peerAvg*peerWeight + kpiAvg*kpiWeight) * ratingScale
}

type ratingKey struct {
	employeeID string
	projectID  string
}

// Snapshot is an indexed, read-only view of projects, tasks and ratings.
// It is safe for concurrent use and is meant to be built once per cohort.
type Snapshot struct {
	projects    []model.Project
	totalWeight int
	tasks       map[string][]model.Task

	manager map[ratingKey][]float64
	peer    map[ratingKey][]float64
	kpi     map[ratingKey][]float64
}

// NewSnapshot indexes the input collections. Input order does not affect any
// score computed from the snapshot.
func NewSnapshot(projects []model.Project, tasks []model.Task, ratings model.RatingSet) *Snapshot {
	s := &Snapshot{
		tasks:   make(map[string][]model.Task),
		manager: make(map[ratingKey][]float64),
		peer:    make(map[ratingKey][]float64),
		kpi:     make(map[ratingKey][]float64),
	}

	sorted := slices.Clone(projects)
	slices.SortStableFunc(sorted, func(a, b model.Project) int { return cmp.Compare(a.ID, b.ID) })
	sorted = slices.CompactFunc(sorted, func(a, b model.Project) bool { return a.ID == b.ID })
	s.projects = sorted
	for _, p := range s.projects {
		s.totalWeight += p.Weightage
	}

	seenTasks := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seenTasks[t.ID]; dup && t.ID != "" {
			continue
		}
		seenTasks[t.ID] = struct{}{}
		s.tasks[t.ProjectID] = append(s.tasks[t.ProjectID], t)
	}

	for _, r := range ratings.Manager {
		k := ratingKey{r.EmployeeID, r.ProjectID}
		s.manager[k] = append(s.manager[k], r.Average())
	}
	for _, r := range ratings.Peer {
		k := ratingKey{r.EmployeeID, r.ProjectID}
		s.peer[k] = append(s.peer[k], r.Average())
	}
	for _, r := range ratings.KPI {
		k := ratingKey{r.EmployeeID, r.ProjectID}
		s.kpi[k] = append(s.kpi[k], r.Value)
	}
	// Sorted values keep float summation independent of input order.
	for _, m := range []map[ratingKey][]float64{s.manager, s.peer, s.kpi} {
		for _, v := range m {
			slices.Sort(v)
		}
	}
	return s
}

// TotalProjectWeight returns the weight every project's share is normalized against.
func (s *Snapshot) TotalProjectWeight() int {
	return s.totalWeight
}

// Score computes the contribution score of e against the snapshot.
func (s *Snapshot) Score(e model.Employee) Result {
	res := Result{EmployeeID: e.ID, Breakdown: []model.ProjectContribution{}}
	if s.totalWeight <= 0 {
		return res
	}

	for _, p := range s.projects {
		assigned, total := 0, 0
		for _, t := range s.tasks[p.ID] {
			w := t.EffectiveWeight()
			total += w
			if t.AssignedTo(e.ID) {
				assigned += w
			}
		}
		if assigned == 0 || total == 0 {
			continue
		}

		k := ratingKey{e.ID, p.ID}
		perf := PerformanceScore(
			meanOr(s.manager[k], NeutralRating),
			meanOr(s.peer[k], NeutralRating),
			meanOr(s.kpi[k], 0),
		)
		taskRatio := float64(assigned) / float64(total)
		weight := float64(p.Weightage) / float64(s.totalWeight) * percent
		contribution := weight * taskRatio * (perf / maxPerformance)

		res.TotalScore += contribution
		res.Breakdown = append(res.Breakdown, model.ProjectContribution{
			ProjectID:         p.ID,
			ProjectName:       p.Name,
			PerformanceScore:  perf,
			ContributionScore: contribution,
			TaskRatio:         taskRatio,
			NormalizedWeight:  weight,
		})
	}
	return res
}

func meanOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
