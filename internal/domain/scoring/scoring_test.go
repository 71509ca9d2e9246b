package scoring_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	scoring "github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func fixture() scoring.Input {
	return scoring.Input{
		Employee: model.Employee{ID: "e1", Name: "Ada", DepartmentID: "eng"},
		Projects: []model.Project{
			{ID: "p1", Name: "Payments", Weightage: 3, DepartmentID: "eng"},
			{ID: "p2", Name: "Search", Weightage: 1, DepartmentID: "eng"},
		},
		Tasks: []model.Task{
			{ID: "t1", ProjectID: "p1", Weightage: 2, AssigneeIDs: []string{"e1", "e2"}},
			{ID: "t2", ProjectID: "p1", LegacyAssigneeID: "e2"},
			{ID: "t3", ProjectID: "p2", Weightage: 4, AssigneeIDs: []string{"e2"}},
		},
		Ratings: model.RatingSet{
			Manager: []model.Rating{{EmployeeID: "e1", ProjectID: "p1", Volume: 4, Quality: 4, Speed: 4}},
			Peer:    []model.Rating{{EmployeeID: "e1", ProjectID: "p1", Volume: 3, Quality: 3, Speed: 3}},
			KPI: []model.KPIRecord{
				{EmployeeID: "e1", ProjectID: "p1", Metric: "Quality", Value: 5},
				{EmployeeID: "e1", ProjectID: "p1", Metric: "Speed", Value: 3},
			},
		},
	}
}

func TestPerformanceScore(t *testing.T) {
	Convey("Given rating averages on a 0-5 scale", t, func() {
		Convey("Then perfect ratings map to 10", func() {
			So(scoring.PerformanceScore(5, 5, 5), ShouldAlmostEqual, 10.0, tolerance)
		})

		Convey("Then the 40/30/30 weighting is applied before scaling", func() {
			So(scoring.PerformanceScore(4, 3, 4), ShouldAlmostEqual, 7.4, tolerance)
		})

		Convey("Then all-zero ratings map to 0", func() {
			So(scoring.PerformanceScore(0, 0, 0), ShouldEqual, 0.0)
		})
	})
}

func TestScore(t *testing.T) {
	Convey("Given an employee with tasks in one of two projects", t, func() {
		in := fixture()

		Convey("When scoring the employee", func() {
			res := scoring.Score(in)

			Convey("Then only projects with assigned tasks appear in the breakdown", func() {
				So(res.EmployeeID, ShouldEqual, "e1")
				So(len(res.Breakdown), ShouldEqual, 1)
				So(res.Breakdown[0].ProjectID, ShouldEqual, "p1")
				So(res.Breakdown[0].ProjectName, ShouldEqual, "Payments")
			})

			Convey("And the breakdown carries each intermediate value", func() {
				b := res.Breakdown[0]
				So(b.PerformanceScore, ShouldAlmostEqual, 7.4, tolerance)
				// t1 weight 2 of 2+1 (t2 defaults to 1)
				So(b.TaskRatio, ShouldAlmostEqual, 2.0/3.0, tolerance)
				So(b.NormalizedWeight, ShouldAlmostEqual, 75.0, tolerance)
				So(b.ContributionScore, ShouldAlmostEqual, 75.0*(2.0/3.0)*0.74, tolerance)
			})

			Convey("And the total is the sum of contributions", func() {
				So(res.TotalScore, ShouldAlmostEqual, res.Breakdown[0].ContributionScore, tolerance)
			})
		})
	})

	Convey("Given an employee with tasks but no ratings", t, func() {
		in := fixture()
		in.Ratings = model.RatingSet{}

		Convey("Then manager and peer default to a neutral 3 and KPI to 0", func() {
			res := scoring.Score(in)
			So(len(res.Breakdown), ShouldEqual, 1)
			So(res.Breakdown[0].PerformanceScore, ShouldAlmostEqual, (3*0.4+3*0.3)*2, tolerance)
		})
	})

	Convey("Given a legacy single-assignee task", t, func() {
		in := fixture()
		in.Employee = model.Employee{ID: "e2"}

		Convey("Then the legacy assignee is credited like a listed assignee", func() {
			res := scoring.Score(in)
			So(len(res.Breakdown), ShouldEqual, 2)
			So(res.Breakdown[0].TaskRatio, ShouldAlmostEqual, 1.0, tolerance)
			So(res.Breakdown[1].TaskRatio, ShouldAlmostEqual, 1.0, tolerance)
		})
	})

	Convey("Given an employee with no tasks anywhere", t, func() {
		in := fixture()
		in.Employee = model.Employee{ID: "e9"}

		Convey("Then the score is zero with an empty breakdown", func() {
			res := scoring.Score(in)
			So(res.TotalScore, ShouldEqual, 0.0)
			So(res.Breakdown, ShouldNotBeNil)
			So(len(res.Breakdown), ShouldEqual, 0)
		})
	})

	Convey("Given projects whose weights sum to zero", t, func() {
		in := fixture()
		for i := range in.Projects {
			in.Projects[i].Weightage = 0
		}

		Convey("Then every score is zero", func() {
			res := scoring.Score(in)
			So(res.TotalScore, ShouldEqual, 0.0)
			So(len(res.Breakdown), ShouldEqual, 0)
		})
	})

	Convey("Given an empty project set", t, func() {
		in := fixture()
		in.Projects = nil

		Convey("Then scoring does not fail and returns zero", func() {
			So(scoring.Score(in).TotalScore, ShouldEqual, 0.0)
		})
	})

	Convey("Given a project from another department", t, func() {
		in := fixture()
		in.Projects = append(in.Projects, model.Project{ID: "p3", Name: "HR Portal", Weightage: 4, DepartmentID: "hr"})

		Convey("Then it still counts toward weight normalization (global normalization)", func() {
			res := scoring.Score(in)
			So(res.Breakdown[0].NormalizedWeight, ShouldAlmostEqual, 3.0/8.0*100, tolerance)
		})
	})
}

func TestScore_OrderInvariance(t *testing.T) {
	Convey("Given the same inputs in shuffled order", t, func() {
		in := fixture()
		in.Employee = model.Employee{ID: "e2"}
		in.Ratings.KPI = append(in.Ratings.KPI,
			model.KPIRecord{EmployeeID: "e2", ProjectID: "p1", Metric: "Volume", Value: 0.1},
			model.KPIRecord{EmployeeID: "e2", ProjectID: "p1", Metric: "Quality", Value: 0.2},
			model.KPIRecord{EmployeeID: "e2", ProjectID: "p1", Metric: "Speed", Value: 0.3},
		)
		want := scoring.Score(in)

		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic shuffle
		for i := 0; i < 20; i++ {
			shuffled := scoring.Input{
				Employee: in.Employee,
				Projects: slices.Clone(in.Projects),
				Tasks:    slices.Clone(in.Tasks),
				Ratings: model.RatingSet{
					Manager: slices.Clone(in.Ratings.Manager),
					Peer:    slices.Clone(in.Ratings.Peer),
					KPI:     slices.Clone(in.Ratings.KPI),
				},
			}
			rng.Shuffle(len(shuffled.Projects), func(a, b int) {
				shuffled.Projects[a], shuffled.Projects[b] = shuffled.Projects[b], shuffled.Projects[a]
			})
			rng.Shuffle(len(shuffled.Tasks), func(a, b int) {
				shuffled.Tasks[a], shuffled.Tasks[b] = shuffled.Tasks[b], shuffled.Tasks[a]
			})
			rng.Shuffle(len(shuffled.Ratings.KPI), func(a, b int) {
				shuffled.Ratings.KPI[a], shuffled.Ratings.KPI[b] = shuffled.Ratings.KPI[b], shuffled.Ratings.KPI[a]
			})

			So(scoring.Score(shuffled), ShouldResemble, want)
		}
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a snapshot built once", t, func() {
		in := fixture()
		snap := scoring.NewSnapshot(in.Projects, in.Tasks, in.Ratings)

		Convey("Then it reports the global project weight", func() {
			So(snap.TotalProjectWeight(), ShouldEqual, 4)
		})

		Convey("Then scoring through it matches the one-shot Score", func() {
			So(snap.Score(in.Employee), ShouldResemble, scoring.Score(in))
		})

		Convey("Then repeated scoring is deterministic", func() {
			So(snap.Score(in.Employee), ShouldResemble, snap.Score(in.Employee))
		})
	})
}
