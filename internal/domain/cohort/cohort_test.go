package cohort_test

import (
	"testing"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/cohort"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func members(totals ...float64) []cohort.Member {
	out := make([]cohort.Member, len(totals))
	for i, t := range totals {
		id := string(rune('a' + i))
		out[i] = cohort.Member{
			Employee: model.Employee{ID: id},
			Result:   scoring.Result{EmployeeID: id, TotalScore: t},
		}
	}
	return out
}

func TestShares(t *testing.T) {
	Convey("Given a cohort with scores 30 and 10", t, func() {
		shares := cohort.Shares(members(30, 10))

		Convey("Then shares are proportional to the sum", func() {
			So(shares[0], ShouldAlmostEqual, 0.75, 1e-12)
			So(shares[1], ShouldAlmostEqual, 0.25, 1e-12)
		})
	})

	Convey("Given a cohort summing to zero", t, func() {
		shares := cohort.Shares(members(0, 0, 0))

		Convey("Then every share is zero", func() {
			So(shares, ShouldResemble, []float64{0, 0, 0})
		})
	})

	Convey("Given an empty cohort", t, func() {
		Convey("Then there are no shares", func() {
			So(len(cohort.Shares(nil)), ShouldEqual, 0)
		})
	})
}

func TestRankOrder(t *testing.T) {
	Convey("Given scores with ties", t, func() {
		ms := members(5, 9, 5, 1, 9)

		Convey("Then order is descending and ties keep cohort order", func() {
			So(cohort.RankOrder(ms), ShouldResemble, []int{1, 4, 0, 2, 3})
		})

		Convey("Then repeated calls agree", func() {
			So(cohort.RankOrder(ms), ShouldResemble, cohort.RankOrder(ms))
		})
	})
}
