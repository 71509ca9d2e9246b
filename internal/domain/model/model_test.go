package model_test

import (
	"testing"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTask(t *testing.T) {
	Convey("Given a task without weightage", t, func() {
		task := model.Task{ID: "t1", ProjectID: "p1"}

		Convey("Then it weighs 1", func() {
			So(task.EffectiveWeight(), ShouldEqual, 1)
		})
	})

	Convey("Given a task with weightage 4", t, func() {
		task := model.Task{ID: "t1", Weightage: 4}
		So(task.EffectiveWeight(), ShouldEqual, 4)
	})

	Convey("Given a task with both assignee forms", t, func() {
		task := model.Task{AssigneeIDs: []string{"e1", "e2"}, LegacyAssigneeID: "e3"}

		Convey("Then either form counts as assigned", func() {
			So(task.AssignedTo("e1"), ShouldBeTrue)
			So(task.AssignedTo("e3"), ShouldBeTrue)
			So(task.AssignedTo("e4"), ShouldBeFalse)
			So(task.AssignedTo(""), ShouldBeFalse)
		})
	})
}

func TestCohortFilter(t *testing.T) {
	eng := model.Employee{ID: "e1", DepartmentID: "eng"}
	ops := model.Employee{ID: "e2", DepartmentID: "ops"}

	Convey("Given an empty filter", t, func() {
		f := model.CohortFilter{}
		So(f.Empty(), ShouldBeTrue)
		So(f.Match(eng), ShouldBeTrue)
		So(f.Match(ops), ShouldBeTrue)
		So(f.DepartmentScope(), ShouldEqual, "")
	})

	Convey("Given a single-department filter", t, func() {
		f := model.CohortFilter{DepartmentIDs: []string{"eng"}}
		So(f.Match(eng), ShouldBeTrue)
		So(f.Match(ops), ShouldBeFalse)
		So(f.DepartmentScope(), ShouldEqual, "eng")
	})

	Convey("Given department and employee lists", t, func() {
		f := model.CohortFilter{DepartmentIDs: []string{"eng", "ops"}, EmployeeIDs: []string{"e2"}}

		Convey("Then both lists must match", func() {
			So(f.Match(eng), ShouldBeFalse)
			So(f.Match(ops), ShouldBeTrue)
			So(f.DepartmentScope(), ShouldEqual, "")
		})
	})
}

func TestAuditRecord(t *testing.T) {
	Convey("Given a record with two flagged entries", t, func() {
		r := model.AuditRecord{Entries: []model.AuditEntry{{IsFlagged: true}, {}, {IsFlagged: true}}}
		So(r.FlaggedCount(), ShouldEqual, 2)
	})

	Convey("Given decision types", t, func() {
		So(model.DecisionBonus.Valid(), ShouldBeTrue)
		So(model.DecisionPromotion.Valid(), ShouldBeTrue)
		So(model.DecisionType("RAISE").Valid(), ShouldBeFalse)
	})
}
