package audit_test

import (
	"math"
	"testing"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func alloc(id string, amount float64) model.BonusAllocation {
	return model.BonusAllocation{EmployeeID: id, EmployeeName: "name-" + id, BonusAmount: amount}
}

func candidate(id string, rank int, recommended bool) model.PromotionCandidate {
	return model.PromotionCandidate{EmployeeID: id, EmployeeName: "name-" + id, Rank: rank, Recommended: recommended}
}

func TestCompareBonus(t *testing.T) {
	Convey("Given the engine recommends $0 but the manager gave $500", t, func() {
		entries := audit.CompareBonus(map[string]float64{"e1": 500}, []model.BonusAllocation{alloc("e1", 0)})

		Convey("Then the entry is flagged at maximum severity", func() {
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Variance, ShouldEqual, 100.0)
			So(entries[0].IsFlagged, ShouldBeTrue)
			So(entries[0].Reason, ShouldContainSubstring, "$0")
			So(entries[0].HumanValue, ShouldEqual, 500.0)
			So(entries[0].AIValue, ShouldEqual, 0.0)
		})
	})

	Convey("Given both the engine and the manager gave $0", t, func() {
		entries := audit.CompareBonus(map[string]float64{}, []model.BonusAllocation{alloc("e1", 0)})

		Convey("Then there is no variance and no flag", func() {
			So(entries[0].Variance, ShouldEqual, 0.0)
			So(entries[0].IsFlagged, ShouldBeFalse)
		})
	})

	Convey("Given the manager gave $1150 against an engine $1000", t, func() {
		entries := audit.CompareBonus(map[string]float64{"e1": 1150}, []model.BonusAllocation{alloc("e1", 1000)})

		Convey("Then variance is 15% and the entry is not flagged", func() {
			So(entries[0].Variance, ShouldEqual, 15.0)
			So(entries[0].IsFlagged, ShouldBeFalse)
			So(entries[0].Reason, ShouldContainSubstring, "15%")
		})
	})

	Convey("Given variance exactly at the threshold", t, func() {
		entries := audit.CompareBonus(map[string]float64{"e1": 800}, []model.BonusAllocation{alloc("e1", 1000)})

		Convey("Then it is not flagged because the rule is strictly greater", func() {
			So(entries[0].Variance, ShouldEqual, 20.0)
			So(entries[0].IsFlagged, ShouldBeFalse)
		})
	})

	Convey("Given variance just above the threshold", t, func() {
		entries := audit.CompareBonus(map[string]float64{"e1": 1200.04}, []model.BonusAllocation{alloc("e1", 1000)})

		Convey("Then it is flagged even though the stored variance rounds to 20", func() {
			So(entries[0].Variance, ShouldEqual, 20.0)
			So(entries[0].IsFlagged, ShouldBeTrue)
		})
	})

	Convey("Given an employee the manager left out", t, func() {
		entries := audit.CompareBonus(map[string]float64{}, []model.BonusAllocation{alloc("e1", 400)})

		Convey("Then the missing award counts as $0 and is fully divergent", func() {
			So(entries[0].HumanValue, ShouldEqual, 0.0)
			So(entries[0].Variance, ShouldEqual, 100.0)
			So(entries[0].IsFlagged, ShouldBeTrue)
			So(entries[0].Reason, ShouldContainSubstring, "100%")
		})
	})

	Convey("Given several employees", t, func() {
		human := map[string]float64{"a": 100, "b": 260, "c": 0, "d": 300}
		engine := []model.BonusAllocation{alloc("a", 100), alloc("b", 200), alloc("c", 0), alloc("d", 200)}
		entries := audit.CompareBonus(human, engine)

		Convey("Then entries are sorted by descending variance", func() {
			ids := make([]string, len(entries))
			for i, e := range entries {
				ids[i] = e.EmployeeID
			}
			So(ids, ShouldResemble, []string{"d", "b", "a", "c"})
			So(entries[0].Variance, ShouldEqual, 50.0)
			So(entries[1].Variance, ShouldEqual, 30.0)
		})
	})
}

func TestComparePromotion(t *testing.T) {
	Convey("Given the manager promoted one employee the engine ranked #3", t, func() {
		human := map[string]int{"a": 0, "b": 0, "c": 1}
		ranked := []model.PromotionCandidate{
			candidate("a", 1, true),
			candidate("b", 2, false),
			candidate("c", 3, false),
		}
		entries := audit.ComparePromotion(human, ranked)

		Convey("Then flagged entries come first", func() {
			So(len(entries), ShouldEqual, 3)
			So(entries[0].IsFlagged, ShouldBeTrue)
			So(entries[1].IsFlagged, ShouldBeTrue)
			So(entries[2].IsFlagged, ShouldBeFalse)
			So(entries[2].EmployeeID, ShouldEqual, "b")
		})

		Convey("And the unjustified promotion has severity 100 and cites rank #3", func() {
			var c model.AuditEntry
			for _, e := range entries {
				if e.EmployeeID == "c" {
					c = e
				}
			}
			So(c.Variance, ShouldEqual, 100.0)
			So(c.AIRank, ShouldEqual, 3)
			So(c.Reason, ShouldContainSubstring, "#3")
			So(c.HumanValue, ShouldEqual, 1.0)
			So(c.AIValue, ShouldEqual, 0.0)
		})

		Convey("And the missed recommendation has severity 50", func() {
			var a model.AuditEntry
			for _, e := range entries {
				if e.EmployeeID == "a" {
					a = e
				}
			}
			So(a.IsFlagged, ShouldBeTrue)
			So(a.Variance, ShouldEqual, 50.0)
			So(a.Reason, ShouldContainSubstring, "#1")
		})
	})

	Convey("Given decisions that match the ranking", t, func() {
		entries := audit.ComparePromotion(map[string]int{"a": 1, "b": 0},
			[]model.PromotionCandidate{candidate("a", 1, true), candidate("b", 2, false)})

		Convey("Then nothing is flagged", func() {
			for _, e := range entries {
				So(e.IsFlagged, ShouldBeFalse)
				So(e.Variance, ShouldEqual, 0.0)
			}
			So(audit.AgreementScore(entries), ShouldEqual, 100.0)
		})
	})

	Convey("Given nobody was promoted", t, func() {
		entries := audit.ComparePromotion(map[string]int{"a": 0}, []model.PromotionCandidate{candidate("a", 1, true)})

		Convey("Then the audit yields no entries", func() {
			So(entries, ShouldNotBeNil)
			So(len(entries), ShouldEqual, 0)
		})
	})
}

func TestAgreementScore(t *testing.T) {
	Convey("Given 10 entries with 2 flagged", t, func() {
		entries := make([]model.AuditEntry, 10)
		entries[3].IsFlagged = true
		entries[7].IsFlagged = true

		Convey("Then agreement is 80%", func() {
			So(audit.AgreementScore(entries), ShouldEqual, 80.0)
		})
	})

	Convey("Given no entries", t, func() {
		Convey("Then agreement is 0", func() {
			So(audit.AgreementScore(nil), ShouldEqual, 0.0)
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given human bonus amounts", t, func() {
		So(audit.ValidateBonusAmounts(map[string]float64{"a": 0, "b": 10}), ShouldBeNil)
		So(audit.ValidateBonusAmounts(map[string]float64{"a": -1}), ShouldEqual, audit.ErrInvalidAmount)
		So(audit.ValidateBonusAmounts(map[string]float64{"a": math.NaN()}), ShouldEqual, audit.ErrInvalidAmount)
	})

	Convey("Given human promotion decisions", t, func() {
		So(audit.ValidatePromotionDecisions(map[string]int{"a": 1, "b": 0}), ShouldBeNil)
		So(audit.ValidatePromotionDecisions(map[string]int{"a": 2}), ShouldEqual, audit.ErrInvalidDecision)
		So(audit.ValidatePromotionDecisions(map[string]int{"a": 0}), ShouldEqual, audit.ErrNoPromotions)
		So(audit.ValidatePromotionDecisions(nil), ShouldEqual, audit.ErrNoPromotions)
		So(audit.ImpliedSlots(map[string]int{"a": 1, "b": 1, "c": 0}), ShouldEqual, 2)
	})
}

func TestAuditEntryFlag(t *testing.T) {
	Convey("Given an unflagged entry", t, func() {
		e := model.AuditEntry{ID: "x"}

		Convey("When flagging it twice", func() {
			first := e.Flag()
			second := e.Flag()

			Convey("Then the first call changes it and the second is a no-op", func() {
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(e.IsFlagged, ShouldBeTrue)
			})
		})
	})
}

func TestScopeDecisions(t *testing.T) {
	Convey("Given decisions that mention employees outside the cohort", t, func() {
		decisions := map[string]int{"e1": 1, "e2": 0, "e3": 1}
		scoped := audit.ScopeDecisions(decisions, []string{"e1", "e2", "e4"})

		Convey("Then only cohort members are kept", func() {
			So(scoped, ShouldResemble, map[string]int{"e1": 1, "e2": 0})
			So(audit.ImpliedSlots(scoped), ShouldEqual, 1)
		})
	})
}
