package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCohortBuckets([]float64{1, 2}),
			)

			Convey("Then it should be created with the options applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
				So(manager.cohortBuckets, ShouldResemble, []float64{1, 2})
			})

			Convey("And empty options keep the defaults", func() {
				m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithNamespace(""), WithHistogramBuckets(nil))
				So(m.namespace, ShouldEqual, "glassbox")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording computations", func() {
			before := testutil.ToFloat64(globalManager.computations.WithLabelValues("bonus_allocation"))
			RecordComputation("bonus_allocation", 12.5)
			RecordCohortSize("bonus_allocation", 20)
			RecordBonusPool(1000)

			Convey("Then the counter moves", func() {
				after := testutil.ToFloat64(globalManager.computations.WithLabelValues("bonus_allocation"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording an audit", func() {
			before := testutil.ToFloat64(globalManager.auditFlagged.WithLabelValues("BONUS"))
			RecordAudit("BONUS", 10, 2, 80)

			Convey("Then flagged and agreement reflect it", func() {
				So(testutil.ToFloat64(globalManager.auditFlagged.WithLabelValues("BONUS"))-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.auditAgreement.WithLabelValues("BONUS")), ShouldEqual, 80)
			})
		})

		Convey("When recording flag transitions", func() {
			before := testutil.ToFloat64(globalManager.flagTransitions.WithLabelValues(FlagResultNoop))
			RecordFlagTransition(FlagResultSet)
			RecordFlagTransition(FlagResultNoop)
			RecordFlagTransition(FlagResultNoop)

			Convey("Then noop is counted separately", func() {
				So(testutil.ToFloat64(globalManager.flagTransitions.WithLabelValues(FlagResultNoop))-before, ShouldEqual, 2)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordHTTPRequest("/audits", "GET", "200")
					RecordHTTPRequestDuration("/audits", "GET", "200", 5.0)
					RecordErrorByComponent("http", "validation")
					RecordErrorByEndpoint("/audits/bonus", "POST", "validation")
					RecordComputationError("promotion_audit")
					RecordIdempotentReplay()
					RecordStoreQueryLatency("fetch_employees", 1.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When sampling system metrics", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			CollectSystem(ctx, time.Hour)

			Convey("Then the goroutine gauge is populated", func() {
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordComputation("score_employee", 1)

		Convey("Then it gathers the glassbox metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "glassbox_engine_computations_total")
		})
	})
}
