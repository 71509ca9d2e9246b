package tracing_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vishalyl/GlassBoxAI-sub000/pkg/tracing"
)

func TestInit(t *testing.T) {
	Convey("Given the none exporter", t, func() {
		shutdown, err := tracing.Init(context.Background(), tracing.ExporterNone, "glassbox-test")

		Convey("Then a no-op shutdown is returned", func() {
			So(err, ShouldBeNil)
			So(shutdown(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given an unknown exporter", t, func() {
		_, err := tracing.Init(context.Background(), "jaeger", "glassbox-test")

		Convey("Then it is rejected", func() {
			So(errors.Is(err, tracing.ErrUnknownExporter), ShouldBeTrue)
		})
	})

	Convey("Given an in-memory exporter", t, func() {
		exp := tracetest.NewInMemoryExporter()
		shutdown := tracing.InitWithExporter(context.Background(), exp, "glassbox-test")

		Convey("When a span ends and the provider shuts down", func() {
			_, span := tracing.Tracer("test").Start(context.Background(), "score_employee")
			span.End()
			So(shutdown(context.Background()), ShouldBeNil)

			Convey("Then the span was exported", func() {
				spans := exp.GetSpans()
				So(len(spans), ShouldEqual, 1)
				So(spans[0].Name, ShouldEqual, "score_employee")
			})
		})
	})
}
