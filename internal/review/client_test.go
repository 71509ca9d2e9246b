package review_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/http/api"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/review"
)

func dataset() model.Dataset {
	return model.Dataset{
		Employees: []model.Employee{
			{ID: "e1", Name: "Ada", DepartmentID: "eng"},
			{ID: "e2", Name: "Bo", DepartmentID: "eng"},
		},
		Projects: []model.Project{{ID: "p1", Name: "Search", Weightage: 5}},
		Tasks: []model.Task{
			{ID: "t1", ProjectID: "p1", AssigneeIDs: []string{"e1"}},
			{ID: "t2", ProjectID: "p1", AssigneeIDs: []string{"e2"}},
		},
	}
}

func TestClient(t *testing.T) {
	Convey("Given an engine served over HTTP with one audit", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		So(store.Import(ctx, dataset()), ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		rec, err := svc.AuditBonus(ctx, service.BonusAuditRequest{
			Pool:    1000,
			Amounts: map[string]float64{"e1": 500, "e2": 500},
		})
		So(err, ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client, err := review.NewClient(srv.URL + "/")
		So(err, ShouldBeNil)

		Convey("When a review session flags an entry", func() {
			s, err := review.Open(ctx, client, rec.ID)
			So(err, ShouldBeNil)
			target := rec.Entries[0].ID
			got, err := s.Flag(ctx, target)

			Convey("Then the server persisted the flag", func() {
				So(err, ShouldBeNil)
				So(got.IsFlagged, ShouldBeTrue)
				stored, err := svc.GetAuditRecord(ctx, rec.ID)
				So(err, ShouldBeNil)
				So(entry(stored, target).IsFlagged, ShouldBeTrue)
				So(entry(s.Record(), target).IsFlagged, ShouldBeTrue)
			})
		})

		Convey("When reading an unknown record", func() {
			_, err := client.GetAuditRecord(ctx, "missing")

			Convey("Then the error matches the not-found sentinel", func() {
				var apiErr *review.APIError
				So(errors.As(err, &apiErr), ShouldBeTrue)
				So(apiErr.Status, ShouldEqual, http.StatusNotFound)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a server that refuses every flag", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /audit-entries/{id}/flag", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"flag_irreversible","message":"audit flags cannot be cleared"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		client, err := review.NewClient(srv.URL)
		So(err, ShouldBeNil)

		Convey("Then the conflict maps to the irreversible-flag sentinel", func() {
			_, err := client.SetFlag(context.Background(), "x")
			So(errors.Is(err, audit.ErrFlagIrreversible), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "409")
		})
	})

	Convey("Given no base url", t, func() {
		_, err := review.NewClient("  ")

		Convey("Then the client is not created", func() {
			So(err, ShouldEqual, review.ErrMissingURL)
		})
	})
}
