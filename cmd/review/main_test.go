package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/http/api"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/review"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

func execute(args ...string) (string, error) {
	cmd := newRootCommand(logger.Nop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFlagCommand(t *testing.T) {
	convey.Convey("Given a running server with a bonus audit", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		convey.So(store.Import(ctx, model.Dataset{
			Employees: []model.Employee{{ID: "e1", Name: "Ada"}, {ID: "e2", Name: "Bo"}},
			Projects:  []model.Project{{ID: "p1", Name: "Search", Weightage: 5}},
			Tasks: []model.Task{
				{ID: "t1", ProjectID: "p1", AssigneeIDs: []string{"e1"}},
				{ID: "t2", ProjectID: "p1", AssigneeIDs: []string{"e2"}},
			},
		}), convey.ShouldBeNil)
		svc := service.New(service.WithStore(store))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		rec, err := svc.AuditBonus(ctx, service.BonusAuditRequest{
			Name:    "Q3",
			Pool:    1000,
			Amounts: map[string]float64{"e1": 500, "e2": 500},
		})
		convey.So(err, convey.ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When flagging one entry", func() {
			target := rec.Entries[0].ID
			out, err := execute("flag", "--url", srv.URL, "--record", rec.ID, target)

			convey.Convey("Then the server holds the flag and the summary reports it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, target+"\tflagged")
				convey.So(out, convey.ShouldContainSubstring, "Q3: 1 of 2 entries flagged")

				stored, err := svc.GetAuditRecord(ctx, rec.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(stored.FlaggedCount(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When one of the entries is not in the record", func() {
			out, err := execute("flag", "--url", srv.URL, "--record", rec.ID, rec.Entries[1].ID, "missing")

			convey.Convey("Then the known entry is still flagged and the command fails", func() {
				convey.So(errors.Is(err, review.ErrUnknownEntry), convey.ShouldBeTrue)
				convey.So(out, convey.ShouldContainSubstring, "missing\tFAILED")
				convey.So(out, convey.ShouldContainSubstring, "Q3: 1 of 2 entries flagged")
			})
		})

		convey.Convey("When the record does not exist", func() {
			_, err := execute("flag", "--url", srv.URL, "--record", "nope", "x")

			convey.Convey("Then the command fails with not found", func() {
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When no record is given", func() {
			_, err := execute("flag", "--url", srv.URL, "x")

			convey.Convey("Then the command refuses to run", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
