package dataset_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/dataset"
)

func TestLoadFile(t *testing.T) {
	Convey("Given the sample dataset file", t, func() {
		ds, err := dataset.LoadFile("testdata/dataset.yaml")

		Convey("Then every section is decoded", func() {
			So(err, ShouldBeNil)
			So(len(ds.Employees), ShouldEqual, 3)
			So(len(ds.Projects), ShouldEqual, 2)
			So(len(ds.Tasks), ShouldEqual, 3)
			So(len(ds.ManagerRatings), ShouldEqual, 2)
			So(len(ds.PeerRatings), ShouldEqual, 1)
			So(len(ds.KPIs), ShouldEqual, 2)
			So(ds.Projects[0].Weightage, ShouldEqual, 10)
			So(ds.Tasks[0].AssigneeIDs, ShouldResemble, []string{"e1"})
			So(ds.Tasks[2].LegacyAssigneeID, ShouldEqual, "e3")
			So(ds.ManagerRatings[0].Quality, ShouldEqual, 5.0)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := dataset.LoadFile("testdata/nope.yaml")
		So(err, ShouldNotBeNil)
	})
}

func TestDecode(t *testing.T) {
	Convey("Given an empty document", t, func() {
		ds, err := dataset.Decode(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(len(ds.Employees), ShouldEqual, 0)
	})

	Convey("Given invalid documents", t, func() {
		cases := map[string]string{
			"unknown field":      "employes: []",
			"task orphan":        "tasks: [{id: t1, project_id: p9}]",
			"unknown assignee":   "projects: [{id: p1, weightage: 1}]\ntasks: [{id: t1, project_id: p1, assignee_ids: [e9]}]",
			"negative weightage": "projects: [{id: p1, weightage: -1}]",
			"rating scale":       "manager_ratings: [{employee_id: e1, project_id: p1, volume: 6, quality: 1, speed: 1}]",
			"kpi scale":          "kpis: [{employee_id: e1, project_id: p1, metric: Speed, value: -1}]",
			"employee id":        "employees: [{name: nobody}]",
			"malformed yaml":     "employees: [",
		}
		for name, doc := range cases {
			Convey("Then "+name+" is rejected", func() {
				_, err := dataset.Decode(strings.NewReader(doc))
				So(errors.Is(err, dataset.ErrInvalidDataset), ShouldBeTrue)
			})
		}
	})
}
