package repository_test

import (
	"context"
	"testing"

	repository "github.com/traffixlab/traffix/internal/adapters/repository"
	model "github.com/traffixlab/traffix/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := repository.NewMemStore()

		Convey("Then reads return well-formed empty results", func() {
			So(s.Snapshot(ctx), ShouldHaveLength, 0)
			So(s.Count(ctx), ShouldEqual, 0)
			So(s.Version(ctx), ShouldBeEmpty)
		})

		Convey("When a snapshot is installed", func() {
			rows := []model.Row{
				{Source: "A", Target: "B", Congestion: 0.4},
				{Source: "B", Target: "C", Congestion: 0.2},
			}
			v1 := s.Replace(ctx, rows)

			Convey("Then readers see the rows and the version", func() {
				So(v1, ShouldNotBeEmpty)
				So(s.Version(ctx), ShouldEqual, v1)
				So(s.Count(ctx), ShouldEqual, 2)
				So(s.Snapshot(ctx)[0].Source, ShouldEqual, "A")
			})

			Convey("Then a second replace changes the version", func() {
				v2 := s.Replace(ctx, rows[:1])
				So(v2, ShouldNotEqual, v1)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then mutating the caller's slice does not leak into the store", func() {
				rows[0].Congestion = 0.99
				So(s.Snapshot(ctx)[0].Congestion, ShouldEqual, 0.4)
			})

			Convey("Then mutating a returned snapshot does not leak back", func() {
				snap := s.Snapshot(ctx)
				snap[0].Congestion = 0.77
				So(s.Snapshot(ctx)[0].Congestion, ShouldEqual, 0.4)
			})
		})
	})
}
