package predict_test

import (
	"context"
	"testing"

	"github.com/beaconkit/beacon/internal/domain/predict"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTransitionModel(t *testing.T) {
	Convey("Given an empty transition model", t, func() {
		m := predict.NewTransitionModel(predict.WithMinSamples(3))
		ctx := context.Background()

		Convey("When an origin has too few observed departures", func() {
			m.RecordNavigation(ctx, "/home", "/products")
			m.RecordNavigation(ctx, "/home", "/products")

			So(m.Predict(ctx, "/home"), ShouldBeNil)
		})

		Convey("When transitions accumulate", func() {
			for i := 0; i < 8; i++ {
				m.RecordNavigation(ctx, "/home", "/products")
			}
			m.RecordNavigation(ctx, "/home", "/about")
			m.RecordNavigation(ctx, "/home", "/contact")

			preds := m.Predict(ctx, "/home")

			Convey("Then candidates are ranked by probability", func() {
				So(len(preds), ShouldEqual, 3)
				So(preds[0].Path, ShouldEqual, "/products")
				So(preds[0].Probability, ShouldAlmostEqual, 0.8)
				So(preds[1].Probability, ShouldAlmostEqual, 0.1)
			})

			Convey("Then unknown origins predict nothing", func() {
				So(m.Predict(ctx, "/checkout"), ShouldBeNil)
			})
		})

		Convey("When self-transitions or empty paths are recorded", func() {
			m.RecordNavigation(ctx, "/home", "/home")
			m.RecordNavigation(ctx, "", "/products")
			m.RecordNavigation(ctx, "/home", "")

			So(m.Predict(ctx, "/home"), ShouldBeNil)
		})

		Convey("When fanout exceeds the cap", func() {
			m2 := predict.NewTransitionModel(predict.WithMinSamples(1), predict.WithMaxFanout(2))
			m2.RecordNavigation(ctx, "/hub", "/a")
			m2.RecordNavigation(ctx, "/hub", "/b")
			m2.RecordNavigation(ctx, "/hub", "/c")

			So(len(m2.Predict(ctx, "/hub")), ShouldEqual, 2)
		})
	})
}
