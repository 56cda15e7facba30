package aggregate_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func obs(source string, year int, v *float64) model.Observation {
	return model.Observation{SourceID: source, GroupKey: year, Metric: "temperature", Value: v}
}

func TestAggregate(t *testing.T) {
	Convey("Given three sources reporting temperature at 2030", t, func() {
		series := aggregate.Series{
			obs("gfdl", 2030, model.Float(1.1)),
			obs("hadgem", 2030, model.Float(1.2)),
			obs("ipsl", 2030, model.Float(1.0)),
		}

		Convey("When aggregating across sources", func() {
			points, err := aggregate.Aggregate(series)

			Convey("Then the point holds the mean of all three", func() {
				So(err, ShouldBeNil)
				So(points, ShouldHaveLength, 1)
				So(points[0].GroupKey, ShouldEqual, 2030)
				So(points[0].Value, ShouldAlmostEqual, 1.1, 1e-9)
				So(points[0].ContributorCount, ShouldEqual, 3)
				So(points[0].SourceID, ShouldEqual, model.AggregateSourceID)
				So(points[0].Metric, ShouldEqual, "temperature")
			})
		})
	})

	Convey("Given a source that reports null at one key", t, func() {
		series := aggregate.Series{
			obs("gfdl", 2040, model.Float(2.0)),
			obs("hadgem", 2040, nil),
			obs("ipsl", 2040, model.Float(3.0)),
		}

		Convey("When aggregating", func() {
			points, err := aggregate.Aggregate(series)

			Convey("Then the null neither counts nor pulls the mean toward zero", func() {
				So(err, ShouldBeNil)
				So(points, ShouldHaveLength, 1)
				So(points[0].ContributorCount, ShouldEqual, 2)
				So(points[0].Value, ShouldEqual, 2.5)
			})
		})
	})

	Convey("Given a key where every source reports null", t, func() {
		series := aggregate.Series{
			obs("gfdl", 2030, model.Float(1.0)),
			obs("gfdl", 2050, nil),
			obs("ipsl", 2050, nil),
		}

		Convey("Then that key is omitted rather than emitted as zero", func() {
			points, err := aggregate.Aggregate(series)
			So(err, ShouldBeNil)
			So(points, ShouldHaveLength, 1)
			So(points[0].GroupKey, ShouldEqual, 2030)
		})
	})

	Convey("Given observations in arbitrary order", t, func() {
		base := aggregate.Series{
			obs("a", 2050, model.Float(3)),
			obs("b", 2030, model.Float(1)),
			obs("a", 2030, model.Float(1)),
			obs("b", 2040, model.Float(2)),
			obs("a", 2040, model.Float(2)),
			obs("b", 2050, model.Float(3)),
		}
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic shuffle

		Convey("Then output is ascending by group key for every permutation", func() {
			for i := 0; i < 20; i++ {
				shuffled := append(aggregate.Series(nil), base...)
				rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

				points, err := aggregate.Aggregate(shuffled)
				So(err, ShouldBeNil)
				So(points, ShouldHaveLength, 3)
				So(points[0].GroupKey, ShouldEqual, 2030)
				So(points[1].GroupKey, ShouldEqual, 2040)
				So(points[2].GroupKey, ShouldEqual, 2050)
			}
		})
	})

	Convey("Given a single-source series", t, func() {
		series := aggregate.Series{
			obs("gfdl", 2050, model.Float(2.1)),
			obs("gfdl", 2030, model.Float(1.3)),
			obs("gfdl", 2040, model.Float(1.7)),
		}

		Convey("Then aggregation is the identity of the source view", func() {
			points, err := aggregate.Aggregate(series)
			So(err, ShouldBeNil)
			filtered, err := aggregate.Filter(series, "gfdl")
			So(err, ShouldBeNil)

			So(points, ShouldHaveLength, len(filtered))
			for i := range points {
				So(points[i].GroupKey, ShouldEqual, filtered[i].GroupKey)
				So(points[i].Value, ShouldEqual, *filtered[i].Value)
				So(points[i].ContributorCount, ShouldEqual, 1)
			}
		})
	})

	Convey("Given invalid series", t, func() {
		Convey("When the series is empty", func() {
			_, err := aggregate.Aggregate(nil)
			So(errors.Is(err, aggregate.ErrEmptySeries), ShouldBeTrue)

			_, err = aggregate.Filter(aggregate.Series{}, "gfdl")
			So(errors.Is(err, aggregate.ErrEmptySeries), ShouldBeTrue)
		})

		Convey("When a source reports the same key twice", func() {
			_, err := aggregate.Aggregate(aggregate.Series{
				obs("gfdl", 2030, model.Float(1)),
				obs("gfdl", 2030, model.Float(2)),
			})
			So(errors.Is(err, aggregate.ErrDuplicateObservation), ShouldBeTrue)
		})

		Convey("When the series mixes metrics", func() {
			_, err := aggregate.Aggregate(aggregate.Series{
				obs("gfdl", 2030, model.Float(1)),
				{SourceID: "gfdl", GroupKey: 2030, Metric: "precipitation", Value: model.Float(700)},
			})
			So(errors.Is(err, aggregate.ErrMixedMetrics), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a two-source series", t, func() {
		series := aggregate.Series{
			obs("hadgem", 2040, model.Float(2.0)),
			obs("gfdl", 2040, nil),
			obs("gfdl", 2030, model.Float(1.0)),
			obs("hadgem", 2030, model.Float(3.0)),
		}

		Convey("When a source is selected", func() {
			res, err := aggregate.Run(series, "gfdl")

			Convey("Then its observations come back unmodified and sorted", func() {
				So(err, ShouldBeNil)
				So(res.Points, ShouldBeNil)
				So(res.SourceID, ShouldEqual, "gfdl")
				So(res.Observations, ShouldHaveLength, 2)
				So(res.Observations[0].GroupKey, ShouldEqual, 2030)
				So(*res.Observations[0].Value, ShouldEqual, 1.0)
				So(res.Observations[1].GroupKey, ShouldEqual, 2040)
				So(res.Observations[1].Value, ShouldBeNil)
			})
		})

		Convey("When no source is selected", func() {
			res, err := aggregate.Run(series, "")

			Convey("Then the cross-source mean is returned", func() {
				So(err, ShouldBeNil)
				So(res.Observations, ShouldBeNil)
				So(res.SourceID, ShouldEqual, model.AggregateSourceID)
				So(res.Points, ShouldHaveLength, 2)
				So(res.Points[0].Value, ShouldEqual, 2.0)
				So(res.Points[0].ContributorCount, ShouldEqual, 2)
				So(res.Points[1].Value, ShouldEqual, 2.0)
				So(res.Points[1].ContributorCount, ShouldEqual, 1)
			})
		})

		Convey("When an unknown source is selected", func() {
			res, err := aggregate.Run(series, "miroc")
			So(err, ShouldBeNil)
			So(res.Observations, ShouldBeEmpty)
		})
	})
}
