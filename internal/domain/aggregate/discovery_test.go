package aggregate_test

import (
	"testing"

	"github.com/okian/climarisk/internal/domain/aggregate"
	"github.com/okian/climarisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDiscovery(t *testing.T) {
	Convey("Given a mixed batch of observations", t, func() {
		batch := []model.Observation{
			{SourceID: "ipsl", GroupKey: 2030, Metric: "temperature", Value: model.Float(1)},
			{SourceID: "gfdl", GroupKey: 2030, Metric: "temperature", Value: model.Float(1)},
			{SourceID: "access", GroupKey: 2030, Metric: "precipitation", Value: model.Float(600)},
			{SourceID: "ipsl", GroupKey: 2040, Metric: "temperature", Value: nil},
			{SourceID: "cesm", GroupKey: 2040, Metric: "temperature", Value: model.Float(2)},
		}

		Convey("Then sources come back deduplicated in first-seen order", func() {
			So(aggregate.Sources(batch, "temperature"), ShouldResemble, []string{"ipsl", "gfdl", "cesm"})
			So(aggregate.Sources(batch, "precipitation"), ShouldResemble, []string{"access"})
			So(aggregate.Sources(batch, "wind"), ShouldBeEmpty)
		})

		Convey("Then metrics come back in first-seen order", func() {
			So(aggregate.Metrics(batch), ShouldResemble, []string{"temperature", "precipitation"})
		})

		Convey("Then splitting yields one series per metric", func() {
			split := aggregate.SplitByMetric(batch)
			So(split, ShouldHaveLength, 2)
			So(split["temperature"], ShouldHaveLength, 4)
			So(split["temperature"][0].SourceID, ShouldEqual, "ipsl")
			So(split["precipitation"], ShouldHaveLength, 1)
		})
	})
}
