package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithCustomLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then options are applied", func() {
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")
			So(m.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
		})

		Convey("Then collectors are registered under the namespace", func() {
			m.itemsScored.WithLabelValues("High").Inc()
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			found := false
			for _, f := range families {
				if f.GetName() == "test_unit_items_scored_total" {
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then empty options keep the defaults", func() {
			d := NewManager(WithNamespace(""), WithHistogramBuckets(nil), WithPrometheusRegistry(prometheus.NewRegistry()))
			So(d.namespace, ShouldEqual, "climarisk")
			So(d.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording engine activity", func() {
			beforeHigh := testutil.ToFloat64(globalManager.itemsScored.WithLabelValues("High"))
			beforePoints := testutil.ToFloat64(globalManager.aggregatedPoints)

			RecordItemScored("High")
			RecordAggregation("aggregate", 3)
			RecordEngineError("rank", "empty_peer_set")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.itemsScored.WithLabelValues("High")), ShouldEqual, beforeHigh+1)
				So(testutil.ToFloat64(globalManager.aggregatedPoints), ShouldEqual, beforePoints+3)
				So(testutil.ToFloat64(globalManager.engineErrors.WithLabelValues("rank", "empty_peer_set")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateBoardCompanies(3)
			UpdateReportsStored(5)
			UpdateWorkerCount(4)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.boardCompanies), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.reportsStored), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			})
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
