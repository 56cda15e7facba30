package model_test

import (
	"testing"

	model "github.com/okian/climarisk/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScoredItemClone(t *testing.T) {
	convey.Convey("Given a scored item with maps and peers", t, func() {
		item := model.ScoredItem{
			ID:              "acme-flood",
			Category:        "physical",
			DimensionScores: map[string]float64{"impact": 4, "likelihood": 3},
			Peers:           []string{"globex"},
			PeerRankings:    map[string]int{"impact": 1},
		}

		convey.Convey("When the clone is modified", func() {
			clone := item.Clone()
			clone.DimensionScores["impact"] = 1
			clone.Peers[0] = "initech"
			clone.PeerRankings["impact"] = 9

			convey.Convey("Then the original is untouched", func() {
				convey.So(item.DimensionScores["impact"], convey.ShouldEqual, 4)
				convey.So(item.Peers[0], convey.ShouldEqual, "globex")
				convey.So(item.PeerRankings["impact"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When cloning an item without optional maps", func() {
			clone := model.ScoredItem{Category: "transition"}.Clone()

			convey.Convey("Then nil fields stay nil", func() {
				convey.So(clone.DimensionScores, convey.ShouldBeNil)
				convey.So(clone.Peers, convey.ShouldBeNil)
				convey.So(clone.PeerRankings, convey.ShouldBeNil)
			})
		})
	})
}

func TestObservationHasValue(t *testing.T) {
	convey.Convey("Given observations with and without values", t, func() {
		withValue := model.Observation{SourceID: "gfdl", GroupKey: 2030, Metric: "temperature", Value: model.Float(1.2)}
		null := model.Observation{SourceID: "gfdl", GroupKey: 2040, Metric: "temperature"}

		convey.So(withValue.HasValue(), convey.ShouldBeTrue)
		convey.So(*withValue.Value, convey.ShouldEqual, 1.2)
		convey.So(null.HasValue(), convey.ShouldBeFalse)
	})
}
