package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/climarisk/internal/domain/model"
	scoring "github.com/okian/climarisk/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func item(id string, scores map[string]float64) model.ScoredItem {
	return model.ScoredItem{ID: id, Category: "physical", DimensionScores: scores}
}

func TestRankPeers(t *testing.T) {
	Convey("Given peers scoring 5, 3, 3, 1 on impact", t, func() {
		items := []model.ScoredItem{
			item("a", map[string]float64{"impact": 5}),
			item("b", map[string]float64{"impact": 3}),
			item("c", map[string]float64{"impact": 3}),
			item("d", map[string]float64{"impact": 1}),
		}

		Convey("When ranking by impact", func() {
			ranks, err := scoring.RankPeers(items, "impact")

			Convey("Then the earlier-listed tie wins the better rank", func() {
				So(err, ShouldBeNil)
				So(ranks, ShouldResemble, []int{1, 2, 3, 4})
			})
		})

		Convey("When the tied items are listed in reverse", func() {
			items[1], items[2] = items[2], items[1]
			ranks, err := scoring.RankPeers(items, "impact")

			Convey("Then the ranks follow input position, not id", func() {
				So(err, ShouldBeNil)
				So(ranks, ShouldResemble, []int{1, 2, 3, 4})
				So(items[1].ID, ShouldEqual, "c")
			})
		})
	})

	Convey("Given peers in ascending order", t, func() {
		items := []model.ScoredItem{
			item("low", map[string]float64{"readiness": 1}),
			item("mid", map[string]float64{"readiness": 3}),
			item("top", map[string]float64{"readiness": 5}),
		}

		Convey("Then the highest score is rank 1 even for an opportunity dimension", func() {
			ranks, err := scoring.RankPeers(items, "readiness")
			So(err, ShouldBeNil)
			So(ranks, ShouldResemble, []int{3, 2, 1})
		})
	})

	Convey("Given an item missing the ranked dimension", t, func() {
		items := []model.ScoredItem{
			item("none", map[string]float64{"likelihood": 5}),
			item("low", map[string]float64{"impact": 1}),
			item("high", map[string]float64{"impact": 4}),
		}

		Convey("Then it ranks after every item that has it", func() {
			ranks, err := scoring.RankPeers(items, "impact")
			So(err, ShouldBeNil)
			So(ranks, ShouldResemble, []int{3, 2, 1})
		})
	})

	Convey("Given ranking by overall", t, func() {
		items := []model.ScoredItem{
			item("a", map[string]float64{"impact": 2, "likelihood": 2}),
			item("b", map[string]float64{"impact": 4, "likelihood": 5}),
		}
		ranks, err := scoring.RankPeers(items, scoring.OverallDimension)
		So(err, ShouldBeNil)
		So(ranks, ShouldResemble, []int{2, 1})

		Convey("And an invalid item fails the ranking", func() {
			items[0].DimensionScores["impact"] = 9
			_, err := scoring.RankPeers(items, scoring.OverallDimension)
			So(errors.Is(err, scoring.ErrInvalidScoreRange), ShouldBeTrue)
		})
	})

	Convey("Given fewer than two peers", t, func() {
		Convey("Then a singleton is rejected", func() {
			_, err := scoring.RankPeers([]model.ScoredItem{item("a", map[string]float64{"impact": 3})}, "impact")
			So(errors.Is(err, scoring.ErrEmptyPeerSet), ShouldBeTrue)
		})

		Convey("Then an empty set is rejected", func() {
			_, err := scoring.RankPeers(nil, "impact")
			So(errors.Is(err, scoring.ErrEmptyPeerSet), ShouldBeTrue)
		})
	})
}

func TestRankAllDimensions(t *testing.T) {
	Convey("Given items with a partially shared dimension set", t, func() {
		items := []model.ScoredItem{
			item("flood", map[string]float64{"impact": 5, "likelihood": 2}),
			item("heat", map[string]float64{"impact": 3, "likelihood": 4, "vulnerability": 4}),
		}

		ranked, err := scoring.RankAllDimensions(items)

		Convey("Then every present dimension and overall is ranked", func() {
			So(err, ShouldBeNil)
			So(ranked[0].PeerRankings["impact"], ShouldEqual, 1)
			So(ranked[1].PeerRankings["impact"], ShouldEqual, 2)
			So(ranked[0].PeerRankings["likelihood"], ShouldEqual, 2)
			So(ranked[1].PeerRankings["likelihood"], ShouldEqual, 1)
			So(ranked[1].PeerRankings["vulnerability"], ShouldEqual, 1)
			So(ranked[1].PeerRankings[scoring.OverallDimension], ShouldEqual, 1)
			So(ranked[0].PeerRankings[scoring.OverallDimension], ShouldEqual, 2)
		})

		Convey("Then an item carries no ranking for a dimension it lacks", func() {
			_, ok := ranked[0].PeerRankings["vulnerability"]
			So(ok, ShouldBeFalse)
		})

		Convey("Then the inputs are not mutated", func() {
			So(items[0].PeerRankings, ShouldBeNil)
		})
	})
}
