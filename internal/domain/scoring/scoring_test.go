package scoring_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/okian/climarisk/internal/domain/model"
	scoring "github.com/okian/climarisk/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with the built-in profiles", t, func() {
		scorer := scoring.NewScorer()

		Convey("When scoring a risk item", func() {
			in := model.ScoredItem{
				ID:              "acme-flood",
				Category:        "physical",
				Subcategory:     "flood",
				DimensionScores: map[string]float64{"impact": 4, "likelihood": 5, "vulnerability": 3},
			}
			out, err := scorer.Score("risk", in)

			Convey("Then overall, label and badge are derived", func() {
				So(err, ShouldBeNil)
				So(out.OverallScore, ShouldEqual, 4.0)
				So(out.DisplayScore, ShouldEqual, 4.0)
				So(out.Severity, ShouldEqual, model.SeverityHigh)
				So(out.Badge, ShouldEqual, model.BadgeHigh)
			})

			Convey("Then the input item is untouched", func() {
				So(in.OverallScore, ShouldEqual, 0)
				So(in.Severity, ShouldEqual, model.Severity(""))
			})
		})

		Convey("When the profile name is empty", func() {
			out, err := scorer.Score("", model.ScoredItem{Category: "physical", DimensionScores: map[string]float64{"impact": 1, "likelihood": 1}})

			Convey("Then the default risk profile applies", func() {
				So(err, ShouldBeNil)
				So(out.Severity, ShouldEqual, model.SeverityMinimal)
			})
		})

		Convey("When an item carries a dimension outside the profile", func() {
			_, err := scorer.Score("risk", model.ScoredItem{Category: "physical", DimensionScores: map[string]float64{"impact": 3, "readiness": 2}})
			So(errors.Is(err, scoring.ErrUnknownDimension), ShouldBeTrue)
		})

		Convey("When the profile does not exist", func() {
			_, err := scorer.Score("esg", model.ScoredItem{Category: "physical", DimensionScores: map[string]float64{"impact": 3}})
			So(errors.Is(err, scoring.ErrUnknownProfile), ShouldBeTrue)
		})

		Convey("When a score is out of range", func() {
			_, err := scorer.Score("opportunity", model.ScoredItem{Category: "products", DimensionScores: map[string]float64{"exposure": 6}})
			So(errors.Is(err, scoring.ErrInvalidScoreRange), ShouldBeTrue)
		})
	})

	Convey("Given profiles from configuration", t, func() {
		scorer := scoring.NewScorer(
			scoring.WithProfilesFromConfig(map[string][]string{
				"supply_chain": {"criticality", "concentration"},
				"":             {"ignored"},
				"empty":        nil,
			}),
			scoring.WithProfile(scoring.Profile{Name: "loose"}),
			scoring.WithDefaultProfile("supply_chain"),
		)

		Convey("Then they are registered next to the built-ins", func() {
			So(scorer.Profiles(), ShouldResemble, []string{"dependency", "loose", "opportunity", "risk", "supply_chain"})
		})

		Convey("Then the configured default is used for an empty name", func() {
			p, err := scorer.Profile("")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "supply_chain")
			So(p.Strict, ShouldBeTrue)
		})

		Convey("Then a non-strict profile accepts any dimension", func() {
			out, err := scorer.Score("loose", model.ScoredItem{Category: "x", DimensionScores: map[string]float64{"anything": 5}})
			So(err, ShouldBeNil)
			So(out.Severity, ShouldEqual, model.SeverityCritical)
		})
	})
}

func TestScorer_Assess(t *testing.T) {
	Convey("Given a company's risk items", t, func() {
		scorer := scoring.NewScorer()
		items := []model.ScoredItem{
			{ID: "flood", Category: "physical", DimensionScores: map[string]float64{"impact": 5, "likelihood": 4, "vulnerability": 5}},
			{ID: "heat", Category: "physical", DimensionScores: map[string]float64{"impact": 3, "likelihood": 4, "vulnerability": 2}},
			{ID: "policy", Category: "transition", DimensionScores: map[string]float64{"impact": 4, "likelihood": 3}, Peers: []string{"flood"}},
		}

		Convey("When assessing the collection", func() {
			a, err := scorer.Assess("risk", items)

			Convey("Then every item is scored and ranked", func() {
				So(err, ShouldBeNil)
				So(a.Profile, ShouldEqual, "risk")
				So(a.Items, ShouldHaveLength, 3)
				So(a.Items[0].Severity, ShouldEqual, model.SeverityCritical)
				So(a.Items[0].PeerRankings[scoring.OverallDimension], ShouldEqual, 1)
				So(a.Items[1].PeerRankings["impact"], ShouldEqual, 3)
				So(a.Items[2].PeerRankings["impact"], ShouldEqual, 2)
			})

			Convey("Then peers default to the rest of the collection", func() {
				So(a.Items[0].Peers, ShouldResemble, []string{"heat", "policy"})
				So(a.Items[2].Peers, ShouldResemble, []string{"flood"})
			})

			Convey("Then the summaries are filled", func() {
				So(a.Summary.Count, ShouldEqual, 3)
				So(a.Summary.CriticalCount, ShouldEqual, 1)
				So(a.Categories, ShouldHaveLength, 2)
				So(a.Categories[0].Category, ShouldEqual, "physical")
			})
		})

		Convey("When assessing a single item", func() {
			a, err := scorer.Assess("risk", items[:1])

			Convey("Then it is scored but not ranked", func() {
				So(err, ShouldBeNil)
				So(a.Items[0].PeerRankings, ShouldBeNil)
				So(a.Summary.Count, ShouldEqual, 1)
			})
		})

		Convey("When the collection is empty", func() {
			_, err := scorer.Assess("risk", nil)
			So(errors.Is(err, scoring.ErrEmptyCollection), ShouldBeTrue)
		})

		Convey("When the scorer is shared across goroutines", func() {
			var wg sync.WaitGroup
			errs := make([]error, 16)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = scorer.Assess("risk", items)
				}(i)
			}
			wg.Wait()

			Convey("Then every call succeeds independently", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})
}
