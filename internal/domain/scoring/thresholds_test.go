package scoring_test

import (
	"testing"

	"github.com/okian/climarisk/internal/domain/model"
	scoring "github.com/okian/climarisk/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the severity table", t, func() {
		cases := []struct {
			score float64
			want  model.Severity
		}{
			{5.0, model.SeverityCritical},
			{4.5, model.SeverityCritical},
			{4.49, model.SeverityHigh},
			{4.0, model.SeverityHigh},
			{3.5, model.SeverityHigh},
			{3.4999, model.SeverityModerate},
			{2.5, model.SeverityModerate},
			{2.49, model.SeverityLow},
			{1.5, model.SeverityLow},
			{1.49, model.SeverityMinimal},
			{1.0, model.SeverityMinimal},
		}

		Convey("Then each boundary belongs to the higher label", func() {
			for _, c := range cases {
				So(scoring.Classify(c.score), ShouldEqual, c.want)
			}
		})
	})
}

func TestBadge(t *testing.T) {
	Convey("Given the badge table", t, func() {
		So(scoring.Badge(5), ShouldEqual, model.BadgeHigh)
		So(scoring.Badge(4), ShouldEqual, model.BadgeHigh)
		So(scoring.Badge(3.99), ShouldEqual, model.BadgeMedium)
		So(scoring.Badge(3), ShouldEqual, model.BadgeMedium)
		So(scoring.Badge(2.99), ShouldEqual, model.BadgeLow)
		So(scoring.Badge(1), ShouldEqual, model.BadgeLow)

		Convey("And it is independent of the severity table", func() {
			// 3.5 is High severity but only a medium badge.
			So(scoring.Classify(3.5), ShouldEqual, model.SeverityHigh)
			So(scoring.Badge(3.5), ShouldEqual, model.BadgeMedium)
		})
	})
}

func TestRound1(t *testing.T) {
	Convey("Given display rounding", t, func() {
		So(scoring.Round1(3.46), ShouldEqual, 3.5)
		So(scoring.Round1(4.0), ShouldEqual, 4.0)
		So(scoring.Round1(2.0/3.0), ShouldEqual, 0.7)
		So(scoring.Round1(3.333333), ShouldEqual, 3.3)
	})
}
