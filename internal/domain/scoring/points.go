package scoring

import "github.com/crickbase/fantasy-cricket/internal/domain/performance"

// Weights is the fixed per-event point table. Bands and milestones follow
// T20 conventions; only the highest run/wicket milestone applies.
type Weights struct {
	Run          int
	FourBonus    int
	SixBonus     int
	ThirtyBonus  int
	FiftyBonus   int
	CenturyBonus int
	DuckPenalty  int

	// Strike-rate bands apply after MinBallsForStrikeRate balls faced.
	MinBallsForStrikeRate int
	StrikeRateHighBonus   int // >= 160
	StrikeRateMidBonus    int // >= 150
	StrikeRateLowBonus    int // >= 130
	StrikeRateLowPenalty  int // <= 70
	StrikeRateMidPenalty  int // <= 60
	StrikeRateHighPenalty int // <= 50

	Wicket           int
	ThreeWicketBonus int
	FourWicketBonus  int
	FiveWicketBonus  int
	MaidenOver       int

	// Economy bands apply after MinOversForEconomy completed overs.
	MinOversForEconomy float64
	EconomyHighBonus   int // < 4
	EconomyMidBonus    int // < 5
	EconomyLowBonus    int // < 6
	EconomyLowPenalty  int // >= 9
	EconomyMidPenalty  int // >= 10
	EconomyHighPenalty int // >= 11

	Catch           int
	ThreeCatchBonus int
	Stumping        int
	RunOut          int
}

func DefaultWeights() Weights {
	return Weights{
		Run:          1,
		FourBonus:    1,
		SixBonus:     2,
		ThirtyBonus:  4,
		FiftyBonus:   8,
		CenturyBonus: 16,
		DuckPenalty:  -2,

		MinBallsForStrikeRate: 10,
		StrikeRateHighBonus:   6,
		StrikeRateMidBonus:    4,
		StrikeRateLowBonus:    2,
		StrikeRateLowPenalty:  -2,
		StrikeRateMidPenalty:  -4,
		StrikeRateHighPenalty: -6,

		Wicket:           25,
		ThreeWicketBonus: 4,
		FourWicketBonus:  8,
		FiveWicketBonus:  16,
		MaidenOver:       12,

		MinOversForEconomy: 2,
		EconomyHighBonus:   6,
		EconomyMidBonus:    4,
		EconomyLowBonus:    2,
		EconomyLowPenalty:  -2,
		EconomyMidPenalty:  -4,
		EconomyHighPenalty: -6,

		Catch:           8,
		ThreeCatchBonus: 4,
		Stumping:        12,
		RunOut:          6,
	}
}

// BattingPoints scores a batting line: runs, boundary bonuses, the highest
// run milestone, the strike-rate band, and the duck penalty.
func (w Weights) BattingPoints(b performance.Batting) int {
	points := b.Runs*w.Run + b.Fours*w.FourBonus + b.Sixes*w.SixBonus

	switch {
	case b.Runs >= 100:
		points += w.CenturyBonus
	case b.Runs >= 50:
		points += w.FiftyBonus
	case b.Runs >= 30:
		points += w.ThirtyBonus
	}

	if b.Balls >= w.MinBallsForStrikeRate {
		switch {
		case b.StrikeRate >= 160:
			points += w.StrikeRateHighBonus
		case b.StrikeRate >= 150:
			points += w.StrikeRateMidBonus
		case b.StrikeRate >= 130:
			points += w.StrikeRateLowBonus
		case b.StrikeRate <= 50:
			points += w.StrikeRateHighPenalty
		case b.StrikeRate <= 60:
			points += w.StrikeRateMidPenalty
		case b.StrikeRate <= 70:
			points += w.StrikeRateLowPenalty
		}
	}

	if b.Out && b.Runs == 0 && b.Balls > 0 {
		points += w.DuckPenalty
	}

	return points
}

// BowlingPoints scores a bowling line: wickets, the highest wicket
// milestone, maidens, and the economy band.
func (w Weights) BowlingPoints(b performance.Bowling) int {
	points := b.Wickets*w.Wicket + b.Maidens*w.MaidenOver

	switch {
	case b.Wickets >= 5:
		points += w.FiveWicketBonus
	case b.Wickets >= 4:
		points += w.FourWicketBonus
	case b.Wickets >= 3:
		points += w.ThreeWicketBonus
	}

	if b.Overs >= w.MinOversForEconomy {
		switch {
		case b.Economy < 4:
			points += w.EconomyHighBonus
		case b.Economy < 5:
			points += w.EconomyMidBonus
		case b.Economy < 6:
			points += w.EconomyLowBonus
		case b.Economy >= 11:
			points += w.EconomyHighPenalty
		case b.Economy >= 10:
			points += w.EconomyMidPenalty
		case b.Economy >= 9:
			points += w.EconomyLowPenalty
		}
	}

	return points
}

// FieldingPoints scores catches, stumpings, and run-outs.
func (w Weights) FieldingPoints(f performance.Fielding) int {
	points := f.Catches*w.Catch + f.Stumpings*w.Stumping + f.RunOuts*w.RunOut
	if f.Catches >= 3 {
		points += w.ThreeCatchBonus
	}
	return points
}

// PlayerPoints is the full base score for one player's match line.
func (w Weights) PlayerPoints(p performance.Performance) int {
	return w.BattingPoints(p.Batting) + w.BowlingPoints(p.Bowling) + w.FieldingPoints(p.Fielding)
}

// CaptainPoints doubles the base.
func CaptainPoints(base int) int {
	return base * 2
}

// ViceCaptainPoints applies the 1.5x multiplier with a true floor, so the
// rounding rule is identical for positive and negative bases.
func ViceCaptainPoints(base int) int {
	scaled := base * 3
	if scaled < 0 && scaled%2 != 0 {
		return scaled/2 - 1
	}
	return scaled / 2
}
