package performance

// Batting is the raw batting line for one player in one match. Out marks a
// dismissal; a duck is Out with zero runs off at least one ball.
type Batting struct {
	Runs       int
	Balls      int
	Fours      int
	Sixes      int
	StrikeRate float64
	Out        bool
}

// Bowling is the raw bowling line. Overs are completed overs; Economy comes
// from the feed alongside it.
type Bowling struct {
	Wickets int
	Overs   float64
	Maidens int
	Economy float64
}

// Fielding is the raw fielding line.
type Fielding struct {
	Catches   int
	Stumpings int
	RunOuts   int
}

// Performance is one player's full line for one match, supplied by the
// external feed once the match completes. A missing record means the player
// did not feature and contributes zero.
type Performance struct {
	PlayerID string
	MatchID  string
	Batting  Batting
	Bowling  Bowling
	Fielding Fielding
}
