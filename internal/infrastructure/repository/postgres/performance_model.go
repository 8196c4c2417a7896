package postgres

import "time"

type performanceTableModel struct {
	MatchID    string  `db:"match_id"`
	PlayerID   string  `db:"player_id"`
	Runs       int     `db:"runs"`
	Balls      int     `db:"balls"`
	Fours      int     `db:"fours"`
	Sixes      int     `db:"sixes"`
	StrikeRate float64 `db:"strike_rate"`
	Out        bool    `db:"is_out"`
	Wickets    int     `db:"wickets"`
	Overs      float64 `db:"overs"`
	Maidens    int     `db:"maidens"`
	Economy    float64 `db:"economy"`
	Catches    int     `db:"catches"`
	Stumpings  int     `db:"stumpings"`
	RunOuts    int     `db:"run_outs"`
}

type matchFeedTableModel struct {
	MatchID    string    `db:"match_id"`
	ReceivedAt time.Time `db:"received_at"`
}
