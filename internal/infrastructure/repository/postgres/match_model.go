package postgres

import "time"

type matchTableModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	Seq       int       `db:"seq"`
	StartsAt  time.Time `db:"starts_at"`
	Completed bool      `db:"completed"`
}

type matchInsertModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	Seq       int       `db:"seq"`
	StartsAt  time.Time `db:"starts_at"`
	Completed bool      `db:"completed"`
}
