package postgres

import "time"

type leagueTableModel struct {
	ID                     string    `db:"id"`
	Name                   string    `db:"name"`
	SquadSize              int       `db:"squad_size"`
	TransferLimit          int       `db:"transfer_limit"`
	CaptainChangeQuota     int       `db:"captain_change_quota"`
	ViceCaptainChangeQuota int       `db:"vice_captain_change_quota"`
	CreatedAt              time.Time `db:"created_at"`
}
