package league

import "time"

// League carries the per-league configuration the engine consumes.
// Creation and membership management live in the directory service.
type League struct {
	ID                     string
	Name                   string
	SquadSize              int
	TransferLimit          int
	CaptainChangeQuota     int
	ViceCaptainChangeQuota int
	CreatedAt              time.Time
}
