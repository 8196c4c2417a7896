package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrMatchLocked              = errors.New("match is locked")
	ErrSequentialLockViolation  = errors.New("earlier locked match has no resolved lineup")
	ErrTransferLimitExceeded    = errors.New("transfer limit exceeded")
	ErrCaptainQuotaExceeded     = errors.New("captain change quota exceeded")
	ErrViceCaptainQuotaExceeded = errors.New("vice-captain change quota exceeded")
	ErrNoPriorLineup            = errors.New("no prior lineup to draw from")
	ErrUndoWindowClosed         = errors.New("undo grace window has closed")
	// ErrPerformanceUnavailable is a deferred state rather than a failure:
	// the feed has not delivered the match's performance data yet.
	ErrPerformanceUnavailable = errors.New("performance data not yet available")
)
