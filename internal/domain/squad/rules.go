package squad

import (
	"errors"
	"fmt"
)

var ErrInvalidComposition = errors.New("invalid lineup composition")

// Rules stores the lineup composition parameters enforced on every save.
type Rules struct {
	LineupSize                int
	MinKeepers                int
	MinPureBatters            int
	BowlingOversQuota         int
	OversPerBowler            int
	OversPerBattingAllrounder int
}

func DefaultRules() Rules {
	return Rules{
		LineupSize:                11,
		MinKeepers:                1,
		MinPureBatters:            1,
		BowlingOversQuota:         20,
		OversPerBowler:            4,
		OversPerBattingAllrounder: 2,
	}
}

// Selection is the player set plus captaincy designation a team submits.
type Selection struct {
	PlayerIDs     []string
	CaptainID     string
	ViceCaptainID string
}

// ValidateSelection checks a submitted eleven against the pool and the
// composition rules. All failures wrap ErrInvalidComposition with enough
// detail for the caller to self-correct.
func ValidateSelection(pool Pool, sel Selection, rules Rules) error {
	if len(sel.PlayerIDs) != rules.LineupSize {
		return fmt.Errorf("%w: expected %d players, got %d", ErrInvalidComposition, rules.LineupSize, len(sel.PlayerIDs))
	}

	seen := make(map[string]struct{}, len(sel.PlayerIDs))
	keepers := 0
	pureBatters := 0
	oversCapacity := 0
	for _, playerID := range sel.PlayerIDs {
		if playerID == "" {
			return fmt.Errorf("%w: player id cannot be empty", ErrInvalidComposition)
		}
		if _, dup := seen[playerID]; dup {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidComposition, playerID)
		}
		seen[playerID] = struct{}{}

		role, ok := pool.RoleOf(playerID)
		if !ok {
			return fmt.Errorf("%w: player %s is not in the squad pool", ErrInvalidComposition, playerID)
		}

		switch role {
		case RoleKeeper:
			keepers++
		case RoleBatter:
			pureBatters++
		case RoleBowler, RoleBowlingAllrounder:
			oversCapacity += rules.OversPerBowler
		case RoleBattingAllrounder:
			oversCapacity += rules.OversPerBattingAllrounder
		}
	}

	if keepers < rules.MinKeepers {
		return fmt.Errorf("%w: need at least %d wicketkeeper, got %d", ErrInvalidComposition, rules.MinKeepers, keepers)
	}
	if pureBatters < rules.MinPureBatters {
		return fmt.Errorf("%w: need at least %d pure batter, got %d", ErrInvalidComposition, rules.MinPureBatters, pureBatters)
	}
	if oversCapacity < rules.BowlingOversQuota {
		return fmt.Errorf("%w: bowling capacity %d overs is below the %d over quota", ErrInvalidComposition, oversCapacity, rules.BowlingOversQuota)
	}

	if sel.CaptainID == "" || sel.ViceCaptainID == "" {
		return fmt.Errorf("%w: captain and vice-captain are required", ErrInvalidComposition)
	}
	if sel.CaptainID == sel.ViceCaptainID {
		return fmt.Errorf("%w: captain and vice-captain must be different", ErrInvalidComposition)
	}
	if _, ok := seen[sel.CaptainID]; !ok {
		return fmt.Errorf("%w: captain %s must be in the eleven", ErrInvalidComposition, sel.CaptainID)
	}
	if _, ok := seen[sel.ViceCaptainID]; !ok {
		return fmt.Errorf("%w: vice-captain %s must be in the eleven", ErrInvalidComposition, sel.ViceCaptainID)
	}

	return nil
}
