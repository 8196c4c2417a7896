package memory

import (
	"testing"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
)

var storeEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func storeLineup(matchID string, seq int, players ...string) lineup.Lineup {
	return lineup.Lineup{
		LeagueID:      "lg-1",
		TeamID:        "team-1",
		MatchID:       matchID,
		MatchSeq:      seq,
		PlayerIDs:     players,
		CaptainID:     players[0],
		ViceCaptainID: players[1],
		Origin:        lineup.OriginExplicit,
		CreatedAt:     storeEpoch,
	}
}

func inEntry(id, matchID, playerID string) transfer.Entry {
	return transfer.Entry{
		ID:         id,
		LeagueID:   "lg-1",
		TeamID:     "team-1",
		MatchID:    matchID,
		Direction:  transfer.DirectionIn,
		PlayerID:   playerID,
		RecordedAt: storeEpoch,
	}
}

func TestLineupStore_SaveExplicit_ReplacesMatchAudit(t *testing.T) {
	store := NewLineupStore()
	ctx := t.Context()

	first := lineup.SaveSet{
		Lineup:    storeLineup("m02", 2, "p01", "p02", "p03"),
		Transfers: []transfer.Entry{inEntry("e1", "m02", "p03")},
		CaptaincyChanges: []captaincy.Change{{
			ID: "c1", LeagueID: "lg-1", TeamID: "team-1", MatchID: "m02",
			Kind: captaincy.KindCaptain, FromPlayerID: "p09", ToPlayerID: "p01",
			RecordedAt: storeEpoch,
		}},
	}
	if err := store.SaveExplicit(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Re-save the same match with a different transfer; the earlier entry
	// must not survive.
	second := lineup.SaveSet{
		Lineup:    storeLineup("m02", 2, "p01", "p02", "p04"),
		Transfers: []transfer.Entry{inEntry("e2", "m02", "p04")},
	}
	if err := store.SaveExplicit(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	entries, err := store.ListTransfersByTeam(ctx, "lg-1", "team-1")
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e2" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}

	changes, err := store.ListCaptaincyByTeam(ctx, "lg-1", "team-1")
	if err != nil {
		t.Fatalf("list captaincy: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("captaincy change from replaced save survived: %+v", changes)
	}

	item, exists, err := store.GetByTeamAndMatch(ctx, "lg-1", "team-1", "m02")
	if err != nil || !exists {
		t.Fatalf("get lineup: exists=%v err=%v", exists, err)
	}
	if item.PlayerIDs[2] != "p04" {
		t.Fatalf("lineup not replaced: %+v", item)
	}
}

func TestLineupStore_SaveExplicit_KeepsOtherMatchesAudit(t *testing.T) {
	store := NewLineupStore()
	ctx := t.Context()

	if err := store.SaveExplicit(ctx, lineup.SaveSet{
		Lineup:    storeLineup("m02", 2, "p01", "p02", "p03"),
		Transfers: []transfer.Entry{inEntry("e1", "m02", "p03")},
	}); err != nil {
		t.Fatalf("save m02: %v", err)
	}
	if err := store.SaveExplicit(ctx, lineup.SaveSet{
		Lineup:    storeLineup("m03", 3, "p01", "p02", "p05"),
		Transfers: []transfer.Entry{inEntry("e2", "m03", "p05")},
	}); err != nil {
		t.Fatalf("save m03: %v", err)
	}

	entries, err := store.ListTransfersByTeam(ctx, "lg-1", "team-1")
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entry count=%d want 2", len(entries))
	}
}

func TestLineupStore_InsertPropagated_NeverOverwrites(t *testing.T) {
	store := NewLineupStore()
	ctx := t.Context()

	explicit := storeLineup("m02", 2, "p01", "p02", "p03")
	if err := store.SaveExplicit(ctx, lineup.SaveSet{Lineup: explicit}); err != nil {
		t.Fatalf("save explicit: %v", err)
	}

	propagated := storeLineup("m02", 2, "p07", "p08", "p09")
	propagated.Origin = lineup.OriginPropagated
	inserted, err := store.InsertPropagated(ctx, propagated)
	if err != nil {
		t.Fatalf("insert propagated: %v", err)
	}
	if inserted {
		t.Fatal("propagated insert overwrote a resolved slot")
	}

	item, _, err := store.GetByTeamAndMatch(ctx, "lg-1", "team-1", "m02")
	if err != nil {
		t.Fatalf("get lineup: %v", err)
	}
	if item.Origin != lineup.OriginExplicit || item.CaptainID != "p01" {
		t.Fatalf("explicit lineup changed: %+v", item)
	}

	empty := storeLineup("m03", 3, "p07", "p08", "p09")
	empty.Origin = lineup.OriginPropagated
	inserted, err = store.InsertPropagated(ctx, empty)
	if err != nil {
		t.Fatalf("insert into empty slot: %v", err)
	}
	if !inserted {
		t.Fatal("insert into empty slot reported conflict")
	}
}

func TestLineupStore_Revert_RestoresReplacedState(t *testing.T) {
	store := NewLineupStore()
	ctx := t.Context()

	original := storeLineup("m02", 2, "p01", "p02", "p03")
	if err := store.SaveExplicit(ctx, lineup.SaveSet{
		Lineup:    original,
		Transfers: []transfer.Entry{inEntry("e1", "m02", "p03")},
	}); err != nil {
		t.Fatalf("original save: %v", err)
	}

	replacement := storeLineup("m02", 2, "p01", "p02", "p04")
	cp := lineup.Checkpoint{
		LeagueID:          "lg-1",
		TeamID:            "team-1",
		MatchID:           "m02",
		Previous:          &original,
		PreviousTransfers: []transfer.Entry{inEntry("e1", "m02", "p03")},
		SavedAt:           storeEpoch,
	}
	if err := store.SaveExplicit(ctx, lineup.SaveSet{
		Lineup:     replacement,
		Transfers:  []transfer.Entry{inEntry("e2", "m02", "p04")},
		Checkpoint: cp,
	}); err != nil {
		t.Fatalf("replacement save: %v", err)
	}

	stored, exists, err := store.GetCheckpoint(ctx, "lg-1", "team-1")
	if err != nil || !exists {
		t.Fatalf("get checkpoint: exists=%v err=%v", exists, err)
	}
	if err := store.Revert(ctx, stored); err != nil {
		t.Fatalf("revert: %v", err)
	}

	item, _, err := store.GetByTeamAndMatch(ctx, "lg-1", "team-1", "m02")
	if err != nil {
		t.Fatalf("get lineup: %v", err)
	}
	if item.PlayerIDs[2] != "p03" {
		t.Fatalf("lineup not restored: %+v", item)
	}

	entries, err := store.ListTransfersByTeam(ctx, "lg-1", "team-1")
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("audit not restored: %+v", entries)
	}

	if _, exists, err := store.GetCheckpoint(ctx, "lg-1", "team-1"); err != nil {
		t.Fatalf("get checkpoint after revert: %v", err)
	} else if exists {
		t.Fatal("checkpoint survived the revert")
	}
}

func TestLineupStore_Revert_DeletesFirstSave(t *testing.T) {
	store := NewLineupStore()
	ctx := t.Context()

	cp := lineup.Checkpoint{LeagueID: "lg-1", TeamID: "team-1", MatchID: "m02", SavedAt: storeEpoch}
	if err := store.SaveExplicit(ctx, lineup.SaveSet{
		Lineup:     storeLineup("m02", 2, "p01", "p02", "p03"),
		Checkpoint: cp,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.Revert(ctx, cp); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if _, exists, err := store.GetByTeamAndMatch(ctx, "lg-1", "team-1", "m02"); err != nil {
		t.Fatalf("get lineup: %v", err)
	} else if exists {
		t.Fatal("first-save revert left the lineup behind")
	}
}
