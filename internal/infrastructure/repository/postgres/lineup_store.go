package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/crickbase/fantasy-cricket/internal/domain/captaincy"
	"github.com/crickbase/fantasy-cricket/internal/domain/lineup"
	"github.com/crickbase/fantasy-cricket/internal/domain/transfer"
	qb "github.com/crickbase/fantasy-cricket/internal/platform/querybuilder"
)

// LineupStore owns the lineups table plus the audit and checkpoint tables
// that every explicit save touches. Keeping them in one store lets
// SaveExplicit and Revert run as single transactions.
type LineupStore struct {
	db *sqlx.DB
}

func NewLineupStore(db *sqlx.DB) *LineupStore {
	return &LineupStore{db: db}
}

func (s *LineupStore) GetByTeamAndMatch(ctx context.Context, leagueID, teamID, matchID string) (lineup.Lineup, bool, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
			qb.Eq("match_id", matchID),
		).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("build get lineup query: %w", err)
	}

	var row lineupTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return s.getByTeamAndMatchLiteral(ctx, leagueID, teamID, matchID)
		}
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, fmt.Errorf("get lineup: %w", err)
	}

	return lineupFromRow(row), true, nil
}

func (s *LineupStore) getByTeamAndMatchLiteral(ctx context.Context, leagueID, teamID, matchID string) (lineup.Lineup, bool, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.EqLiteral("league_id", leagueID),
			qb.EqLiteral("team_id", teamID),
			qb.EqLiteral("match_id", matchID),
		).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("build get lineup literal fallback query: %w", err)
	}

	var row lineupTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, fmt.Errorf("get lineup literal fallback: %w", err)
	}

	return lineupFromRow(row), true, nil
}

func (s *LineupStore) ListByTeam(ctx context.Context, leagueID, teamID string) ([]lineup.Lineup, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("match_seq").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team lineups query: %w", err)
	}

	var rows []lineupTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team lineups: %w", err)
	}

	out := make([]lineup.Lineup, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineupFromRow(row))
	}
	return out, nil
}

func (s *LineupStore) ListByMatch(ctx context.Context, leagueID, matchID string) ([]lineup.Lineup, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("match_id", matchID),
		).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match lineups query: %w", err)
	}

	var rows []lineupTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match lineups: %w", err)
	}

	out := make([]lineup.Lineup, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineupFromRow(row))
	}
	return out, nil
}

func (s *LineupStore) Current(ctx context.Context, leagueID, teamID string) (lineup.Lineup, bool, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("match_seq DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("build current lineup query: %w", err)
	}

	var row lineupTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, fmt.Errorf("get current lineup: %w", err)
	}

	return lineupFromRow(row), true, nil
}

func (s *LineupStore) SaveExplicit(ctx context.Context, set lineup.SaveSet) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save lineup tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertLineupTx(ctx, tx, set.Lineup); err != nil {
		return err
	}
	if err := replaceTransferEntriesTx(ctx, tx, set.Lineup, set.Transfers); err != nil {
		return err
	}
	if err := replaceCaptaincyChangesTx(ctx, tx, set.Lineup, set.CaptaincyChanges); err != nil {
		return err
	}
	if err := upsertCheckpointTx(ctx, tx, set.Checkpoint); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save lineup tx: %w", err)
	}
	return nil
}

func (s *LineupStore) InsertPropagated(ctx context.Context, item lineup.Lineup) (bool, error) {
	insertModel := lineupTableModel{
		LeagueID:      item.LeagueID,
		TeamID:        item.TeamID,
		MatchID:       item.MatchID,
		MatchSeq:      item.MatchSeq,
		PlayerIDs:     pq.StringArray(item.PlayerIDs),
		CaptainID:     item.CaptainID,
		ViceCaptainID: item.ViceCaptainID,
		Origin:        string(item.Origin),
		CreatedAt:     item.CreatedAt,
	}

	query, args, err := qb.InsertModel("lineups", insertModel, `ON CONFLICT (league_id, team_id, match_id) DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("build propagated lineup insert query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert propagated lineup: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read propagated lineup insert result: %w", err)
	}
	return affected > 0, nil
}

func (s *LineupStore) GetCheckpoint(ctx context.Context, leagueID, teamID string) (lineup.Checkpoint, bool, error) {
	query, args, err := qb.Select("*").
		From("lineup_checkpoints").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		ToSQL()
	if err != nil {
		return lineup.Checkpoint{}, false, fmt.Errorf("build get checkpoint query: %w", err)
	}

	var row checkpointTableModel
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Checkpoint{}, false, nil
		}
		return lineup.Checkpoint{}, false, fmt.Errorf("get checkpoint: %w", err)
	}

	return checkpointFromRow(row)
}

func (s *LineupStore) Revert(ctx context.Context, cp lineup.Checkpoint) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin revert lineup tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if cp.Previous != nil {
		if err := upsertLineupTx(ctx, tx, *cp.Previous); err != nil {
			return err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM lineups WHERE league_id = $1 AND team_id = $2 AND match_id = $3`,
			cp.LeagueID, cp.TeamID, cp.MatchID,
		); err != nil {
			return fmt.Errorf("delete reverted lineup: %w", err)
		}
	}

	restored := lineup.Lineup{LeagueID: cp.LeagueID, TeamID: cp.TeamID, MatchID: cp.MatchID}
	if err := replaceTransferEntriesTx(ctx, tx, restored, cp.PreviousTransfers); err != nil {
		return err
	}
	if err := replaceCaptaincyChangesTx(ctx, tx, restored, cp.PreviousCaptaincy); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM lineup_checkpoints WHERE league_id = $1 AND team_id = $2`,
		cp.LeagueID, cp.TeamID,
	); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit revert lineup tx: %w", err)
	}
	return nil
}

// ListTransfersByTeam implements transfer.Repository.
func (s *LineupStore) ListTransfersByTeam(ctx context.Context, leagueID, teamID string) ([]transfer.Entry, error) {
	query, args, err := qb.Select("*").
		From("transfer_entries").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("recorded_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfer entries query: %w", err)
	}

	var rows []transferEntryTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transfer entries: %w", err)
	}

	out := make([]transfer.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, transfer.Entry{
			ID:               row.ID,
			LeagueID:         row.LeagueID,
			TeamID:           row.TeamID,
			MatchID:          row.MatchID,
			Direction:        transfer.Direction(row.Direction),
			PlayerID:         row.PlayerID,
			PreviousPlayerID: row.PreviousPlayerID,
			RecordedAt:       row.RecordedAt,
		})
	}
	return out, nil
}

// ListCaptaincyByTeam implements captaincy.Repository.
func (s *LineupStore) ListCaptaincyByTeam(ctx context.Context, leagueID, teamID string) ([]captaincy.Change, error) {
	query, args, err := qb.Select("*").
		From("captaincy_changes").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("recorded_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list captaincy changes query: %w", err)
	}

	var rows []captaincyChangeTableModel
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list captaincy changes: %w", err)
	}

	out := make([]captaincy.Change, 0, len(rows))
	for _, row := range rows {
		out = append(out, captaincy.Change{
			ID:           row.ID,
			LeagueID:     row.LeagueID,
			TeamID:       row.TeamID,
			MatchID:      row.MatchID,
			Kind:         captaincy.Kind(row.Kind),
			FromPlayerID: row.FromPlayerID,
			ToPlayerID:   row.ToPlayerID,
			RecordedAt:   row.RecordedAt,
		})
	}
	return out, nil
}

// TransferLog exposes the store as a transfer.Repository.
func (s *LineupStore) TransferLog() transfer.Repository {
	return pgTransferLogView{store: s}
}

// CaptaincyLog exposes the store as a captaincy.Repository.
func (s *LineupStore) CaptaincyLog() captaincy.Repository {
	return pgCaptaincyLogView{store: s}
}

type pgTransferLogView struct{ store *LineupStore }

func (v pgTransferLogView) ListByTeam(ctx context.Context, leagueID, teamID string) ([]transfer.Entry, error) {
	return v.store.ListTransfersByTeam(ctx, leagueID, teamID)
}

type pgCaptaincyLogView struct{ store *LineupStore }

func (v pgCaptaincyLogView) ListByTeam(ctx context.Context, leagueID, teamID string) ([]captaincy.Change, error) {
	return v.store.ListCaptaincyByTeam(ctx, leagueID, teamID)
}

func upsertLineupTx(ctx context.Context, tx *sqlx.Tx, item lineup.Lineup) error {
	insertModel := lineupTableModel{
		LeagueID:      item.LeagueID,
		TeamID:        item.TeamID,
		MatchID:       item.MatchID,
		MatchSeq:      item.MatchSeq,
		PlayerIDs:     pq.StringArray(item.PlayerIDs),
		CaptainID:     item.CaptainID,
		ViceCaptainID: item.ViceCaptainID,
		Origin:        string(item.Origin),
		CreatedAt:     item.CreatedAt,
	}

	query, args, err := qb.InsertModel("lineups", insertModel, `ON CONFLICT (league_id, team_id, match_id)
DO UPDATE SET
    match_seq = EXCLUDED.match_seq,
    player_ids = EXCLUDED.player_ids,
    captain_id = EXCLUDED.captain_id,
    vice_captain_id = EXCLUDED.vice_captain_id,
    origin = EXCLUDED.origin,
    created_at = EXCLUDED.created_at`)
	if err != nil {
		return fmt.Errorf("build lineup upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert lineup: %w", err)
	}
	return nil
}

func replaceTransferEntriesTx(ctx context.Context, tx *sqlx.Tx, item lineup.Lineup, entries []transfer.Entry) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transfer_entries WHERE league_id = $1 AND team_id = $2 AND match_id = $3`,
		item.LeagueID, item.TeamID, item.MatchID,
	); err != nil {
		return fmt.Errorf("delete replaced transfer entries: %w", err)
	}

	for _, entry := range entries {
		insertModel := transferEntryTableModel{
			ID:               entry.ID,
			LeagueID:         entry.LeagueID,
			TeamID:           entry.TeamID,
			MatchID:          entry.MatchID,
			Direction:        string(entry.Direction),
			PlayerID:         entry.PlayerID,
			PreviousPlayerID: entry.PreviousPlayerID,
			RecordedAt:       entry.RecordedAt,
		}
		query, args, err := qb.InsertModel("transfer_entries", insertModel, "")
		if err != nil {
			return fmt.Errorf("build transfer entry insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert transfer entry: %w", err)
		}
	}
	return nil
}

func replaceCaptaincyChangesTx(ctx context.Context, tx *sqlx.Tx, item lineup.Lineup, changes []captaincy.Change) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM captaincy_changes WHERE league_id = $1 AND team_id = $2 AND match_id = $3`,
		item.LeagueID, item.TeamID, item.MatchID,
	); err != nil {
		return fmt.Errorf("delete replaced captaincy changes: %w", err)
	}

	for _, change := range changes {
		insertModel := captaincyChangeTableModel{
			ID:           change.ID,
			LeagueID:     change.LeagueID,
			TeamID:       change.TeamID,
			MatchID:      change.MatchID,
			Kind:         string(change.Kind),
			FromPlayerID: change.FromPlayerID,
			ToPlayerID:   change.ToPlayerID,
			RecordedAt:   change.RecordedAt,
		}
		query, args, err := qb.InsertModel("captaincy_changes", insertModel, "")
		if err != nil {
			return fmt.Errorf("build captaincy change insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert captaincy change: %w", err)
		}
	}
	return nil
}

func upsertCheckpointTx(ctx context.Context, tx *sqlx.Tx, cp lineup.Checkpoint) error {
	row := checkpointTableModel{
		LeagueID: cp.LeagueID,
		TeamID:   cp.TeamID,
		MatchID:  cp.MatchID,
		SavedAt:  cp.SavedAt,
	}

	var err error
	if cp.Previous != nil {
		row.PreviousLineup, err = sonic.Marshal(cp.Previous)
		if err != nil {
			return fmt.Errorf("encode checkpoint previous lineup: %w", err)
		}
	}
	row.PreviousTransfers, err = sonic.Marshal(cp.PreviousTransfers)
	if err != nil {
		return fmt.Errorf("encode checkpoint previous transfers: %w", err)
	}
	row.PreviousCaptaincy, err = sonic.Marshal(cp.PreviousCaptaincy)
	if err != nil {
		return fmt.Errorf("encode checkpoint previous captaincy: %w", err)
	}

	query, args, err := qb.InsertModel("lineup_checkpoints", row, `ON CONFLICT (league_id, team_id)
DO UPDATE SET
    match_id = EXCLUDED.match_id,
    previous_lineup = EXCLUDED.previous_lineup,
    previous_transfers = EXCLUDED.previous_transfers,
    previous_captaincy = EXCLUDED.previous_captaincy,
    saved_at = EXCLUDED.saved_at`)
	if err != nil {
		return fmt.Errorf("build checkpoint upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

func checkpointFromRow(row checkpointTableModel) (lineup.Checkpoint, bool, error) {
	cp := lineup.Checkpoint{
		LeagueID: row.LeagueID,
		TeamID:   row.TeamID,
		MatchID:  row.MatchID,
		SavedAt:  row.SavedAt,
	}

	if len(row.PreviousLineup) > 0 {
		var prev lineup.Lineup
		if err := sonic.Unmarshal(row.PreviousLineup, &prev); err != nil {
			return lineup.Checkpoint{}, false, fmt.Errorf("decode checkpoint previous lineup: %w", err)
		}
		cp.Previous = &prev
	}
	if len(row.PreviousTransfers) > 0 {
		if err := sonic.Unmarshal(row.PreviousTransfers, &cp.PreviousTransfers); err != nil {
			return lineup.Checkpoint{}, false, fmt.Errorf("decode checkpoint previous transfers: %w", err)
		}
	}
	if len(row.PreviousCaptaincy) > 0 {
		if err := sonic.Unmarshal(row.PreviousCaptaincy, &cp.PreviousCaptaincy); err != nil {
			return lineup.Checkpoint{}, false, fmt.Errorf("decode checkpoint previous captaincy: %w", err)
		}
	}

	return cp, true, nil
}

func lineupFromRow(row lineupTableModel) lineup.Lineup {
	return lineup.Lineup{
		LeagueID:      row.LeagueID,
		TeamID:        row.TeamID,
		MatchID:       row.MatchID,
		MatchSeq:      row.MatchSeq,
		PlayerIDs:     append([]string(nil), row.PlayerIDs...),
		CaptainID:     row.CaptainID,
		ViceCaptainID: row.ViceCaptainID,
		Origin:        lineup.Origin(row.Origin),
		CreatedAt:     row.CreatedAt,
	}
}

func lineupBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("lineups")
}
