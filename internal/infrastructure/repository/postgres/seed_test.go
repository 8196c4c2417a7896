package postgres

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var conflictTargetPattern = regexp.MustCompile(`ON CONFLICT \(([^)]+)\)`)

// Postgres validates ON CONFLICT targets against unique indexes at plan
// time, so a target that is not the table's primary key fails every seed
// run regardless of data. Cross-check each seed statement against the
// schema the migrations actually create.
func TestBootstrapSeedConflictTargetsMatchPrimaryKeys(t *testing.T) {
	migration, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "db", "migrations", "0001_init.up.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}

	cases := []struct {
		table string
		stmt  string
	}{
		{table: "leagues", stmt: seedLeagueInsertSQL},
		{table: "teams", stmt: seedTeamInsertSQL},
		{table: "matches", stmt: seedMatchInsertSQL},
		{table: "squad_players", stmt: seedSquadPlayerInsertSQL},
	}

	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			m := conflictTargetPattern.FindStringSubmatch(tc.stmt)
			if m == nil {
				t.Fatalf("seed statement for %s has no conflict target", tc.table)
			}
			got := normalizeColumns(m[1])
			want := primaryKeyColumns(t, string(migration), tc.table)
			if got != want {
				t.Fatalf("seed conflict target (%s) does not match %s primary key (%s)", got, tc.table, want)
			}
		})
	}
}

func primaryKeyColumns(t *testing.T, migration, table string) string {
	t.Helper()

	tablePattern := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \((.+?)\n\);`)
	m := tablePattern.FindStringSubmatch(migration)
	if m == nil {
		t.Fatalf("table %s not declared in init migration", table)
	}
	body := m[1]

	if pk := regexp.MustCompile(`PRIMARY KEY \(([^)]+)\)`).FindStringSubmatch(body); pk != nil {
		return normalizeColumns(pk[1])
	}
	if inline := regexp.MustCompile(`(\w+) \w+ PRIMARY KEY`).FindStringSubmatch(body); inline != nil {
		return inline[1]
	}
	t.Fatalf("no primary key declared for %s", table)
	return ""
}

func normalizeColumns(list string) string {
	cols := strings.Split(list, ",")
	for i, col := range cols {
		cols[i] = strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}
