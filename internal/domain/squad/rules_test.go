package squad

import (
	"errors"
	"testing"
)

func testPool() Pool {
	players := []Player{
		{PlayerID: "p01", Name: "Keeper One", Role: RoleKeeper},
		{PlayerID: "p02", Name: "Keeper Two", Role: RoleKeeper},
		{PlayerID: "p03", Name: "Batter One", Role: RoleBatter},
		{PlayerID: "p04", Name: "Batter Two", Role: RoleBatter},
		{PlayerID: "p05", Name: "Batter Three", Role: RoleBatter},
		{PlayerID: "p06", Name: "Batter Four", Role: RoleBatter},
		{PlayerID: "p07", Name: "Bat AR One", Role: RoleBattingAllrounder},
		{PlayerID: "p08", Name: "Bat AR Two", Role: RoleBattingAllrounder},
		{PlayerID: "p09", Name: "Bowl AR One", Role: RoleBowlingAllrounder},
		{PlayerID: "p10", Name: "Bowl AR Two", Role: RoleBowlingAllrounder},
		{PlayerID: "p11", Name: "Bowler One", Role: RoleBowler},
		{PlayerID: "p12", Name: "Bowler Two", Role: RoleBowler},
		{PlayerID: "p13", Name: "Bowler Three", Role: RoleBowler},
		{PlayerID: "p14", Name: "Bowler Four", Role: RoleBowler},
	}
	return Pool{LeagueID: "lg", TeamID: "tm", Players: players}
}

func validSelection() Selection {
	return Selection{
		PlayerIDs: []string{
			"p01", "p03", "p04", "p05", "p07",
			"p09", "p10", "p11", "p12", "p13", "p14",
		},
		CaptainID:     "p03",
		ViceCaptainID: "p11",
	}
}

func TestValidateSelection_Valid(t *testing.T) {
	if err := ValidateSelection(testPool(), validSelection(), DefaultRules()); err != nil {
		t.Fatalf("expected valid selection, got %v", err)
	}
}

func TestValidateSelection_WrongSize(t *testing.T) {
	sel := validSelection()
	sel.PlayerIDs = sel.PlayerIDs[:10]

	err := ValidateSelection(testPool(), sel, DefaultRules())
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestValidateSelection_DuplicatePlayer(t *testing.T) {
	sel := validSelection()
	sel.PlayerIDs[1] = "p01"

	err := ValidateSelection(testPool(), sel, DefaultRules())
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestValidateSelection_PlayerOutsidePool(t *testing.T) {
	sel := validSelection()
	sel.PlayerIDs[10] = "stranger"

	err := ValidateSelection(testPool(), sel, DefaultRules())
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestValidateSelection_NoKeeper(t *testing.T) {
	sel := validSelection()
	sel.PlayerIDs[0] = "p06"

	err := ValidateSelection(testPool(), sel, DefaultRules())
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestValidateSelection_BowlingQuotaShort(t *testing.T) {
	// Three bowlers, one bowling allrounder, one batting allrounder:
	// 3*4 + 1*4 + 1*2 = 18 overs, short of the 20 over quota.
	sel := Selection{
		PlayerIDs: []string{
			"p01", "p02", "p03", "p04", "p05", "p06",
			"p07", "p09", "p11", "p12", "p13",
		},
		CaptainID:     "p03",
		ViceCaptainID: "p04",
	}

	err := ValidateSelection(testPool(), sel, DefaultRules())
	if !errors.Is(err, ErrInvalidComposition) {
		t.Fatalf("expected ErrInvalidComposition, got %v", err)
	}
}

func TestValidateSelection_CaptainRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Selection)
		wantErr bool
	}{
		{name: "captain equals vice", mutate: func(s *Selection) { s.ViceCaptainID = s.CaptainID }, wantErr: true},
		{name: "captain outside eleven", mutate: func(s *Selection) { s.CaptainID = "p02" }, wantErr: true},
		{name: "vice outside eleven", mutate: func(s *Selection) { s.ViceCaptainID = "p02" }, wantErr: true},
		{name: "missing captain", mutate: func(s *Selection) { s.CaptainID = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := validSelection()
			tt.mutate(&sel)

			err := ValidateSelection(testPool(), sel, DefaultRules())
			if tt.wantErr && !errors.Is(err, ErrInvalidComposition) {
				t.Fatalf("expected ErrInvalidComposition, got %v", err)
			}
		})
	}
}
