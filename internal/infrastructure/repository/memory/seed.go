package memory

import (
	"fmt"
	"time"

	"github.com/crickbase/fantasy-cricket/internal/domain/league"
	"github.com/crickbase/fantasy-cricket/internal/domain/match"
	"github.com/crickbase/fantasy-cricket/internal/domain/squad"
	"github.com/crickbase/fantasy-cricket/internal/domain/team"
)

const (
	LeagueIDPremierT20 = "pt20-2026"

	TeamIDStrikers = "pt20-strikers"
	TeamIDRoyals   = "pt20-royals"
	TeamIDTitans   = "pt20-titans"
	TeamIDFalcons  = "pt20-falcons"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:                     LeagueIDPremierT20,
			Name:                   "Premier T20 League",
			SquadSize:              14,
			TransferLimit:          20,
			CaptainChangeQuota:     4,
			ViceCaptainChangeQuota: 4,
			CreatedAt:              time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func SeedTeams() []team.Team {
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return []team.Team{
		{ID: TeamIDStrikers, LeagueID: LeagueIDPremierT20, Name: "Sunrise Strikers", CreatedAt: base},
		{ID: TeamIDRoyals, LeagueID: LeagueIDPremierT20, Name: "River Royals", CreatedAt: base.Add(1 * time.Hour)},
		{ID: TeamIDTitans, LeagueID: LeagueIDPremierT20, Name: "Harbour Titans", CreatedAt: base.Add(2 * time.Hour)},
		{ID: TeamIDFalcons, LeagueID: LeagueIDPremierT20, Name: "Desert Falcons", CreatedAt: base.Add(3 * time.Hour)},
	}
}

// SeedMatches anchors the fixture list around the current time: the first two
// matches have locked, the rest are upcoming.
func SeedMatches() []match.Match {
	now := time.Now().UTC()
	out := make([]match.Match, 0, 6)
	for seq := 1; seq <= 6; seq++ {
		startsAt := now.Add(time.Duration(seq-3) * 24 * time.Hour)
		out = append(out, match.Match{
			ID:        fmt.Sprintf("pt20-m%02d", seq),
			LeagueID:  LeagueIDPremierT20,
			Seq:       seq,
			StartsAt:  startsAt,
			Completed: seq <= 2,
		})
	}
	return out
}

func SeedSquads() []squad.Pool {
	return []squad.Pool{
		seedPool(TeamIDStrikers, "str", []string{
			"Arjun Mehta", "Kade Wilson", "Rohit Khanna", "Dillon Parks",
			"Sanjay Iyer", "Tom Eccles", "Farhan Qureshi", "Lewis Grant",
			"Vikram Sood", "Jed Morrow", "Imran Talib", "Casey Rudd",
			"Dev Anand", "Niall Byrne",
		}),
		seedPool(TeamIDRoyals, "roy", []string{
			"Pranav Joshi", "Sam Hollis", "Aditya Rao", "Ben Catterick",
			"Kunal Bhatt", "Ollie Freeman", "Zain Akhtar", "Marcus Bell",
			"Harsh Patel", "Reece Dalton", "Yusuf Karim", "Theo Marsh",
			"Nikhil Menon", "Ewan Price",
		}),
		seedPool(TeamIDTitans, "tit", []string{
			"Rahul Nair", "Jack Siddle", "Manish Tiwari", "Cole Warner",
			"Abhay Kulkarni", "Finn Healy", "Tariq Mahmood", "Gus Lennox",
			"Sidharth Menon", "Brett Oakes", "Wasim Duri", "Luke Stanton",
			"Ajay Verma", "Rory Caldwell",
		}),
		seedPool(TeamIDFalcons, "fal", []string{
			"Kiran Reddy", "Max Holloway", "Suresh Pillai", "Dan Mercer",
			"Anil Kapoor", "Joel Fenwick", "Rashid Omar", "Seth Granger",
			"Mohan Das", "Cody Albright", "Bilal Hanif", "Owen Tate",
			"Ravi Shankar", "Liam Docherty",
		}),
	}
}

// seedPool lays a 14-player squad out in a fixed role shape: two keepers,
// four batters, two batting allrounders, two bowling allrounders, four
// bowlers.
func seedPool(teamID, prefix string, names []string) squad.Pool {
	roles := []squad.Role{
		squad.RoleKeeper, squad.RoleKeeper,
		squad.RoleBatter, squad.RoleBatter, squad.RoleBatter, squad.RoleBatter,
		squad.RoleBattingAllrounder, squad.RoleBattingAllrounder,
		squad.RoleBowlingAllrounder, squad.RoleBowlingAllrounder,
		squad.RoleBowler, squad.RoleBowler, squad.RoleBowler, squad.RoleBowler,
	}

	players := make([]squad.Player, 0, len(roles))
	for i, role := range roles {
		players = append(players, squad.Player{
			PlayerID: fmt.Sprintf("%s-p%02d", prefix, i+1),
			Name:     names[i],
			Role:     role,
		})
	}

	return squad.Pool{
		LeagueID:  LeagueIDPremierT20,
		TeamID:    teamID,
		Players:   players,
		CreatedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}
}
