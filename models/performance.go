package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxWeek is the last week number a season can hold.
const MaxWeek = 52

// Side identifies which participant of a duel took it. For a player's
// performance entry A is always the player the entry belongs to.
type Side string

const (
	SideA    Side = "A"
	SideB    Side = "B"
	SideNone Side = "None"
)

type GameResult struct {
	GameNumber int   `json:"gameNumber"`
	PlayerA    int64 `json:"playerA"` // external id
	PlayerB    int64 `json:"playerB"` // external id
	Winner     Side  `json:"winner"`
}

type RoundResult struct {
	RoundNumber int          `json:"roundNumber"`
	Games       []GameResult `json:"games"`
	Winner      Side         `json:"winner"`
}

type SetResult struct {
	SetNumber int           `json:"setNumber"`
	Rounds    []RoundResult `json:"rounds"`
	Winner    Side          `json:"winner"`
}

// PerformanceEntry is one week of results for a league player. Wins and
// Losses are always the output of Summarize over Sets.
type PerformanceEntry struct {
	gorm.Model
	SeasonID       uint                          `gorm:"index; not null"`
	LeaguePlayerID uint                          `gorm:"uniqueIndex:idx_perf_player_week; not null"`
	Week           int                           `gorm:"uniqueIndex:idx_perf_player_week; not null"`
	Wins           int                           `gorm:"default:0"`
	Losses         int                           `gorm:"default:0"`
	Sets           datatypes.JSONSlice[SetResult]
}

// RoundTally counts decided games of a round from side A's point of view.
// Void games only show up in Games.
type RoundTally struct {
	Wins   int
	Losses int
	Games  int
}

func TallyRound(r RoundResult) RoundTally {
	t := RoundTally{Games: len(r.Games)}
	for _, g := range r.Games {
		switch g.Winner {
		case SideA:
			t.Wins++
		case SideB:
			t.Losses++
		}
	}
	return t
}

// Majority returns the side with strictly more wins, SideNone on a tie.
func Majority(a, b int) Side {
	switch {
	case a > b:
		return SideA
	case b > a:
		return SideB
	default:
		return SideNone
	}
}

// Summarize derives round, set and entry level results from the games in
// sets. It is the only place wins and losses are computed.
func Summarize(sets []SetResult) (out []SetResult, wins int, losses int) {
	out = make([]SetResult, len(sets))
	for si, set := range sets {
		rounds := make([]RoundResult, len(set.Rounds))
		roundsA, roundsB := 0, 0
		for ri, round := range set.Rounds {
			tally := TallyRound(round)
			wins += tally.Wins
			losses += tally.Losses

			round.Winner = Majority(tally.Wins, tally.Losses)
			switch round.Winner {
			case SideA:
				roundsA++
			case SideB:
				roundsB++
			}
			rounds[ri] = round
		}
		set.Rounds = rounds
		set.Winner = Majority(roundsA, roundsB)
		out[si] = set
	}
	return out, wins, losses
}

// Rounds flattens every round of the entry in set order.
func (p PerformanceEntry) Rounds() []RoundResult {
	var rounds []RoundResult
	for _, set := range p.Sets {
		rounds = append(rounds, set.Rounds...)
	}
	return rounds
}

// SameResults reports whether two entries hold the same week of results,
// ignoring storage metadata.
func (p PerformanceEntry) SameResults(other PerformanceEntry) bool {
	if p.Week != other.Week || p.Wins != other.Wins || p.Losses != other.Losses {
		return false
	}
	if len(p.Sets) != len(other.Sets) {
		return false
	}
	for i := range p.Sets {
		a, b := p.Sets[i], other.Sets[i]
		if a.SetNumber != b.SetNumber || a.Winner != b.Winner || len(a.Rounds) != len(b.Rounds) {
			return false
		}
		for j := range a.Rounds {
			ra, rb := a.Rounds[j], b.Rounds[j]
			if ra.RoundNumber != rb.RoundNumber || ra.Winner != rb.Winner || len(ra.Games) != len(rb.Games) {
				return false
			}
			for k := range ra.Games {
				if ra.Games[k] != rb.Games[k] {
					return false
				}
			}
		}
	}
	return true
}

// FindWeek returns the entry for week, or nil when the player did not play.
func FindWeek(entries []PerformanceEntry, week int) *PerformanceEntry {
	if week < 1 {
		return nil
	}
	for i := range entries {
		if entries[i].Week == week {
			return &entries[i]
		}
	}
	return nil
}
