package scoringService

import (
	"t2TrialsFantasyBot/models"
)

// IsCleanRound reports whether the player won the round without losing a
// game. Void games are neither wins nor losses, but a round needs at least one
// win to count.
func IsCleanRound(r models.RoundResult) bool {
	t := models.TallyRound(r)
	return t.Wins > 0 && t.Losses == 0
}

// IsWeekPositive is true when the week has at least one round and the player
// won more games than they lost in each of them.
func IsWeekPositive(entry *models.PerformanceEntry) bool {
	if entry == nil {
		return false
	}
	rounds := entry.Rounds()
	if len(rounds) == 0 {
		return false
	}
	for _, r := range rounds {
		t := models.TallyRound(r)
		if t.Wins <= t.Losses {
			return false
		}
	}
	return true
}

// IsPerfectWeek is true when the week has rounds and every one of them is clean.
func IsPerfectWeek(entry *models.PerformanceEntry) bool {
	if entry == nil {
		return false
	}
	rounds := entry.Rounds()
	if len(rounds) == 0 {
		return false
	}
	for _, r := range rounds {
		if !IsCleanRound(r) {
			return false
		}
	}
	return true
}

// WeekPoints scores one league player's week. perf is the player's whole
// performance history; the two weeks before week are read for streaks.
func WeekPoints(perf []models.PerformanceEntry, week int) int {
	entry := models.FindWeek(perf, week)
	if entry == nil {
		return 0
	}

	points := entry.Wins * WinPoints

	for _, r := range entry.Rounds() {
		if IsCleanRound(r) {
			points += BonusRoundSweep
		}
	}

	if IsWeekPositive(entry) {
		points += BonusWeekPositive
	}

	window := streakWindow(perf, week)
	if window == nil {
		return points
	}

	positive, perfect := true, true
	for _, w := range window {
		positive = positive && IsWeekPositive(w)
		perfect = perfect && IsPerfectWeek(w)
	}
	if positive {
		points += BonusStreakPositive
	}
	if perfect {
		points += BonusStreakPerfect
	}

	return points
}

// streakWindow returns the entries for week and the weeks before it, or nil
// when any of them is missing.
func streakWindow(perf []models.PerformanceEntry, week int) []*models.PerformanceEntry {
	window := make([]*models.PerformanceEntry, 0, streakLength)
	for w := week; w > week-streakLength; w-- {
		entry := models.FindWeek(perf, w)
		if entry == nil {
			return nil
		}
		window = append(window, entry)
	}
	return window
}

// RosterWeekPoints sums WeekPoints over the roster as it is now, so later
// roster changes move past weeks too.
func RosterWeekPoints(roster []models.LeaguePlayer, week int) int {
	total := 0
	for _, lp := range roster {
		total += WeekPoints(lp.Performance, week)
	}
	return total
}

// PlayerSeasonPoints is the sum of WeekPoints over every week the player has
// results for.
func PlayerSeasonPoints(perf []models.PerformanceEntry) int {
	total := 0
	seen := make(map[int]bool, len(perf))
	for _, entry := range perf {
		if seen[entry.Week] {
			continue
		}
		seen[entry.Week] = true
		total += WeekPoints(perf, entry.Week)
	}
	return total
}
