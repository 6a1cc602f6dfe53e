package importService

import (
	"sort"

	"t2TrialsFantasyBot/models"
)

type roundKey struct {
	set   int
	round int
}

// BuildPerformance turns one player's raw weeks into performance entries,
// sorted by week. Weeks outside 1..MaxWeek are skipped. Games missing a set
// go to set 1; games without a valid round are dropped. A week listed twice keeps the later listing.
func BuildPerformance(subject FlexInt, weeks []StatsWeek) []models.PerformanceEntry {
	byWeek := make(map[int]models.PerformanceEntry)

	for _, w := range weeks {
		weekNumber := w.WeekNumber.IntOr(0)
		if weekNumber < 1 || weekNumber > models.MaxWeek || len(w.Games) == 0 {
			continue
		}

		sets := groupGames(subject, w.Games)
		if len(sets) == 0 {
			continue
		}

		summarized, wins, losses := models.Summarize(sets)
		byWeek[weekNumber] = models.PerformanceEntry{
			Week:   weekNumber,
			Wins:   wins,
			Losses: losses,
			Sets:   summarized,
		}
	}

	entries := make([]models.PerformanceEntry, 0, len(byWeek))
	for _, e := range byWeek {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Week < entries[j].Week })
	return entries
}

// groupGames buckets games by set and round, numbering games within a round
// in input order. Winners are from subject's side.
func groupGames(subject FlexInt, games []StatsGame) []models.SetResult {
	grouped := make(map[roundKey][]models.GameResult)
	for _, g := range games {
		round := g.Round.IntOr(0)
		if round < 1 {
			continue
		}
		set := g.Set.IntOr(1)
		if set < 1 {
			set = 1
		}

		key := roundKey{set: set, round: round}
		grouped[key] = append(grouped[key], models.GameResult{
			GameNumber: len(grouped[key]) + 1,
			PlayerA:    subject.Value,
			PlayerB:    g.OpponentID.Value,
			Winner:     gameWinner(subject, g.OpponentID, g.WinnerID),
		})
	}
	return assemble(grouped)
}

func gameWinner(subject, opponent, winner FlexInt) models.Side {
	switch {
	case !winner.Valid:
		return models.SideNone
	case subject.Valid && winner.Value == subject.Value:
		return models.SideA
	case opponent.Valid && winner.Value == opponent.Value:
		return models.SideB
	default:
		return models.SideNone
	}
}

// assemble orders grouped games into sets and rounds by number.
func assemble(grouped map[roundKey][]models.GameResult) []models.SetResult {
	keys := make([]roundKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].set != keys[j].set {
			return keys[i].set < keys[j].set
		}
		return keys[i].round < keys[j].round
	})

	var sets []models.SetResult
	for _, k := range keys {
		if len(sets) == 0 || sets[len(sets)-1].SetNumber != k.set {
			sets = append(sets, models.SetResult{SetNumber: k.set})
		}
		current := &sets[len(sets)-1]
		current.Rounds = append(current.Rounds, models.RoundResult{
			RoundNumber: k.round,
			Games:       grouped[k],
		})
	}
	return sets
}
