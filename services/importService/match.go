package importService

import (
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

var (
	ErrInvalidWeek = fmt.Errorf("week must be between 1 and %d", models.MaxWeek)
	ErrTeamCount   = errors.New("expected exactly 2 teams")
)

type MatchResult struct {
	Match    models.Match
	TeamA    models.Team
	TeamB    models.Team
	Replaced bool
}

type resolvedPlayer struct {
	raw    StatsPlayer
	player models.LeaguePlayer
	week   StatsWeek
}

// BuildMatchFromStats assembles the team-level match for one week from the
// per-player stats export. Every resolved player must belong to one of two
// teams. An existing match for the same pairing and week is replaced.
func BuildMatchFromStats(db *gorm.DB, seasonID uint, week int, data []byte) (MatchResult, error) {
	var result MatchResult
	if week < 1 || week > models.MaxWeek {
		return result, fmt.Errorf("build match for week %d: %w", week, ErrInvalidWeek)
	}

	records, err := splitRecords(data)
	if err != nil {
		return result, err
	}

	byTeam := make(map[uint][]resolvedPlayer)
	for _, raw := range records {
		p, err := decodeRecord(raw)
		if err != nil || p.Name == "" {
			continue
		}
		w := p.FindWeek(week)
		if w == nil {
			continue
		}

		var team *models.Team
		if p.TeamName != "" {
			if team, err = findTeam(db, seasonID, p.TeamName); err != nil {
				return result, fmt.Errorf("error fetching team: %v", err)
			}
		}
		lp, err := matchPlayer(db, seasonID, p, team)
		if err != nil {
			return result, fmt.Errorf("error fetching player: %v", err)
		}
		if lp == nil {
			continue
		}
		byTeam[lp.TeamID] = append(byTeam[lp.TeamID], resolvedPlayer{raw: p, player: *lp, week: *w})
	}

	if len(byTeam) != 2 {
		return result, fmt.Errorf("%w in week %d, found %d", ErrTeamCount, week, len(byTeam))
	}

	teamIDs := make([]uint, 0, 2)
	for id := range byTeam {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })
	sideA, sideB := byTeam[teamIDs[0]], byTeam[teamIDs[1]]

	if err := db.First(&result.TeamA, teamIDs[0]).Error; err != nil {
		return result, fmt.Errorf("error fetching team: %v", err)
	}
	if err := db.First(&result.TeamB, teamIDs[1]).Error; err != nil {
		return result, fmt.Errorf("error fetching team: %v", err)
	}

	sets, _, _ := models.Summarize(teamGames(sideA, sideB))
	match := models.Match{
		SeasonID:       seasonID,
		Week:           week,
		TeamAID:        teamIDs[0],
		TeamBID:        teamIDs[1],
		Sets:           sets,
		Winner:         matchWinner(sets),
		PlayersResults: playerResults(append(append([]resolvedPlayer{}, sideA...), sideB...)),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing models.Match
		err := tx.Unscoped().
			Where("season_id = ? AND week = ? AND team_a_id = ? AND team_b_id = ?", seasonID, week, match.TeamAID, match.TeamBID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&match).Error
		}
		if err != nil {
			return err
		}

		result.Replaced = true
		match.ID = existing.ID
		match.CreatedAt = existing.CreatedAt
		return tx.Unscoped().Save(&match).Error
	})
	if err != nil {
		return result, fmt.Errorf("error saving match: %v", err)
	}

	result.Match = match
	log.WithFields(log.Fields{
		"season":   seasonID,
		"week":     week,
		"teamA":    result.TeamA.Name,
		"teamB":    result.TeamB.Name,
		"winner":   match.Winner,
		"replaced": result.Replaced,
	}).Info("match built from stats")

	return result, nil
}

// teamGames collects every duel of the week from team A's side. Team A's
// records are used as is; team B records only add duels against opponents
// that team A's records do not already cover.
func teamGames(sideA, sideB []resolvedPlayer) []models.SetResult {
	covered := make(map[int64]bool)
	for _, mp := range sideA {
		if mp.raw.ID.Valid {
			covered[mp.raw.ID.Value] = true
		}
	}

	grouped := make(map[roundKey][]models.GameResult)
	add := func(set, round int, game models.GameResult) {
		if round < 1 {
			return
		}
		if set < 1 {
			set = 1
		}
		key := roundKey{set: set, round: round}
		game.GameNumber = len(grouped[key]) + 1
		grouped[key] = append(grouped[key], game)
	}

	for _, mp := range sideA {
		for _, g := range mp.week.Games {
			add(g.Set.IntOr(1), g.Round.IntOr(0), models.GameResult{
				PlayerA: mp.raw.ID.Value,
				PlayerB: g.OpponentID.Value,
				Winner:  gameWinner(mp.raw.ID, g.OpponentID, g.WinnerID),
			})
		}
	}

	for _, mp := range sideB {
		for _, g := range mp.week.Games {
			if g.OpponentID.Valid && covered[g.OpponentID.Value] {
				continue
			}
			// Seen from team B, so the sides swap.
			add(g.Set.IntOr(1), g.Round.IntOr(0), models.GameResult{
				PlayerA: g.OpponentID.Value,
				PlayerB: mp.raw.ID.Value,
				Winner:  gameWinner(g.OpponentID, mp.raw.ID, g.WinnerID),
			})
		}
	}

	return assemble(grouped)
}

// matchWinner is the side that took more sets.
func matchWinner(sets []models.SetResult) models.Side {
	a, b := 0, 0
	for _, s := range sets {
		switch s.Winner {
		case models.SideA:
			a++
		case models.SideB:
			b++
		}
	}
	return models.Majority(a, b)
}

func playerResults(players []resolvedPlayer) []models.PlayerResult {
	results := make([]models.PlayerResult, 0, len(players))
	for _, mp := range players {
		wins, losses := 0, 0
		for _, e := range BuildPerformance(mp.raw.ID, []StatsWeek{mp.week}) {
			wins += e.Wins
			losses += e.Losses
		}
		results = append(results, models.PlayerResult{
			LeaguePlayerID: mp.player.ID,
			Wins:           wins,
			Losses:         losses,
		})
	}
	return results
}
