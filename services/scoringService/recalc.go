package scoringService

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

var ErrInvalidWeek = fmt.Errorf("week must be between 1 and %d", models.MaxWeek)

// CalculateScoresForWeek stores week's roster points for every fantasy player
// of the season and refreshes their totals. Rows whose stored figures already
// match are left alone. It returns how many rows were written.
func CalculateScoresForWeek(db *gorm.DB, seasonID uint, week int) (int, error) {
	if week < 1 || week > models.MaxWeek {
		return 0, fmt.Errorf("calculate week %d: %w", week, ErrInvalidWeek)
	}

	var fantasyPlayers []models.FantasyPlayer
	if err := db.Where("season_id = ?", seasonID).Order("id").Find(&fantasyPlayers).Error; err != nil {
		return 0, fmt.Errorf("error fetching fantasy players: %v", err)
	}
	if len(fantasyPlayers) == 0 {
		return 0, nil
	}

	pool, err := loadRosterPool(db, seasonID, fantasyPlayers)
	if err != nil {
		return 0, err
	}

	modified := 0
	for _, fp := range fantasyPlayers {
		points := RosterWeekPoints(rosterOf(fp, pool), week)

		// Histories longer than a season are cut back to MaxWeek weeks.
		weekly := make([]int, min(len(fp.WeeklyPoints), models.MaxWeek))
		copy(weekly, fp.WeeklyPoints)
		for len(weekly) < week {
			weekly = append(weekly, 0)
		}
		prev := weekly[week-1]
		weekly[week-1] = points

		total := 0
		for _, v := range weekly {
			total += v
		}

		if prev == points && len(weekly) == len(fp.WeeklyPoints) && total == fp.TotalPoints {
			continue
		}

		err := db.Model(&models.FantasyPlayer{}).
			Where("id = ?", fp.ID).
			Updates(map[string]interface{}{
				"weekly_points": datatypes.JSONSlice[int](weekly),
				"total_points":  total,
			}).Error
		if err != nil {
			return modified, fmt.Errorf("error saving points for %s: %v", fp.DiscordID, err)
		}
		modified++
	}

	log.WithFields(log.Fields{
		"season":   seasonID,
		"week":     week,
		"modified": modified,
	}).Info("weekly scores calculated")

	return modified, nil
}

// RecalculateSeason rescores every week up to the latest imported week or the
// longest stored points history, whichever is later.
func RecalculateSeason(db *gorm.DB, seasonID uint) (int, error) {
	var maxWeek int
	err := db.Model(&models.PerformanceEntry{}).
		Where("season_id = ?", seasonID).
		Select("COALESCE(MAX(week), 0)").
		Scan(&maxWeek).Error
	if err != nil {
		return 0, fmt.Errorf("error finding latest week: %v", err)
	}

	var fantasyPlayers []models.FantasyPlayer
	if err := db.Select("id", "weekly_points").Where("season_id = ?", seasonID).Find(&fantasyPlayers).Error; err != nil {
		return 0, fmt.Errorf("error fetching fantasy players: %v", err)
	}
	for _, fp := range fantasyPlayers {
		if len(fp.WeeklyPoints) > maxWeek {
			maxWeek = len(fp.WeeklyPoints)
		}
	}

	maxWeek = min(maxWeek, models.MaxWeek)

	modified := 0
	for week := 1; week <= maxWeek; week++ {
		n, err := CalculateScoresForWeek(db, seasonID, week)
		modified += n
		if err != nil {
			return modified, err
		}
	}
	return modified, nil
}

// loadRosterPool fetches every league player referenced by a roster along
// with their performance history.
func loadRosterPool(db *gorm.DB, seasonID uint, fantasyPlayers []models.FantasyPlayer) (map[uint]models.LeaguePlayer, error) {
	var ids []uint
	seen := make(map[uint]bool)
	for _, fp := range fantasyPlayers {
		for _, id := range fp.Team {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	pool := make(map[uint]models.LeaguePlayer, len(ids))
	if len(ids) == 0 {
		return pool, nil
	}

	var players []models.LeaguePlayer
	err := db.Preload("Performance").
		Where("season_id = ? AND id IN ?", seasonID, ids).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching rostered players: %v", err)
	}
	for _, lp := range players {
		pool[lp.ID] = lp
	}
	return pool, nil
}

// rosterOf resolves a roster's ids, silently skipping ones that no longer exist.
func rosterOf(fp models.FantasyPlayer, pool map[uint]models.LeaguePlayer) []models.LeaguePlayer {
	roster := make([]models.LeaguePlayer, 0, len(fp.Team))
	for _, id := range fp.Team {
		if lp, ok := pool[id]; ok {
			roster = append(roster, lp)
		}
	}
	return roster
}
