package scoringService

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

var ErrNotRegistered = errors.New("user is not registered in this season")

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 25
)

// Score is the stored view of a fantasy player's points. WeekPoints is only
// meaningful when Week is set.
type Score struct {
	DiscordID    string
	Username     *string
	Week         *int
	WeekPoints   int
	TotalPoints  int
	WeeklyPoints []int
}

// GetScore reads stored points; it never recomputes them.
func GetScore(db *gorm.DB, seasonID uint, discordID string, week *int) (*Score, error) {
	if week != nil && (*week < 1 || *week > models.MaxWeek) {
		return nil, fmt.Errorf("score for week %d: %w", *week, ErrInvalidWeek)
	}

	var fp models.FantasyPlayer
	err := db.Where("season_id = ? AND discord_id = ?", seasonID, discordID).First(&fp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching fantasy player: %v", err)
	}

	score := &Score{
		DiscordID:    fp.DiscordID,
		Username:     fp.Username,
		Week:         week,
		TotalPoints:  fp.TotalPoints,
		WeeklyPoints: append([]int(nil), fp.WeeklyPoints...),
	}
	if week != nil {
		score.WeekPoints = fp.PointsForWeek(*week)
	}
	return score, nil
}

// Leaderboard returns the season's top fantasy players by stored total.
func Leaderboard(db *gorm.DB, seasonID uint, limit int) ([]models.FantasyPlayer, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	var players []models.FantasyPlayer
	err := db.Where("season_id = ?", seasonID).
		Order("total_points desc").
		Order("id").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching leaderboard: %v", err)
	}
	return players, nil
}

// PlayerStanding is a league player's record and fantasy points, either for
// one week or the whole season.
type PlayerStanding struct {
	Player models.LeaguePlayer
	Wins   int
	Losses int
	Points int
}

// PlayerLeaderboard ranks the season's league players by the points they
// would earn a roster, then by fewest losses, then by name. With week set only
// that week counts, though streak bonuses still look at the weeks before it.
func PlayerLeaderboard(db *gorm.DB, seasonID uint, week *int, limit int) ([]PlayerStanding, error) {
	if week != nil && (*week < 1 || *week > models.MaxWeek) {
		return nil, fmt.Errorf("player leaderboard for week %d: %w", *week, ErrInvalidWeek)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	var players []models.LeaguePlayer
	err := db.Preload("Team").Preload("Performance").
		Where("season_id = ?", seasonID).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching league players: %v", err)
	}

	standings := make([]PlayerStanding, 0, len(players))
	for _, lp := range players {
		standing := PlayerStanding{Player: lp}
		if week != nil {
			if entry := models.FindWeek(lp.Performance, *week); entry != nil {
				standing.Wins = entry.Wins
				standing.Losses = entry.Losses
			}
			standing.Points = WeekPoints(lp.Performance, *week)
		} else {
			for _, entry := range lp.Performance {
				standing.Wins += entry.Wins
				standing.Losses += entry.Losses
			}
			standing.Points = PlayerSeasonPoints(lp.Performance)
		}
		standings = append(standings, standing)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return strings.ToLower(a.Player.Name) < strings.ToLower(b.Player.Name)
	})

	if len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, nil
}
