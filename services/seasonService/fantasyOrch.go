package seasonService

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/transferService"
)

var (
	ErrAlreadyRegistered = errors.New("already registered in this season")
	ErrNotRegistered     = errors.New("not registered in this season")
	ErrInvalidWallet     = errors.New("wallet cannot be negative")
)

const maxPullAttempts = 3

func GetFantasyPlayer(db *gorm.DB, seasonID uint, discordID string) (*models.FantasyPlayer, error) {
	var fp models.FantasyPlayer
	err := db.Where("season_id = ? AND discord_id = ?", seasonID, discordID).First(&fp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching fantasy player: %v", err)
	}
	return &fp, nil
}

// JoinLeague registers a Discord user in the season with the starting wallet.
func JoinLeague(db *gorm.DB, seasonID uint, discordID string, username string) (*models.FantasyPlayer, error) {
	if _, err := GetFantasyPlayer(db, seasonID, discordID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrNotRegistered) {
		return nil, err
	}

	fp := models.FantasyPlayer{
		SeasonID:  seasonID,
		DiscordID: discordID,
		Wallet:    models.DefaultWallet,
	}
	if username != "" {
		fp.Username = &username
	}
	if err := db.Create(&fp).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("error registering user: %v", err)
	}
	return &fp, nil
}

// SetWallet overwrites one user's wallet. The version bump makes any roster
// write that read the old wallet retry.
func SetWallet(db *gorm.DB, seasonID uint, discordID string, amount int) (*models.FantasyPlayer, error) {
	if amount < 0 {
		return nil, ErrInvalidWallet
	}

	res := db.Model(&models.FantasyPlayer{}).
		Where("season_id = ? AND discord_id = ?", seasonID, discordID).
		Updates(map[string]interface{}{
			"wallet":  amount,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("error setting wallet: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotRegistered
	}
	return GetFantasyPlayer(db, seasonID, discordID)
}

// SetAllWallets overwrites every wallet in the season and returns how many
// users were touched.
func SetAllWallets(db *gorm.DB, seasonID uint, amount int) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidWallet
	}

	res := db.Model(&models.FantasyPlayer{}).
		Where("season_id = ?", seasonID).
		Updates(map[string]interface{}{
			"wallet":  amount,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("error setting wallets: %v", res.Error)
	}
	return res.RowsAffected, nil
}

type DeleteResult struct {
	Player         models.LeaguePlayer
	RostersUpdated int
	Refunded       int
}

// DeleteLeaguePlayer removes a league player and every reference to it. Users
// holding the player on their live roster get its cost back; snapshots are
// only pulled.
func DeleteLeaguePlayer(db *gorm.DB, seasonID uint, name string, teamName string) (DeleteResult, error) {
	var result DeleteResult

	lp, err := transferService.ResolveLeaguePlayer(db, seasonID, name, teamName)
	if err != nil {
		return result, err
	}
	result.Player = *lp

	err = db.Transaction(func(tx *gorm.DB) error {
		var holders []models.FantasyPlayer
		if err := tx.Where("season_id = ?", seasonID).Find(&holders).Error; err != nil {
			return err
		}

		for _, fp := range holders {
			pulled, refunded, err := pullReferences(tx, fp, lp.ID, lp.Cost)
			if err != nil {
				return err
			}
			if pulled {
				result.RostersUpdated++
			}
			if refunded {
				result.Refunded++
			}
		}

		if err := tx.Unscoped().Where("league_player_id = ?", lp.ID).Delete(&models.PerformanceEntry{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.LeaguePlayer{}, lp.ID).Error
	})
	if err != nil {
		return result, fmt.Errorf("error deleting player: %v", err)
	}

	log.WithFields(log.Fields{
		"season":  seasonID,
		"player":  lp.Name,
		"rosters": result.RostersUpdated,
	}).Info("league player deleted")

	return result, nil
}

// pullReferences strips id from fp's roster and snapshots under the roster's
// compare-and-swap, re-reading when another write got there first.
func pullReferences(tx *gorm.DB, fp models.FantasyPlayer, id uint, cost int) (pulled bool, refunded bool, err error) {
	for attempt := 0; attempt < maxPullAttempts; attempt++ {
		team, inTeam := without(fp.Team, id)
		swiss, inSwiss := without(fp.SwissLockSnapshot, id)
		playoff, inPlayoff := without(fp.PlayoffSnapshot, id)
		if !inTeam && !inSwiss && !inPlayoff {
			return false, false, nil
		}

		wallet := fp.Wallet
		if inTeam && cost > 0 {
			wallet += cost
		}

		res := tx.Model(&models.FantasyPlayer{}).
			Where("id = ? AND version = ?", fp.ID, fp.Version).
			Updates(map[string]interface{}{
				"team":                team,
				"swiss_lock_snapshot": swiss,
				"playoff_snapshot":    playoff,
				"wallet":              wallet,
				"version":             gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return false, false, res.Error
		}
		if res.RowsAffected == 1 {
			return true, inTeam, nil
		}

		if err := tx.First(&fp, fp.ID).Error; err != nil {
			return false, false, err
		}
	}
	return false, false, fmt.Errorf("roster for %s kept changing", fp.DiscordID)
}

func without(ids datatypes.JSONSlice[uint], id uint) (datatypes.JSONSlice[uint], bool) {
	out := make(datatypes.JSONSlice[uint], 0, len(ids))
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	return out, found
}

// RosterPlayers loads the league players behind a roster in roster order.
// Ids that no longer resolve are dropped.
func RosterPlayers(db *gorm.DB, seasonID uint, ids []uint) ([]models.LeaguePlayer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var players []models.LeaguePlayer
	err := db.Preload("Team").Preload("Performance").
		Where("season_id = ? AND id IN ?", seasonID, ids).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching roster: %v", err)
	}

	byID := make(map[uint]models.LeaguePlayer, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	ordered := make([]models.LeaguePlayer, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// LeaguePlayerStats resolves a league player by name with its team and
// performance history loaded.
func LeaguePlayerStats(db *gorm.DB, seasonID uint, name string, teamName string) (*models.LeaguePlayer, error) {
	lp, err := transferService.ResolveLeaguePlayer(db, seasonID, name, teamName)
	if err != nil {
		return nil, err
	}

	var full models.LeaguePlayer
	err = db.Preload("Team").
		Preload("Performance", func(tx *gorm.DB) *gorm.DB { return tx.Order("week") }).
		First(&full, lp.ID).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching player stats: %v", err)
	}
	return &full, nil
}

const MaxSuggestions = 25

// SearchLeaguePlayers returns the season's league players whose name starts
// with prefix, for command autocomplete.
func SearchLeaguePlayers(db *gorm.DB, seasonID uint, prefix string, limit int) ([]models.LeaguePlayer, error) {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	var players []models.LeaguePlayer
	err := db.Preload("Team").
		Where("season_id = ? AND LOWER(name) LIKE ? ESCAPE '!'", seasonID, likePrefix(prefix)).
		Order("name").Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("error searching players: %v", err)
	}
	return players, nil
}

func SearchTeams(db *gorm.DB, seasonID uint, prefix string, limit int) ([]models.Team, error) {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	var teams []models.Team
	err := db.Where("season_id = ? AND LOWER(name) LIKE ? ESCAPE '!'", seasonID, likePrefix(prefix)).
		Order("name").Limit(limit).
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("error searching teams: %v", err)
	}
	return teams, nil
}

func likePrefix(prefix string) string {
	escaped := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![").Replace(strings.ToLower(strings.TrimSpace(prefix)))
	return escaped + "%"
}
