package seasonService

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
)

var (
	ErrNoActiveSeason  = errors.New("no active season set")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrDuplicate       = errors.New("already exists")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidTeamSize = errors.New("max team size must be 1 or greater")
)

func GetActiveSeason(db *gorm.DB) (*models.Season, error) {
	var season models.Season
	err := db.Where("is_active = ?", true).Order("id desc").First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSeason
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching active season: %v", err)
	}
	return &season, nil
}

func GetSeasonByName(db *gorm.DB, name string) (*models.Season, error) {
	var season models.Season
	err := db.Where("name = ?", strings.TrimSpace(name)).First(&season).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching season: %v", err)
	}
	return &season, nil
}

type NewSeasonResult struct {
	Season      models.Season
	Config      models.FantasyConfig
	UsersCopied int
}

// NewSeason creates and activates a season. Everyone who has ever joined is
// carried over with an empty roster and a fresh wallet.
func NewSeason(db *gorm.DB, name string, maxTeamSize *int) (NewSeasonResult, error) {
	var result NewSeasonResult

	name = strings.TrimSpace(name)
	if name == "" {
		return result, ErrInvalidName
	}
	if maxTeamSize != nil && *maxTeamSize < 1 {
		return result, ErrInvalidTeamSize
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Season{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("season %s %w", name, ErrDuplicate)
		}

		if err := deactivateAll(tx); err != nil {
			return err
		}

		result.Season = models.Season{Name: name, IsActive: true, MaxTeamSize: maxTeamSize}
		if err := tx.Create(&result.Season).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("season %s %w", name, ErrDuplicate)
			}
			return err
		}

		result.Config = models.NewFantasyConfig(result.Season.ID)
		if err := tx.Create(&result.Config).Error; err != nil {
			return err
		}

		users, err := knownUsers(tx, result.Season.ID)
		if err != nil {
			return err
		}
		if len(users) > 0 {
			if err := tx.CreateInBatches(users, 100).Error; err != nil {
				return err
			}
		}
		result.UsersCopied = len(users)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return result, err
		}
		return result, fmt.Errorf("error creating season: %v", err)
	}

	log.WithFields(log.Fields{
		"season": result.Season.Name,
		"users":  result.UsersCopied,
	}).Info("season created")

	return result, nil
}

// knownUsers builds a fresh fantasy profile in seasonID for every Discord user
// registered in any other season, keeping their latest username.
func knownUsers(tx *gorm.DB, seasonID uint) ([]models.FantasyPlayer, error) {
	var previous []models.FantasyPlayer
	err := tx.Select("discord_id", "username", "id").
		Where("season_id <> ?", seasonID).
		Order("id desc").
		Find(&previous).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var users []models.FantasyPlayer
	for _, fp := range previous {
		if seen[fp.DiscordID] {
			continue
		}
		seen[fp.DiscordID] = true
		users = append(users, models.FantasyPlayer{
			SeasonID:  seasonID,
			DiscordID: fp.DiscordID,
			Username:  fp.Username,
			Wallet:    models.DefaultWallet,
		})
	}
	return users, nil
}

func deactivateAll(tx *gorm.DB) error {
	return tx.Model(&models.Season{}).Where("is_active = ?", true).Update("is_active", false).Error
}

// ActivateSeason makes the named season the only active one and makes sure it
// has a config.
func ActivateSeason(db *gorm.DB, name string) (*models.Season, models.FantasyConfig, error) {
	var cfg models.FantasyConfig
	season, err := GetSeasonByName(db, name)
	if err != nil {
		return nil, cfg, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := deactivateAll(tx); err != nil {
			return err
		}
		if err := tx.Model(season).Update("is_active", true).Error; err != nil {
			return err
		}
		return tx.Where("season_id = ?", season.ID).
			Attrs(models.NewFantasyConfig(season.ID)).
			FirstOrCreate(&cfg).Error
	})
	if err != nil {
		return nil, cfg, fmt.Errorf("error activating season: %v", err)
	}

	season.IsActive = true
	return season, cfg, nil
}

// DeleteSeason removes a season and everything scoped to it.
func DeleteSeason(db *gorm.DB, name string) error {
	season, err := GetSeasonByName(db, name)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		scoped := []interface{}{
			&models.PerformanceEntry{},
			&models.Match{},
			&models.FantasyPlayer{},
			&models.LeaguePlayer{},
			&models.Team{},
			&models.FantasyConfig{},
		}
		for _, model := range scoped {
			if err := tx.Unscoped().Where("season_id = ?", season.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(season).Error
	})
	if err != nil {
		return fmt.Errorf("error deleting season: %v", err)
	}

	log.WithField("season", season.Name).Info("season deleted")
	return nil
}
