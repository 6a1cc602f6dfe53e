package services

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

const (
	migrationResummarize = "resummarize_performance"
	migrationDedupe      = "dedupe_fantasy_rosters"
)

// RunMigrations applies every data migration that has not run yet.
func RunMigrations(db *gorm.DB) error {
	migrations := []struct {
		name string
		run  func(*gorm.DB) (int, error)
	}{
		{migrationResummarize, resummarizePerformance},
		{migrationDedupe, dedupeRosters},
	}

	for _, m := range migrations {
		if err := runOnce(db, m.name, m.run); err != nil {
			return err
		}
	}
	return nil
}

func runOnce(db *gorm.DB, name string, run func(*gorm.DB) (int, error)) error {
	var existingMigration models.Migration
	result := db.Where("name = ?", name).First(&existingMigration)
	if result.Error == nil && existingMigration.ID != 0 {
		log.Printf("Migration %s has already been executed. Skipping.", name)
		return nil
	}
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking migration %s: %v", name, result.Error)
	}

	log.Printf("Starting migration %s...", name)
	changed, err := run(db)
	if err != nil {
		return fmt.Errorf("migration %s failed: %v", name, err)
	}

	migration := models.Migration{
		Name:       name,
		ExecutedAt: time.Now(),
	}
	if err := db.Create(&migration).Error; err != nil {
		return fmt.Errorf("error recording migration %s: %v", name, err)
	}

	log.WithFields(log.Fields{"migration": name, "changed": changed}).Info("migration finished")
	return nil
}

// resummarizePerformance recomputes round, set and weekly results from the
// stored games of every performance entry.
func resummarizePerformance(db *gorm.DB) (int, error) {
	changed := 0
	var entries []models.PerformanceEntry
	result := db.FindInBatches(&entries, 200, func(tx *gorm.DB, batch int) error {
		for _, entry := range entries {
			sets, wins, losses := models.Summarize(entry.Sets)
			fresh := entry
			fresh.Sets = sets
			fresh.Wins = wins
			fresh.Losses = losses
			if fresh.SameResults(entry) {
				continue
			}

			err := db.Model(&models.PerformanceEntry{}).
				Where("id = ?", entry.ID).
				Updates(map[string]interface{}{
					"sets":   datatypes.JSONSlice[models.SetResult](sets),
					"wins":   wins,
					"losses": losses,
				}).Error
			if err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, result.Error
}

// dedupeRosters drops repeated league player ids from rosters and snapshots.
func dedupeRosters(db *gorm.DB) (int, error) {
	var fantasyPlayers []models.FantasyPlayer
	if err := db.Order("id").Find(&fantasyPlayers).Error; err != nil {
		return 0, err
	}

	changed := 0
	for _, fp := range fantasyPlayers {
		team, dupTeam := unique(fp.Team)
		swiss, dupSwiss := unique(fp.SwissLockSnapshot)
		playoff, dupPlayoff := unique(fp.PlayoffSnapshot)
		if !dupTeam && !dupSwiss && !dupPlayoff {
			continue
		}

		err := db.Model(&models.FantasyPlayer{}).
			Where("id = ?", fp.ID).
			Updates(map[string]interface{}{
				"team":                team,
				"swiss_lock_snapshot": swiss,
				"playoff_snapshot":    playoff,
				"version":             gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return changed, err
		}
		log.Printf("Deduped roster for %s", fp.DiscordID)
		changed++
	}
	return changed, nil
}

func unique(ids datatypes.JSONSlice[uint]) (datatypes.JSONSlice[uint], bool) {
	seen := make(map[uint]bool, len(ids))
	out := make(datatypes.JSONSlice[uint], 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, len(out) != len(ids)
}
