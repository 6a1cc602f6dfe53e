package transferService

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

type PhaseChange struct {
	Previous    Phase
	Current     Phase
	Snapshotted bool
	Rosters     int64
}

// GetConfig returns the season's config, creating the default one on first use.
func GetConfig(db *gorm.DB, seasonID uint) (models.FantasyConfig, error) {
	var cfg models.FantasyConfig
	err := db.Where("season_id = ?", seasonID).
		Attrs(models.NewFantasyConfig(seasonID)).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return cfg, fmt.Errorf("error fetching fantasy config: %v", err)
	}
	return cfg, nil
}

// snapshotColumn names the snapshot a phase freezes rosters into, if any.
func snapshotColumn(phase Phase) string {
	switch phase {
	case PhaseSwiss:
		return "swiss_lock_snapshot"
	case PhasePlayoffsOpen:
		return "playoff_snapshot"
	default:
		return ""
	}
}

// SetPhase moves the season to phase. Any phase may follow any other. Entering
// SWISS or PLAYOFFS_OPEN copies every roster into the matching snapshot in the
// same transaction and bumps each roster's version so pending roster writes
// fail their compare-and-swap.
func SetPhase(db *gorm.DB, seasonID uint, phase Phase) (PhaseChange, error) {
	phase, err := ParsePhase(string(phase))
	if err != nil {
		return PhaseChange{}, err
	}

	change := PhaseChange{Current: phase}
	err = db.Transaction(func(tx *gorm.DB) error {
		cfg, err := GetConfig(tx, seasonID)
		if err != nil {
			return err
		}
		change.Previous = Phase(cfg.Phase)

		err = tx.Model(&models.FantasyConfig{}).
			Where("id = ?", cfg.ID).
			Update("phase", string(phase)).Error
		if err != nil {
			return fmt.Errorf("error updating phase: %v", err)
		}

		column := snapshotColumn(phase)
		if column == "" {
			return nil
		}

		result := tx.Model(&models.FantasyPlayer{}).
			Where("season_id = ?", seasonID).
			Updates(map[string]interface{}{
				column:    gorm.Expr("team"),
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("error taking %s: %v", column, result.Error)
		}
		change.Snapshotted = true
		change.Rosters = result.RowsAffected
		return nil
	})
	if err != nil {
		return PhaseChange{}, err
	}

	log.WithFields(log.Fields{
		"season":   seasonID,
		"from":     change.Previous,
		"to":       change.Current,
		"snapshot": change.Snapshotted,
		"rosters":  change.Rosters,
	}).Info("phase changed")

	return change, nil
}
