package models

import "gorm.io/gorm"

const (
	DefaultPlayoffSwapLimit = 2
	DefaultPhase            = "PRESEASON"
)

type FantasyConfig struct {
	gorm.Model
	SeasonID         uint   `gorm:"uniqueIndex:idx_config_season; not null"`
	Phase            string `gorm:"size:32; not null; default:PRESEASON"`
	CurrentWeek      int    `gorm:"not null; default:1"`
	PlayoffSwapLimit int    `gorm:"not null; default:2"`
}

// NewFantasyConfig returns the config a season starts with.
func NewFantasyConfig(seasonID uint) FantasyConfig {
	return FantasyConfig{
		SeasonID:         seasonID,
		Phase:            DefaultPhase,
		CurrentWeek:      1,
		PlayoffSwapLimit: DefaultPlayoffSwapLimit,
	}
}
