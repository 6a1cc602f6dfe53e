package models

import (
	"time"

	"gorm.io/gorm"
)

type Migration struct {
	gorm.Model
	Name       string `gorm:"uniqueIndex:idx_migration_name; size:255"`
	ExecutedAt time.Time
}

// All lists every table the bot owns, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Season{},
		&FantasyConfig{},
		&Team{},
		&LeaguePlayer{},
		&PerformanceEntry{},
		&Match{},
		&FantasyPlayer{},
		&ErrorLog{},
		&Migration{},
	}
}
