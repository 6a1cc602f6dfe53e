package models

import "gorm.io/gorm"

// LeaguePlayer is a real league player that fantasy users can draft.
type LeaguePlayer struct {
	gorm.Model
	SeasonID    uint               `gorm:"uniqueIndex:idx_lp_season_team_name; uniqueIndex:idx_lp_season_external; not null"`
	TeamID      uint               `gorm:"uniqueIndex:idx_lp_season_team_name; not null"`
	Team        Team               `gorm:"foreignKey:TeamID"`
	Name        string             `gorm:"uniqueIndex:idx_lp_season_team_name; size:128; not null"`
	ExternalID  *int64             `gorm:"uniqueIndex:idx_lp_season_external"`
	Cost        int                `gorm:"not null; default:0"`
	Performance []PerformanceEntry `gorm:"foreignKey:LeaguePlayerID"`
}
