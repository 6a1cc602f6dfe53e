package models

import "gorm.io/gorm"

// Team is a real T2 Trials team, not a fantasy roster.
type Team struct {
	gorm.Model
	SeasonID uint           `gorm:"uniqueIndex:idx_team_season_name; not null"`
	Name     string         `gorm:"uniqueIndex:idx_team_season_name; size:128; not null"`
	Players  []LeaguePlayer `gorm:"foreignKey:TeamID"`
}
