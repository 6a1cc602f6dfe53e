package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultMaxTeamSize = 5

type Season struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex:idx_season_name; size:128; not null"`
	IsActive    bool   `gorm:"default:false"`
	MaxTeamSize *int
	StartDate   *time.Time
	EndDate     *time.Time
}

// TeamSizeLimit falls back to DefaultMaxTeamSize when the season has no
// explicit limit configured.
func (s Season) TeamSizeLimit() int {
	if s.MaxTeamSize == nil || *s.MaxTeamSize <= 0 {
		return DefaultMaxTeamSize
	}
	return *s.MaxTeamSize
}
