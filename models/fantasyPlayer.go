package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultWallet = 85

// FantasyPlayer is a Discord user's fantasy roster for one season. Team and
// the snapshots hold LeaguePlayer ids. Version is bumped on every roster write
// and checked by the next one.
type FantasyPlayer struct {
	gorm.Model
	SeasonID          uint    `gorm:"uniqueIndex:idx_fp_season_discord; not null"`
	DiscordID         string  `gorm:"uniqueIndex:idx_fp_season_discord; size:64; not null"`
	Username          *string `gorm:"size:128"`
	Team              datatypes.JSONSlice[uint]
	Wallet            int `gorm:"not null; default:85"`
	WeeklyPoints      datatypes.JSONSlice[int]
	TotalPoints       int `gorm:"not null; default:0"`
	SwissLockSnapshot datatypes.JSONSlice[uint]
	PlayoffSnapshot   datatypes.JSONSlice[uint]
	Version           uint `gorm:"not null; default:0"`
}

func (fp FantasyPlayer) HasPlayer(leaguePlayerID uint) bool {
	for _, id := range fp.Team {
		if id == leaguePlayerID {
			return true
		}
	}
	return false
}

// PointsForWeek reads the stored value; weeks never scored read as zero.
func (fp FantasyPlayer) PointsForWeek(week int) int {
	idx := week - 1
	if idx < 0 || idx >= len(fp.WeeklyPoints) {
		return 0
	}
	return fp.WeeklyPoints[idx]
}
