package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlayerResult struct {
	LeaguePlayerID uint `json:"player"`
	Wins           int  `json:"wins"`
	Losses         int  `json:"losses"`
}

// Match is stored with TeamAID < TeamBID so a pairing has exactly one row per
// week regardless of the order the teams were given in.
type Match struct {
	gorm.Model
	SeasonID       uint `gorm:"uniqueIndex:idx_match_pairing; not null"`
	Week           int  `gorm:"uniqueIndex:idx_match_pairing; not null"`
	TeamAID        uint `gorm:"uniqueIndex:idx_match_pairing; not null"`
	TeamA          Team `gorm:"foreignKey:TeamAID"`
	TeamBID        uint `gorm:"uniqueIndex:idx_match_pairing; not null"`
	TeamB          Team `gorm:"foreignKey:TeamBID"`
	Sets           datatypes.JSONSlice[SetResult]
	Winner         Side `gorm:"size:8; default:None"`
	PlayersResults datatypes.JSONSlice[PlayerResult]
}
