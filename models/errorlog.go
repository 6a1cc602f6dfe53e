package models

import (
	"gorm.io/gorm"
)

type ErrorLog struct {
	gorm.Model
	GuildID string `gorm:"size:64"`
	Command string `gorm:"size:64"`
	Message string
}
