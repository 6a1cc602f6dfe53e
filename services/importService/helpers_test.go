package importService

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})

	return gormDB, mock, err
}

func newTestDB(t *testing.T) (*gorm.DB, models.Season) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	season := models.Season{Name: "Trials S1", IsActive: true}
	require.NoError(t, db.Create(&season).Error)
	return db, season
}

func playerByExternalID(t *testing.T, db *gorm.DB, seasonID uint, externalID int64) models.LeaguePlayer {
	t.Helper()
	var lp models.LeaguePlayer
	err := db.Preload("Team").
		Preload("Performance", func(tx *gorm.DB) *gorm.DB { return tx.Order("week") }).
		Where("season_id = ? AND external_id = ?", seasonID, externalID).
		First(&lp).Error
	require.NoError(t, err)
	return lp
}
