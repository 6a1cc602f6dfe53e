package seasonService

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}, seasonID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Unscoped().Model(model).Where("season_id = ?", seasonID).Count(&n).Error)
	return n
}

// seedRosteredSeason creates a season where player A (cost 10, two weeks of
// results) sits on one roster and in both snapshots of another.
func seedRosteredSeason(t *testing.T, db *gorm.DB, name string) (models.Season, models.LeaguePlayer, models.LeaguePlayer) {
	t.Helper()

	res, err := NewSeason(db, name, nil)
	require.NoError(t, err)
	season := res.Season

	team := models.Team{SeasonID: season.ID, Name: "Cobalt"}
	require.NoError(t, db.Create(&team).Error)

	a := models.LeaguePlayer{SeasonID: season.ID, TeamID: team.ID, Name: "A", Cost: 10, Performance: []models.PerformanceEntry{
		{SeasonID: season.ID, Week: 1, Wins: 2},
		{SeasonID: season.ID, Week: 2, Wins: 1, Losses: 1},
	}}
	b := models.LeaguePlayer{SeasonID: season.ID, TeamID: team.ID, Name: "B", Cost: 15}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.Match{SeasonID: season.ID, Week: 1, TeamAID: team.ID, TeamBID: team.ID + 100}).Error)
	return season, a, b
}
