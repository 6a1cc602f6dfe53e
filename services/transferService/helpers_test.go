package transferService

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
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

type league struct {
	season  models.Season
	teams   map[string]models.Team
	players map[string]models.LeaguePlayer
}

// seedLeague creates a season with two teams. Cobalt fields A to F costing 10
// each; Ember fields a second A costing 20.
func seedLeague(t *testing.T, db *gorm.DB, maxTeamSize *int) league {
	t.Helper()

	l := league{
		season:  models.Season{Name: "Trials S1", IsActive: true, MaxTeamSize: maxTeamSize},
		teams:   map[string]models.Team{},
		players: map[string]models.LeaguePlayer{},
	}
	require.NoError(t, db.Create(&l.season).Error)

	for _, name := range []string{"Cobalt", "Ember"} {
		team := models.Team{SeasonID: l.season.ID, Name: name}
		require.NoError(t, db.Create(&team).Error)
		l.teams[name] = team
	}

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		lp := models.LeaguePlayer{SeasonID: l.season.ID, TeamID: l.teams["Cobalt"].ID, Name: name, Cost: 10}
		require.NoError(t, db.Create(&lp).Error)
		l.players[name] = lp
	}

	ember := models.LeaguePlayer{SeasonID: l.season.ID, TeamID: l.teams["Ember"].ID, Name: "A", Cost: 20}
	require.NoError(t, db.Create(&ember).Error)
	l.players["Ember A"] = ember

	return l
}

func (l league) ids(names ...string) datatypes.JSONSlice[uint] {
	out := make(datatypes.JSONSlice[uint], 0, len(names))
	for _, n := range names {
		out = append(out, l.players[n].ID)
	}
	return out
}

func (l league) join(t *testing.T, db *gorm.DB, discordID string, wallet int, roster ...string) models.FantasyPlayer {
	t.Helper()
	fp := models.FantasyPlayer{
		SeasonID:  l.season.ID,
		DiscordID: discordID,
		Team:      l.ids(roster...),
		Wallet:    wallet,
	}
	require.NoError(t, db.Create(&fp).Error)
	return fp
}

func reloadFantasy(t *testing.T, db *gorm.DB, id uint) models.FantasyPlayer {
	t.Helper()
	var fp models.FantasyPlayer
	require.NoError(t, db.First(&fp, id).Error)
	return fp
}
