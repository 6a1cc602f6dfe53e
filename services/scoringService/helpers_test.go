package scoringService

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

const (
	W = models.SideA
	L = models.SideB
	V = models.SideNone
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

// week builds a single-set entry; each rounds argument lists game winners.
func week(w int, rounds ...[]models.Side) models.PerformanceEntry {
	set := models.SetResult{SetNumber: 1}
	for ri, games := range rounds {
		round := models.RoundResult{RoundNumber: ri + 1}
		for gi, winner := range games {
			round.Games = append(round.Games, models.GameResult{
				GameNumber: gi + 1,
				PlayerA:    1,
				PlayerB:    2,
				Winner:     winner,
			})
		}
		set.Rounds = append(set.Rounds, round)
	}

	entry := models.PerformanceEntry{Week: w}
	if len(rounds) > 0 {
		sets, wins, losses := models.Summarize([]models.SetResult{set})
		entry.Sets = sets
		entry.Wins = wins
		entry.Losses = losses
	}
	return entry
}

func games(sides ...models.Side) []models.Side {
	return sides
}

type fixture struct {
	season  models.Season
	team    models.Team
	players []models.LeaguePlayer
}

// seedPlayers stores one team with a league player per performance history.
func seedPlayers(t *testing.T, db *gorm.DB, histories ...[]models.PerformanceEntry) fixture {
	t.Helper()

	f := fixture{season: models.Season{Name: "Trials S1", IsActive: true}}
	require.NoError(t, db.Create(&f.season).Error)

	f.team = models.Team{SeasonID: f.season.ID, Name: "Cobalt"}
	require.NoError(t, db.Create(&f.team).Error)

	for idx, history := range histories {
		for i := range history {
			history[i].SeasonID = f.season.ID
		}
		lp := models.LeaguePlayer{
			SeasonID:    f.season.ID,
			TeamID:      f.team.ID,
			Name:        string(rune('A' + idx)),
			Cost:        10,
			Performance: history,
		}
		require.NoError(t, db.Create(&lp).Error)
		f.players = append(f.players, lp)
	}
	return f
}
