package importService

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/scoringService"
)

const cleanSweepExport = `[
  {
    "id": 101,
    "name": "Xeno",
    "team_name": "Cobalt",
    "fantasy_points": 12,
    "weeks": [
      {"week_number": 1, "games": [
        {"set": 1, "round": 1, "opponent_id": 201, "winner_id": 101},
        {"set": 1, "round": 1, "opponent_id": 202, "winner_id": 101},
        {"set": 1, "round": 1, "opponent_id": 203, "winner_id": 101}
      ]}
    ]
  }
]`

func TestImportStatsCleanSweep(t *testing.T) {
	db, season := newTestDB(t)

	result, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, TeamsCreated: 1}, result)

	lp := playerByExternalID(t, db, season.ID, 101)
	assert.Equal(t, "Xeno", lp.Name)
	assert.Equal(t, "Cobalt", lp.Team.Name)
	assert.Equal(t, 12, lp.Cost)
	require.Len(t, lp.Performance, 1)
	assert.Equal(t, 3, lp.Performance[0].Wins)
	assert.Equal(t, 0, lp.Performance[0].Losses)

	want := 3*scoringService.WinPoints + scoringService.BonusRoundSweep + scoringService.BonusWeekPositive
	assert.Equal(t, want, scoringService.WeekPoints(lp.Performance, 1))
}

func TestImportStatsIsIdempotent(t *testing.T) {
	db, season := newTestDB(t)

	_, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	before := playerByExternalID(t, db, season.ID, 101)

	result, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 1}, result)

	after := playerByExternalID(t, db, season.ID, 101)
	if diff := cmp.Diff(before.Performance, after.Performance); diff != "" {
		t.Errorf("performance changed on re-import (-before +after):\n%s", diff)
	}
}

func TestImportStatsReplacesWeek(t *testing.T) {
	db, season := newTestDB(t)

	_, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{CreateMissing: true})
	require.NoError(t, err)

	changed := `[{"id": "101", "name": "Xeno", "team_name": "Cobalt", "fantasy_points": 14, "weeks": [
	  {"week_number": 1, "games": [
	    {"set": 1, "round": 1, "opponent_id": 201, "winner_id": 201},
	    {"set": 1, "round": 1, "opponent_id": 202, "winner_id": 101}
	  ]},
	  {"week_number": 2, "games": [
	    {"set": 1, "round": 1, "opponent_id": 204, "winner_id": 101}
	  ]}
	]}]`

	result, err := ImportStats(db, season.ID, []byte(changed), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 1}, result)

	lp := playerByExternalID(t, db, season.ID, 101)
	assert.Equal(t, 14, lp.Cost)
	require.Len(t, lp.Performance, 2)
	assert.Equal(t, 1, lp.Performance[0].Wins)
	assert.Equal(t, 1, lp.Performance[0].Losses)
	assert.Len(t, lp.Performance[0].Sets[0].Rounds[0].Games, 2)
	assert.Equal(t, 2, lp.Performance[1].Week)
}

func TestImportStatsRejectsNonArray(t *testing.T) {
	db, season := newTestDB(t)

	_, err := ImportStats(db, season.ID, []byte(`{"players": []}`), ImportOptions{CreateMissing: true})
	assert.True(t, errors.Is(err, ErrInvalidPayload))

	var count int64
	require.NoError(t, db.Model(&models.LeaguePlayer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportStatsCountsRecords(t *testing.T) {
	db, season := newTestDB(t)

	export := `[
	  {"id": 1, "name": "", "team_name": "Cobalt", "weeks": [{"week_number": 1, "games": []}]},
	  {"id": 2, "name": "NoWeeks", "team_name": "Cobalt", "weeks": []},
	  {"id": 3, "name": "Teamless", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 3}]}]},
	  {"id": 4, "name": "Negative", "team_name": "Cobalt", "fantasy_points": -3, "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 4}]}]},
	  {"id": "four", "name": "BadID", "team_name": "Cobalt", "weeks": []},
	  "not an object",
	  {"id": 5, "name": "Good", "team_name": "Cobalt", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 5}]}]}
	]`

	result, err := ImportStats(db, season.ID, []byte(export), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.TeamsCreated)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.NotFound)
	assert.Equal(t, 3, result.Invalid)
	assert.Len(t, result.Problems, 4)
	assert.Contains(t, result.Summary(), "Invalid: 3")
}

func TestImportStatsWithoutCreate(t *testing.T) {
	db, season := newTestDB(t)

	result, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotFound)
	assert.Zero(t, result.TeamsCreated)

	var teams int64
	require.NoError(t, db.Model(&models.Team{}).Count(&teams).Error)
	assert.Zero(t, teams)
}

func TestImportStatsMatchesByNameAndMovesTeams(t *testing.T) {
	db, season := newTestDB(t)

	cobalt := models.Team{SeasonID: season.ID, Name: "Cobalt"}
	require.NoError(t, db.Create(&cobalt).Error)
	existing := models.LeaguePlayer{SeasonID: season.ID, TeamID: cobalt.ID, Name: "xeno", Cost: 5}
	require.NoError(t, db.Create(&existing).Error)

	_, err := ImportStats(db, season.ID, []byte(cleanSweepExport), ImportOptions{})
	require.NoError(t, err)

	lp := playerByExternalID(t, db, season.ID, 101)
	assert.Equal(t, existing.ID, lp.ID)
	assert.Equal(t, 12, lp.Cost)

	moved := `[{"id": 101, "name": "Xeno", "team_name": "Ember", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 101}]}]}]`
	result, err := ImportStats(db, season.ID, []byte(moved), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 1, TeamsCreated: 1}, result)

	lp = playerByExternalID(t, db, season.ID, 101)
	assert.Equal(t, "Ember", lp.Team.Name)
	assert.Equal(t, 12, lp.Cost)
}

func TestImportStatsDuplicateIsInvalid(t *testing.T) {
	db, season := newTestDB(t)

	seed := `[
	  {"id": 1, "name": "Nova", "team_name": "Cobalt", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 1}]}]},
	  {"id": 2, "name": "Nova", "team_name": "Ember", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 2}]}]}
	]`
	_, err := ImportStats(db, season.ID, []byte(seed), ImportOptions{CreateMissing: true})
	require.NoError(t, err)

	clash := `[{"id": 2, "name": "Nova", "team_name": "Cobalt", "weeks": [{"week_number": 1, "games": [{"round": 1, "opponent_id": 9, "winner_id": 2}]}]}]`
	result, err := ImportStats(db, season.ID, []byte(clash), ImportOptions{CreateMissing: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, "Ember", playerByExternalID(t, db, season.ID, 2).Team.Name)
}

func TestImportStatsStorageError(t *testing.T) {
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `teams`").WillReturnError(errors.New("too many connections"))
	mock.ExpectRollback()

	_, err = ImportStats(db, 1, []byte(cleanSweepExport), ImportOptions{CreateMissing: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}
