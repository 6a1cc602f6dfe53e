package scoringService

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"t2TrialsFantasyBot/models"
)

func TestGetScore(t *testing.T) {
	db := newTestDB(t)
	season := models.Season{Name: "Trials S1", IsActive: true}
	require.NoError(t, db.Create(&season).Error)

	fp := models.FantasyPlayer{
		SeasonID:     season.ID,
		DiscordID:    "alice",
		WeeklyPoints: datatypes.JSONSlice[int]{10, 25},
		TotalPoints:  35,
	}
	require.NoError(t, db.Create(&fp).Error)

	two, five, zero, late := 2, 5, 0, models.MaxWeek+1

	tests := []struct {
		name      string
		discordID string
		week      *int
		wantWeek  int
		wantErr   error
	}{
		{name: "Total only", discordID: "alice"},
		{name: "Stored week", discordID: "alice", week: &two, wantWeek: 25},
		{name: "Unscored week", discordID: "alice", week: &five, wantWeek: 0},
		{name: "Invalid week", discordID: "alice", week: &zero, wantErr: ErrInvalidWeek},
		{name: "Week past season end", discordID: "alice", week: &late, wantErr: ErrInvalidWeek},
		{name: "Not registered", discordID: "bob", wantErr: ErrNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := GetScore(db, season.ID, tt.discordID, tt.week)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 35, score.TotalPoints)
			assert.Equal(t, tt.wantWeek, score.WeekPoints)
			assert.Equal(t, []int{10, 25}, score.WeeklyPoints)
		})
	}
}

func TestLeaderboard(t *testing.T) {
	db := newTestDB(t)
	season := models.Season{Name: "Trials S1", IsActive: true}
	other := models.Season{Name: "Trials S0"}
	require.NoError(t, db.Create(&season).Error)
	require.NoError(t, db.Create(&other).Error)

	for _, fp := range []models.FantasyPlayer{
		{SeasonID: season.ID, DiscordID: "a", TotalPoints: 10},
		{SeasonID: season.ID, DiscordID: "b", TotalPoints: 90},
		{SeasonID: season.ID, DiscordID: "c", TotalPoints: 40},
		{SeasonID: other.ID, DiscordID: "a", TotalPoints: 500},
	} {
		fp := fp
		require.NoError(t, db.Create(&fp).Error)
	}

	top, err := Leaderboard(db, season.ID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].DiscordID)
	assert.Equal(t, "c", top[1].DiscordID)

	all, err := Leaderboard(db, season.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPlayerLeaderboard(t *testing.T) {
	db := newTestDB(t)
	f := seedPlayers(t, db,
		[]models.PerformanceEntry{week(1, games(W, W, W))},
		[]models.PerformanceEntry{week(1, games(W, L)), week(2, games(W, W, W))},
		nil,
	)

	one, two, zero := 1, 2, 0

	tests := []struct {
		name       string
		week       *int
		limit      int
		wantNames  []string
		wantPoints []int
		wantWins   []int
		wantErr    error
	}{
		{name: "Season", wantNames: []string{"B", "A", "C"}, wantPoints: []int{60, 50, 0}, wantWins: []int{4, 3, 0}},
		{name: "Season limited", limit: 2, wantNames: []string{"B", "A"}, wantPoints: []int{60, 50}, wantWins: []int{4, 3}},
		{name: "Single week", week: &one, wantNames: []string{"A", "B", "C"}, wantPoints: []int{50, 10, 0}, wantWins: []int{3, 1, 0}},
		{name: "Ties go by name", week: &two, wantNames: []string{"B", "A", "C"}, wantPoints: []int{50, 0, 0}, wantWins: []int{3, 0, 0}},
		{name: "Invalid week", week: &zero, wantErr: ErrInvalidWeek},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			standings, err := PlayerLeaderboard(db, f.season.ID, tt.week, tt.limit)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)

			var names []string
			var points, wins []int
			for _, s := range standings {
				names = append(names, s.Player.Name)
				points = append(points, s.Points)
				wins = append(wins, s.Wins)
				assert.Equal(t, "Cobalt", s.Player.Team.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantPoints, points)
			assert.Equal(t, tt.wantWins, wins)
		})
	}
}
