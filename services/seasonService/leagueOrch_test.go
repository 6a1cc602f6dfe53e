package seasonService

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/transferService"
)

func TestCreateTeam(t *testing.T) {
	db := newTestDB(t)
	season, _, _ := seedRosteredSeason(t, db, "S1")

	team, err := CreateTeam(db, season.ID, "  Granite ")
	require.NoError(t, err)
	assert.Equal(t, "Granite", team.Name)
	assert.Equal(t, season.ID, team.SeasonID)

	_, err = CreateTeam(db, season.ID, "granite")
	assert.True(t, errors.Is(err, ErrDuplicate))
	_, err = CreateTeam(db, season.ID, "COBALT")
	assert.True(t, errors.Is(err, ErrDuplicate))
	_, err = CreateTeam(db, season.ID, "   ")
	assert.True(t, errors.Is(err, ErrInvalidName))

	assert.EqualValues(t, 2, count(t, db, &models.Team{}, season.ID))
}

func TestAddLeaguePlayer(t *testing.T) {
	db := newTestDB(t)
	season, a, _ := seedRosteredSeason(t, db, "S1")
	require.NoError(t, db.Model(&models.LeaguePlayer{}).Where("id = ?", a.ID).Update("external_id", 7).Error)

	lp, err := AddLeaguePlayer(db, season.ID, "Zed", "cobalt", 12)
	require.NoError(t, err)
	require.NotNil(t, lp.ExternalID)
	assert.EqualValues(t, 8, *lp.ExternalID)
	assert.Equal(t, "Cobalt", lp.Team.Name)
	assert.Equal(t, 12, lp.Cost)

	_, err = AddLeaguePlayer(db, season.ID, "a", "Cobalt", 5)
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)
	_, err = AddLeaguePlayer(db, season.ID, "Yan", "Nowhere", 5)
	assert.True(t, errors.Is(err, transferService.ErrTeamNotFound))
	_, err = AddLeaguePlayer(db, season.ID, "Yan", "Cobalt", -1)
	assert.True(t, errors.Is(err, ErrInvalidCost))
	_, err = AddLeaguePlayer(db, season.ID, " ", "Cobalt", 1)
	assert.True(t, errors.Is(err, ErrInvalidName))

	t.Run("External ids start at one in a fresh season", func(t *testing.T) {
		res, err := NewSeason(db, "S2", nil)
		require.NoError(t, err)
		_, err = CreateTeam(db, res.Season.ID, "Cobalt")
		require.NoError(t, err)

		lp, err := AddLeaguePlayer(db, res.Season.ID, "Zed", "Cobalt", 12)
		require.NoError(t, err)
		assert.EqualValues(t, 1, *lp.ExternalID)
	})
}

func TestSubstituteLeaguePlayer(t *testing.T) {
	db := newTestDB(t)
	season, a, _ := seedRosteredSeason(t, db, "S1")
	_, err := CreateTeam(db, season.ID, "Granite")
	require.NoError(t, err)

	tests := []struct {
		name         string
		sub          Substitution
		wantErr      error
		wantField    SubstitutionField
		wantPrevious string
		check        func(t *testing.T, lp models.LeaguePlayer)
	}{
		{
			name:         "Name and team match so the cost changes",
			sub:          Substitution{Name: "a", TeamName: "Cobalt", Cost: 12},
			wantField:    SubstituteCost,
			wantPrevious: "10",
			check: func(t *testing.T, lp models.LeaguePlayer) {
				assert.Equal(t, 12, lp.Cost)
			},
		},
		{
			name:         "Name and cost match so the team changes",
			sub:          Substitution{Name: "A", TeamName: "granite", Cost: 12},
			wantField:    SubstituteTeam,
			wantPrevious: "Cobalt",
			check: func(t *testing.T, lp models.LeaguePlayer) {
				assert.Equal(t, "Granite", lp.Team.Name)
			},
		},
		{
			name:    "Rename needs a new name",
			sub:     Substitution{Name: "A", TeamName: "Granite", Cost: 12},
			wantErr: ErrNewNameRequired,
		},
		{
			name:         "Team and cost match so the name changes",
			sub:          Substitution{Name: "A", TeamName: "Granite", Cost: 12, NewName: " Ace "},
			wantField:    SubstituteName,
			wantPrevious: "A",
			check: func(t *testing.T, lp models.LeaguePlayer) {
				assert.Equal(t, "Ace", lp.Name)
				assert.Equal(t, a.ID, lp.ID)
			},
		},
		{
			name:         "Second player moves team",
			sub:          Substitution{Name: "B", TeamName: "Granite", Cost: 15},
			wantField:    SubstituteTeam,
			wantPrevious: "Cobalt",
		},
		{
			name:    "Rename onto a teammate's name",
			sub:     Substitution{Name: "Ace", TeamName: "Granite", Cost: 12, NewName: "B"},
			wantErr: ErrDuplicate,
		},
		{
			name:    "Nothing matches",
			sub:     Substitution{Name: "Nobody", TeamName: "Cobalt", Cost: 1},
			wantErr: ErrNoSubstitution,
		},
		{
			name:    "Unknown team",
			sub:     Substitution{Name: "Ace", TeamName: "Nowhere", Cost: 12},
			wantErr: transferService.ErrTeamNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SubstituteLeaguePlayer(db, season.ID, tt.sub)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, result.Field)
			assert.Equal(t, tt.wantPrevious, result.Previous)
			if tt.check != nil {
				tt.check(t, result.Player)
			}
		})
	}
}

func TestMostPickedPlayers(t *testing.T) {
	db := newTestDB(t)
	season, a, b := seedRosteredSeason(t, db, "S1")
	_, err := AddLeaguePlayer(db, season.ID, "Cy", "Cobalt", 5)
	require.NoError(t, err)

	rosters := []models.FantasyPlayer{
		{SeasonID: season.ID, DiscordID: "alice", Team: datatypes.JSONSlice[uint]{a.ID, b.ID}},
		{SeasonID: season.ID, DiscordID: "bob", Team: datatypes.JSONSlice[uint]{a.ID, a.ID}},
		{SeasonID: season.ID, DiscordID: "carol"},
	}
	require.NoError(t, db.Create(&rosters).Error)

	counts, err := MostPickedPlayers(db, season.ID, 0)
	require.NoError(t, err)
	var names []string
	var picks []int
	for _, c := range counts {
		names = append(names, c.Player.Name)
		picks = append(picks, c.Picks)
	}
	assert.Equal(t, []string{"A", "B", "Cy"}, names)
	assert.Equal(t, []int{2, 1, 0}, picks)
	assert.Equal(t, "Cobalt", counts[0].Player.Team.Name)

	top, err := MostPickedPlayers(db, season.ID, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, a.ID, top[0].Player.ID)
}

func TestTeamStats(t *testing.T) {
	db := newTestDB(t)
	season, _, _ := seedRosteredSeason(t, db, "S1")

	record, err := TeamStats(db, season.ID, "cobalt", nil)
	require.NoError(t, err)
	assert.Equal(t, "Cobalt", record.Team.Name)
	require.Len(t, record.Players, 2)
	assert.Equal(t, "A", record.Players[0].Player.Name)
	assert.Equal(t, [2]int{3, 1}, [2]int{record.Players[0].Wins, record.Players[0].Losses})
	assert.Equal(t, [2]int{0, 0}, [2]int{record.Players[1].Wins, record.Players[1].Losses})
	assert.Equal(t, [2]int{3, 1}, [2]int{record.Wins, record.Losses})

	two := 2
	weekly, err := TeamStats(db, season.ID, "Cobalt", &two)
	require.NoError(t, err)
	assert.Equal(t, &two, weekly.Week)
	assert.Equal(t, [2]int{1, 1}, [2]int{weekly.Wins, weekly.Losses})

	late := models.MaxWeek + 1
	_, err = TeamStats(db, season.ID, "Cobalt", &late)
	assert.True(t, errors.Is(err, scoringService.ErrInvalidWeek))
	_, err = TeamStats(db, season.ID, "Nowhere", nil)
	assert.True(t, errors.Is(err, transferService.ErrTeamNotFound))
}

func TestGetSeasonInfo(t *testing.T) {
	db := newTestDB(t)
	season, _, _ := seedRosteredSeason(t, db, "S1")
	_, err := JoinLeague(db, season.ID, "alice", "Alice")
	require.NoError(t, err)

	info, err := GetSeasonInfo(db, season)
	require.NoError(t, err)
	assert.Equal(t, "S1", info.Season.Name)
	assert.Equal(t, string(transferService.PhasePreseason), info.Config.Phase)
	assert.Equal(t, 1, info.Config.CurrentWeek)
	assert.EqualValues(t, 1, info.Teams)
	assert.EqualValues(t, 2, info.LeaguePlayers)
	assert.EqualValues(t, 1, info.FantasyPlayers)
}
