package transferService

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"t2TrialsFantasyBot/models"
)

func TestSetPhase(t *testing.T) {
	db := newTestDB(t)
	l := seedLeague(t, db, nil)
	alice := l.join(t, db, "alice", 55, "A", "B", "C")
	bob := l.join(t, db, "bob", 75, "D")

	t.Run("Config is created on demand", func(t *testing.T) {
		cfg, err := GetConfig(db, l.season.ID)
		require.NoError(t, err)
		assert.Equal(t, string(PhasePreseason), cfg.Phase)
		assert.Equal(t, 1, cfg.CurrentWeek)
		assert.Equal(t, models.DefaultPlayoffSwapLimit, cfg.PlayoffSwapLimit)
	})

	t.Run("Entering swiss freezes rosters", func(t *testing.T) {
		change, err := SetPhase(db, l.season.ID, PhaseSwiss)
		require.NoError(t, err)
		assert.Equal(t, PhasePreseason, change.Previous)
		assert.True(t, change.Snapshotted)
		assert.EqualValues(t, 2, change.Rosters)

		got := reloadFantasy(t, db, alice.ID)
		assert.Equal(t, []uint(l.ids("A", "B", "C")), []uint(got.SwissLockSnapshot))
		assert.Empty(t, got.PlayoffSnapshot)
		assert.Equal(t, alice.Version+1, got.Version)

		assert.Equal(t, []uint(l.ids("D")), []uint(reloadFantasy(t, db, bob.ID).SwissLockSnapshot))
	})

	t.Run("Entering playoffs takes the playoff snapshot", func(t *testing.T) {
		err := db.Model(&models.FantasyPlayer{}).Where("id = ?", alice.ID).
			Update("team", l.ids("A", "B", "E")).Error
		require.NoError(t, err)

		change, err := SetPhase(db, l.season.ID, PhasePlayoffsOpen)
		require.NoError(t, err)
		assert.Equal(t, PhaseSwiss, change.Previous)
		assert.True(t, change.Snapshotted)

		got := reloadFantasy(t, db, alice.ID)
		assert.Equal(t, []uint(l.ids("A", "B", "E")), []uint(got.PlayoffSnapshot))
		assert.Equal(t, []uint(l.ids("A", "B", "C")), []uint(got.SwissLockSnapshot))
	})

	t.Run("Locking takes no snapshot", func(t *testing.T) {
		before := reloadFantasy(t, db, alice.ID)

		change, err := SetPhase(db, l.season.ID, PhasePlayoffsLocked)
		require.NoError(t, err)
		assert.False(t, change.Snapshotted)

		after := reloadFantasy(t, db, alice.ID)
		assert.Equal(t, before.Version, after.Version)
		assert.Equal(t, []uint(before.PlayoffSnapshot), []uint(after.PlayoffSnapshot))
	})

	t.Run("Any phase may follow any other", func(t *testing.T) {
		_, err := SetPhase(db, l.season.ID, PhasePreseason)
		require.NoError(t, err)
		change, err := SetPhase(db, l.season.ID, PhaseSeasonEnded)
		require.NoError(t, err)
		assert.Equal(t, PhasePreseason, change.Previous)

		cfg, err := GetConfig(db, l.season.ID)
		require.NoError(t, err)
		assert.Equal(t, string(PhaseSeasonEnded), cfg.Phase)
	})

	t.Run("Lowercase phase is stored normalized", func(t *testing.T) {
		before := reloadFantasy(t, db, alice.ID)

		change, err := SetPhase(db, l.season.ID, Phase(" swiss "))
		require.NoError(t, err)
		assert.Equal(t, PhaseSwiss, change.Current)
		assert.True(t, change.Snapshotted)

		cfg, err := GetConfig(db, l.season.ID)
		require.NoError(t, err)
		assert.Equal(t, string(PhaseSwiss), cfg.Phase)
		assert.Equal(t, before.Version+1, reloadFantasy(t, db, alice.ID).Version)

		decision := CanModifyTeam(cfg, nil, l.ids("A"))
		assert.Equal(t, ReasonSwissLocked, decision.Reason)

		_, err = SetPhase(db, l.season.ID, PhaseSeasonEnded)
		require.NoError(t, err)
	})

	t.Run("Invalid phase changes nothing", func(t *testing.T) {
		_, err := SetPhase(db, l.season.ID, Phase("GROUPS"))
		assert.True(t, errors.Is(err, ErrInvalidPhase))

		cfg, err := GetConfig(db, l.season.ID)
		require.NoError(t, err)
		assert.Equal(t, string(PhaseSeasonEnded), cfg.Phase)
	})
}

func TestSetPhaseOnlyTouchesItsSeason(t *testing.T) {
	db := newTestDB(t)
	l := seedLeague(t, db, nil)
	l.join(t, db, "alice", 85, "A")

	other := models.Season{Name: "Trials S0"}
	require.NoError(t, db.Create(&other).Error)
	stranger := models.FantasyPlayer{SeasonID: other.ID, DiscordID: "alice", Team: l.ids("B")}
	require.NoError(t, db.Create(&stranger).Error)

	_, err := SetPhase(db, l.season.ID, PhaseSwiss)
	require.NoError(t, err)

	got := reloadFantasy(t, db, stranger.ID)
	assert.Empty(t, got.SwissLockSnapshot)
	assert.Equal(t, uint(0), got.Version)
}
