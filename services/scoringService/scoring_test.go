package scoringService

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"t2TrialsFantasyBot/models"
)

func TestWeekPoints(t *testing.T) {
	tests := []struct {
		name        string
		description string
		perf        []models.PerformanceEntry
		week        int
		want        int
	}{
		{
			name:        "Missing week",
			description: "A week without an entry scores nothing",
			perf:        []models.PerformanceEntry{week(1, games(W, W, W))},
			week:        2,
			want:        0,
		},
		{
			name:        "Week zero",
			description: "Weeks below one never score",
			perf:        []models.PerformanceEntry{week(1, games(W, W, W))},
			week:        0,
			want:        0,
		},
		{
			name:        "No rounds",
			description: "An entry with no rounds played is worth zero",
			perf:        []models.PerformanceEntry{week(1)},
			week:        1,
			want:        0,
		},
		{
			name:        "Clean 3-0 round",
			description: "Base points, one sweep bonus and the weekly positive bonus",
			perf:        []models.PerformanceEntry{week(1, games(W, W, W))},
			week:        1,
			want:        3*WinPoints + BonusRoundSweep + BonusWeekPositive,
		},
		{
			name:        "2-1 round",
			description: "A dropped game loses the sweep but keeps the week positive",
			perf:        []models.PerformanceEntry{week(1, games(W, W, L))},
			week:        1,
			want:        2*WinPoints + BonusWeekPositive,
		},
		{
			name:        "Two clean rounds",
			description: "Sweep bonus is paid per round",
			perf:        []models.PerformanceEntry{week(1, games(W, W, W), games(W, W, W))},
			week:        1,
			want:        6*WinPoints + 2*BonusRoundSweep + BonusWeekPositive,
		},
		{
			name:        "One losing round",
			description: "A single losing round removes the weekly positive bonus",
			perf:        []models.PerformanceEntry{week(1, games(W, W, L), games(L, L, W))},
			week:        1,
			want:        3 * WinPoints,
		},
		{
			name:        "Tied round",
			description: "Wins must strictly exceed losses",
			perf:        []models.PerformanceEntry{week(1, games(W, L))},
			week:        1,
			want:        WinPoints,
		},
		{
			name:        "Void game",
			description: "Void games are not counted and do not stop a sweep",
			perf:        []models.PerformanceEntry{week(1, games(W, W, V))},
			week:        1,
			want:        2*WinPoints + BonusRoundSweep + BonusWeekPositive,
		},
		{
			name:        "Second week of a run",
			description: "Streaks need three weeks",
			perf: []models.PerformanceEntry{
				week(1, games(W, W, L)),
				week(2, games(W, W, L)),
			},
			week: 2,
			want: 2*WinPoints + BonusWeekPositive,
		},
		{
			name:        "Positive streak",
			description: "Three weekly-positive weeks in a row",
			perf: []models.PerformanceEntry{
				week(1, games(W, W, L)),
				week(2, games(W, W, L)),
				week(3, games(W, W, L)),
			},
			week: 3,
			want: 2*WinPoints + BonusWeekPositive + BonusStreakPositive,
		},
		{
			name:        "Perfect streak",
			description: "Three unbeaten weeks earn both streak bonuses",
			perf: []models.PerformanceEntry{
				week(1, games(W, W, W)),
				week(2, games(W, W, W)),
				week(3, games(W, W, W)),
			},
			week: 3,
			want: 3*WinPoints + BonusRoundSweep + BonusWeekPositive + BonusStreakPositive + BonusStreakPerfect,
		},
		{
			name:        "Perfect streak with void games",
			description: "A void game is not a loss",
			perf: []models.PerformanceEntry{
				week(1, games(W, V)),
				week(2, games(W, V)),
				week(3, games(W, V)),
			},
			week: 3,
			want: WinPoints + BonusRoundSweep + BonusWeekPositive + BonusStreakPositive + BonusStreakPerfect,
		},
		{
			name:        "Gap breaks streak",
			description: "A missing middle week breaks both streaks",
			perf: []models.PerformanceEntry{
				week(1, games(W, W, W)),
				week(3, games(W, W, W)),
				week(4, games(W, W, W)),
			},
			week: 4,
			want: 3*WinPoints + BonusRoundSweep + BonusWeekPositive,
		},
		{
			name:        "Empty week in window",
			description: "A week with no rounds does not qualify for a streak",
			perf: []models.PerformanceEntry{
				week(1),
				week(2, games(W, W, W)),
				week(3, games(W, W, W)),
			},
			week: 3,
			want: 3*WinPoints + BonusRoundSweep + BonusWeekPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekPoints(tt.perf, tt.week), tt.description)
		})
	}
}

func TestWeekPointsAcrossSets(t *testing.T) {
	entry := week(1, games(W, W, W))
	second := week(1, games(L, L, W))
	entry.Sets = append(entry.Sets, models.SetResult{SetNumber: 2, Rounds: second.Sets[0].Rounds})
	sets, wins, losses := models.Summarize(entry.Sets)
	entry.Sets, entry.Wins, entry.Losses = sets, wins, losses

	assert.Equal(t, 4*WinPoints+BonusRoundSweep, WeekPoints([]models.PerformanceEntry{entry}, 1))
}

func TestRosterWeekPoints(t *testing.T) {
	a := models.LeaguePlayer{Performance: []models.PerformanceEntry{week(1, games(W, W, W))}}
	b := models.LeaguePlayer{Performance: []models.PerformanceEntry{week(1, games(W, L, L))}}
	c := models.LeaguePlayer{}

	assert.Equal(t, 0, RosterWeekPoints(nil, 1))
	assert.Equal(t, 50, RosterWeekPoints([]models.LeaguePlayer{a}, 1))
	assert.Equal(t, 60, RosterWeekPoints([]models.LeaguePlayer{a, b, c}, 1))
}

func TestPlayerSeasonPoints(t *testing.T) {
	perf := []models.PerformanceEntry{
		week(1, games(W, W, W)),
		week(2, games(W, W, W)),
		week(3, games(W, W, W)),
	}
	assert.Equal(t, 50+50+190, PlayerSeasonPoints(perf))
	assert.Equal(t, 0, PlayerSeasonPoints(nil))
}

func TestRoundPredicates(t *testing.T) {
	clean := week(1, games(W, W, W)).Sets[0].Rounds[0]
	dropped := week(1, games(W, W, L)).Sets[0].Rounds[0]
	withVoid := week(1, games(W, W, V)).Sets[0].Rounds[0]
	allVoid := week(1, games(V, V)).Sets[0].Rounds[0]
	empty := models.RoundResult{RoundNumber: 1}

	assert.True(t, IsCleanRound(clean))
	assert.False(t, IsCleanRound(dropped))
	assert.True(t, IsCleanRound(withVoid))
	assert.False(t, IsCleanRound(allVoid))
	assert.False(t, IsCleanRound(empty))

	voidWeek := week(1, games(W, W, V))
	assert.True(t, IsPerfectWeek(&voidWeek))
	voidOnly := week(1, games(V, V))
	assert.False(t, IsPerfectWeek(&voidOnly))

	assert.False(t, IsWeekPositive(nil))
	assert.False(t, IsPerfectWeek(nil))
	perfect := week(1, games(W, W, W))
	assert.True(t, IsPerfectWeek(&perfect))
}
