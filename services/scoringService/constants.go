package scoringService

// Point values for the fantasy scoring rules.
const (
	WinPoints = 10
	// BonusRoundSweep is paid for every round won without dropping a game.
	BonusRoundSweep = 15
	// BonusWeekPositive is paid once when every round of the week was won on games.
	BonusWeekPositive = 5
	// BonusStreakPositive needs three consecutive weekly-positive weeks.
	BonusStreakPositive = 40
	// BonusStreakPerfect needs three consecutive weeks without a single lost game.
	BonusStreakPerfect = 100

	streakLength = 3
)
