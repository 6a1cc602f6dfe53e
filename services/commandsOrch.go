package services

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/transferService"
)

func HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	switch i.ApplicationCommandData().Name {
	case "joinleague":
		JoinLeague(s, i, db)
	case "pickplayer":
		PickPlayer(s, i, db)
	case "removeplayer":
		RemovePlayer(s, i, db)
	case "myteam":
		MyTeam(s, i, db)
	case "myscore":
		MyScore(s, i, db)
	case "leaderboard":
		ShowLeaderboard(s, i, db)
	case "playerstats":
		PlayerStats(s, i, db)
	case "playerleaderboard":
		PlayerLeaderboard(s, i, db)
	case "mostpickedplayers":
		MostPickedPlayers(s, i, db)
	case "teamstats":
		TeamStats(s, i, db)
	case "seasoninfo":
		SeasonInfo(s, i, db)
	case "setphase":
		SetPhase(s, i, db, cfg)
	case "calculatescores":
		CalculateScores(s, i, db, cfg)
	case "importstatsjson":
		ImportStatsJSON(s, i, db, cfg)
	case "buildmatchesfromstats":
		BuildMatchesFromStats(s, i, db, cfg)
	case "forcerunweekly":
		ForceRunWeekly(s, i, db, cfg)
	case "deleteplayer":
		DeletePlayer(s, i, db, cfg)
	case "newseason":
		NewSeason(s, i, db, cfg)
	case "seasonactivate":
		ActivateSeason(s, i, db, cfg)
	case "deleteseason":
		DeleteSeason(s, i, db, cfg)
	case "setwallet":
		SetWallet(s, i, db, cfg)
	case "addplayer":
		AddLeaguePlayer(s, i, db, cfg)
	case "createteam":
		CreateTeam(s, i, db, cfg)
	}
}

func phaseChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(transferService.Phases))
	for idx, phase := range transferService.Phases {
		choices[idx] = &discordgo.ApplicationCommandOptionChoice{Name: string(phase), Value: string(phase)}
	}
	return choices
}

func Commands() []*discordgo.ApplicationCommand {
	adminPermission := int64(discordgo.PermissionManageGuild)
	minWeek := float64(1)
	maxWeek := float64(models.MaxWeek)
	minTeamSize := float64(1)
	minZero := float64(0)
	minLimit := float64(1)
	maxLimit := float64(scoringService.MaxLeaderboardSize)

	playerOption := &discordgo.ApplicationCommandOption{
		Name:         "player",
		Description:  "League player name",
		Type:         discordgo.ApplicationCommandOptionString,
		Required:     true,
		Autocomplete: true,
	}
	teamOption := &discordgo.ApplicationCommandOption{
		Name:         "team",
		Description:  "Team name, when two players share a name",
		Type:         discordgo.ApplicationCommandOptionString,
		Required:     false,
		Autocomplete: true,
	}
	weekOption := &discordgo.ApplicationCommandOption{
		Name:        "week",
		Description: "Only count a specific week",
		Type:        discordgo.ApplicationCommandOptionInteger,
		MinValue:    &minWeek,
		MaxValue:    maxWeek,
		Required:    false,
	}
	limitOption := &discordgo.ApplicationCommandOption{
		Name:        "limit",
		Description: fmt.Sprintf("How many entries to show (max %d)", scoringService.MaxLeaderboardSize),
		Type:        discordgo.ApplicationCommandOptionInteger,
		MinValue:    &minLimit,
		MaxValue:    maxLimit,
		Required:    false,
	}
	ephemeralOption := &discordgo.ApplicationCommandOption{
		Name:        "ephemeral",
		Description: "Show only to you",
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Required:    false,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "joinleague",
			Description: "Join the fantasy league for the active season",
		},
		{
			Name:        "pickplayer",
			Description: "Add a league player to your fantasy team",
			Options:     []*discordgo.ApplicationCommandOption{playerOption, teamOption},
		},
		{
			Name:        "removeplayer",
			Description: "Remove a league player from your fantasy team",
			Options:     []*discordgo.ApplicationCommandOption{playerOption, teamOption},
		},
		{
			Name:        "myteam",
			Description: "Show your fantasy team",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Description: "Show someone else's team instead",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    false,
				},
			},
		},
		{
			Name:        "myscore",
			Description: "View your fantasy points (overall or for a specific week)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "week",
					Description: "Show score for a specific week",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minWeek,
					MaxValue:    maxWeek,
					Required:    false,
				},
				ephemeralOption,
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the top fantasy teams by points",
		},
		{
			Name:        "playerstats",
			Description: "Show a league player's stats",
			Options:     []*discordgo.ApplicationCommandOption{playerOption, teamOption, ephemeralOption},
		},
		{
			Name:        "playerleaderboard",
			Description: "Show the top league players by fantasy points",
			Options:     []*discordgo.ApplicationCommandOption{weekOption, limitOption, ephemeralOption},
		},
		{
			Name:        "mostpickedplayers",
			Description: "Show the league players on the most fantasy teams",
			Options:     []*discordgo.ApplicationCommandOption{limitOption, ephemeralOption},
		},
		{
			Name:        "teamstats",
			Description: "Show a team's roster and record",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:         "team",
					Description:  "Team name",
					Type:         discordgo.ApplicationCommandOptionString,
					Required:     true,
					Autocomplete: true,
				},
				weekOption,
				ephemeralOption,
			},
		},
		{
			Name:        "seasoninfo",
			Description: "Show information about the active season",
		},
		{
			Name:                     "setphase",
			Description:              "🛡 Set the fantasy phase - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "phase",
					Description: "New phase",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					Choices:     phaseChoices(),
				},
			},
		},
		{
			Name:                     "calculatescores",
			Description:              "🛡 Calculate fantasy scores - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "week",
					Description: "Week to score // *Optional: Default current week",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minWeek,
					MaxValue:    maxWeek,
					Required:    false,
				},
				{
					Name:        "all",
					Description: "Rescore every week of the season",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
			},
		},
		{
			Name:                     "importstatsjson",
			Description:              "🛡 Import per-player weekly stats JSON - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "file",
					Description: "JSON file exported from the T2 Trials website",
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Required:    true,
				},
				{
					Name:        "create_missing",
					Description: "Create players and teams seen for the first time",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
			},
		},
		{
			Name:                     "buildmatchesfromstats",
			Description:              "🛡 Build a team match from the website JSON - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "week",
					Description: "Week number",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minWeek,
					MaxValue:    maxWeek,
					Required:    true,
				},
				{
					Name:        "file",
					Description: "Website JSON file",
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Required:    true,
				},
			},
		},
		{
			Name:                     "forcerunweekly",
			Description:              "🛡 Run the weekly import and scoring now - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "full",
					Description: "Rescore every week instead of the current one",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
				{
					Name:        "advance",
					Description: "Move the current week forward afterwards",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
			},
		},
		{
			Name:                     "deleteplayer",
			Description:              "🛡 Delete a league player - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:         "name",
					Description:  "Name of the player to delete",
					Type:         discordgo.ApplicationCommandOptionString,
					Required:     true,
					Autocomplete: true,
				},
				{
					Name:         "team",
					Description:  "Team name the player belongs to",
					Type:         discordgo.ApplicationCommandOptionString,
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:                     "newseason",
			Description:              "🛡 Create and activate a new season - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Season name, e.g. S2",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "max_team_size",
					Description: "Roster size limit // *Optional: Default 5",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minTeamSize,
					Required:    false,
				},
			},
		},
		{
			Name:                     "seasonactivate",
			Description:              "🛡 Make a season the active one - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Season name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:                     "deleteseason",
			Description:              "🛡 Delete a season and all its data - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Season name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:                     "setwallet",
			Description:              "🛡 Set wallet amounts - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "user",
					Description: "Set a single user's wallet",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "user",
							Description: "User to update",
							Type:        discordgo.ApplicationCommandOptionUser,
							Required:    true,
						},
						{
							Name:        "amount",
							Description: "New wallet amount",
							Type:        discordgo.ApplicationCommandOptionInteger,
							MinValue:    &minZero,
							Required:    true,
						},
					},
				},
				{
					Name:        "all",
					Description: "Set the wallet of every fantasy user",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "amount",
							Description: "New wallet amount for everyone",
							Type:        discordgo.ApplicationCommandOptionInteger,
							MinValue:    &minZero,
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     "addplayer",
			Description:              "🛡 Add a league player or correct one - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Player name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:         "team",
					Description:  "Team the player plays for",
					Type:         discordgo.ApplicationCommandOptionString,
					Required:     true,
					Autocomplete: true,
				},
				{
					Name:        "cost",
					Description: "Fantasy cost of the player",
					Type:        discordgo.ApplicationCommandOptionInteger,
					MinValue:    &minZero,
					Required:    true,
				},
				{
					Name:        "substitution",
					Description: "Correct an existing player whose name, team or cost differs",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    true,
				},
				{
					Name:        "newname",
					Description: "New name when renaming a player",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    false,
				},
			},
		},
		{
			Name:                     "createteam",
			Description:              "🛡 Create a team in the active season - ADMIN ONLY",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Description: "Team name",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
	}
}

func RegisterCommands(s *discordgo.Session) error {
	for _, cmd := range Commands() {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%v' command: %v", cmd.Name, err)
		}
	}
	return nil
}
