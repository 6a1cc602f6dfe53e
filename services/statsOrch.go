package services

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/common"
	"t2TrialsFantasyBot/services/messageService"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/seasonService"
)

func optionalWeek(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) *int {
	if week, ok := common.IntOption(opts, "week"); ok {
		return &week
	}
	return nil
}

func PlayerLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	limit, _ := common.IntOption(opts, "limit")
	week := optionalWeek(opts)

	standings, err := scoringService.PlayerLeaderboard(db, season.ID, week, limit)
	if errors.Is(err, scoringService.ErrInvalidWeek) {
		common.Respond(s, i, fmt.Sprintf("❌ Week must be between 1 and %d.", models.MaxWeek), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	if len(standings) == 0 {
		common.Respond(s, i, "ℹ️ No league players found.", true)
		return
	}

	common.RespondEmbed(s, i, messageService.PlayerLeaderboardEmbed(season.Name, week, standings), common.BoolOption(opts, "ephemeral", false))
}

func MostPickedPlayers(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	limit, _ := common.IntOption(opts, "limit")

	counts, err := seasonService.MostPickedPlayers(db, season.ID, limit)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	if len(counts) == 0 {
		common.Respond(s, i, "ℹ️ No league players found.", true)
		return
	}

	common.RespondEmbed(s, i, messageService.MostPickedEmbed(season.Name, counts), common.BoolOption(opts, "ephemeral", false))
}

func TeamStats(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	record, err := seasonService.TeamStats(db, season.ID, common.StringOption(opts, "team"), optionalWeek(opts))
	if isLookupError(err) || errors.Is(err, scoringService.ErrInvalidWeek) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.RespondEmbed(s, i, messageService.TeamStatsEmbed(record), common.BoolOption(opts, "ephemeral", false))
}

func SeasonInfo(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	info, err := seasonService.GetSeasonInfo(db, *season)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.RespondEmbed(s, i, messageService.SeasonInfoEmbed(info), true)
}
