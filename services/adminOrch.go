package services

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/scheduler/scheduler_jobs"
	"t2TrialsFantasyBot/services/common"
	"t2TrialsFantasyBot/services/importService"
	"t2TrialsFantasyBot/services/messageService"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/seasonService"
	"t2TrialsFantasyBot/services/transferService"
)

func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) bool {
	if common.IsAuthorized(s, i, cfg) {
		return true
	}
	common.RespondUnauthorized(s, i)
	return false
}

func SetPhase(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	phase, err := transferService.ParsePhase(common.StringOption(common.Options(i), "phase"))
	if err != nil {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}

	change, err := transferService.SetPhase(db, season.ID, phase)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, messageService.PhaseMessage(change), false)
}

func CalculateScores(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}
	opts := common.Options(i)

	if err := common.Defer(s, i, true); err != nil {
		common.SendError(nil, i, err, db)
		return
	}

	if common.BoolOption(opts, "all", false) {
		modified, err := scoringService.RecalculateSeason(db, season.ID)
		if err != nil {
			common.FollowUpError(s, i, err, db)
			return
		}
		common.FollowUp(s, i, fmt.Sprintf("✅ Recalculated every week. %d teams updated.", modified))
		return
	}

	week, ok := common.IntOption(opts, "week")
	if !ok {
		fantasyCfg, err := transferService.GetConfig(db, season.ID)
		if err != nil {
			common.FollowUpError(s, i, err, db)
			return
		}
		week = fantasyCfg.CurrentWeek
	}

	modified, err := scoringService.CalculateScoresForWeek(db, season.ID, week)
	if errors.Is(err, scoringService.ErrInvalidWeek) {
		common.FollowUp(s, i, fmt.Sprintf("❌ Week must be between 1 and %d.", models.MaxWeek))
		return
	}
	if err != nil {
		common.FollowUpError(s, i, err, db)
		return
	}
	common.FollowUp(s, i, fmt.Sprintf("✅ Scores calculated for week %d. %d teams updated.", week, modified))
}

// fetchAttachment defers the reply and downloads the file option. The caller
// answers with FollowUp afterwards.
func fetchAttachment(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) ([]byte, bool) {
	url, ok := common.AttachmentURL(i, common.Options(i), "file")
	if !ok {
		common.Respond(s, i, "❌ Please attach the stats JSON file.", true)
		return nil, false
	}

	if err := common.Defer(s, i, true); err != nil {
		common.SendError(nil, i, err, db)
		return nil, false
	}

	data, err := importService.FetchStats(url, cfg.StatsFetchTimeout)
	if errors.Is(err, importService.ErrPayloadTooLarge) {
		common.FollowUp(s, i, fmt.Sprintf("❌ %v", err))
		return nil, false
	}
	if err != nil {
		common.FollowUpError(s, i, err, db)
		return nil, false
	}
	return data, true
}

func ImportStatsJSON(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}
	createMissing := common.BoolOption(common.Options(i), "create_missing", false)

	data, ok := fetchAttachment(s, i, db, cfg)
	if !ok {
		return
	}

	result, err := importService.ImportStats(db, season.ID, data, importService.ImportOptions{CreateMissing: createMissing})
	if errors.Is(err, importService.ErrInvalidPayload) {
		common.FollowUp(s, i, fmt.Sprintf("❌ Invalid JSON: %v", err))
		return
	}
	if err != nil {
		common.FollowUpError(s, i, err, db)
		return
	}
	common.FollowUp(s, i, messageService.ImportMessage(result))
}

func BuildMatchesFromStats(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}
	week, _ := common.IntOption(common.Options(i), "week")

	data, ok := fetchAttachment(s, i, db, cfg)
	if !ok {
		return
	}

	result, err := importService.BuildMatchFromStats(db, season.ID, week, data)
	if errors.Is(err, importService.ErrInvalidPayload) || errors.Is(err, importService.ErrTeamCount) || errors.Is(err, importService.ErrInvalidWeek) {
		common.FollowUp(s, i, fmt.Sprintf("❌ %v", err))
		return
	}
	if err != nil {
		common.FollowUpError(s, i, err, db)
		return
	}
	common.FollowUp(s, i, messageService.MatchMessage(result))
}

func ForceRunWeekly(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	opts := common.Options(i)
	weeklyOpts := scheduler_jobs.WeeklyOptions{
		FullRecalc:     common.BoolOption(opts, "full", false),
		AdvancePointer: common.BoolOption(opts, "advance", false),
	}

	if err := common.Defer(s, i, true); err != nil {
		common.SendError(nil, i, err, db)
		return
	}

	report, err := scheduler_jobs.RunWeeklyImportOnce(db, cfg, weeklyOpts)
	if errors.Is(err, scheduler_jobs.ErrNoStatsURL) || errors.Is(err, seasonService.ErrNoActiveSeason) {
		common.FollowUp(s, i, fmt.Sprintf("⚠️ %v", err))
		return
	}
	if err != nil {
		common.FollowUpError(s, i, err, db)
		return
	}
	common.FollowUp(s, i, "✅ "+report.Summary())
}

func DeletePlayer(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	result, err := seasonService.DeleteLeaguePlayer(db, season.ID, common.StringOption(opts, "name"), common.StringOption(opts, "team"))
	if isLookupError(err) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Deleted **%s** (%s). Removed from %d fantasy teams, %d refunded **%d**.",
		result.Player.Name, result.Player.Team.Name, result.RostersUpdated, result.Refunded, result.Player.Cost), true)
}

func NewSeason(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}

	opts := common.Options(i)
	var maxTeamSize *int
	if size, ok := common.IntOption(opts, "max_team_size"); ok {
		maxTeamSize = &size
	}

	result, err := seasonService.NewSeason(db, common.StringOption(opts, "name"), maxTeamSize)
	if errors.Is(err, seasonService.ErrDuplicate) || errors.Is(err, seasonService.ErrInvalidName) || errors.Is(err, seasonService.ErrInvalidTeamSize) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Season **%s** created and activated. %d users carried over.",
		result.Season.Name, result.UsersCopied), false)
}

func ActivateSeason(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}

	season, fantasyCfg, err := seasonService.ActivateSeason(db, common.StringOption(common.Options(i), "name"))
	if errors.Is(err, seasonService.ErrSeasonNotFound) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Season **%s** is now active (phase **%s**, week %d).",
		season.Name, fantasyCfg.Phase, fantasyCfg.CurrentWeek), false)
}

// DeleteSeason only asks for confirmation. The delete itself runs from the
// confirmation modal in HandleModalSubmit.
func DeleteSeason(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}

	season, err := seasonService.GetSeasonByName(db, common.StringOption(common.Options(i), "name"))
	if errors.Is(err, seasonService.ErrSeasonNotFound) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("⚠️ This deletes season **%s** with all of its teams, players, fantasy teams and matches.", season.Name),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    fmt.Sprintf("Delete %s", season.Name),
							Style:    discordgo.DangerButton,
							CustomID: deleteSeasonButtonID(season.ID),
						},
					},
				},
			},
		},
	})
	if err != nil {
		common.SendError(nil, i, err, db)
	}
}

func SetWallet(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.Respond(s, i, "❌ Choose `user` or `all`.", true)
		return
	}
	sub := options[0]
	opts := common.OptionMap(sub.Options)
	amount, _ := common.IntOption(opts, "amount")

	switch sub.Name {
	case "user":
		target := opts["user"].UserValue(s)
		fp, err := seasonService.SetWallet(db, season.ID, target.ID, amount)
		if errors.Is(err, seasonService.ErrNotRegistered) {
			common.Respond(s, i, fmt.Sprintf("❌ <@%s> is not registered in **%s**.", target.ID, season.Name), true)
			return
		}
		if errors.Is(err, seasonService.ErrInvalidWallet) {
			common.Respond(s, i, "❌ Wallet cannot be negative.", true)
			return
		}
		if err != nil {
			common.SendError(s, i, err, db)
			return
		}
		common.Respond(s, i, fmt.Sprintf("✅ Wallet for <@%s> set to **%d**.", target.ID, fp.Wallet), true)
	case "all":
		n, err := seasonService.SetAllWallets(db, season.ID, amount)
		if errors.Is(err, seasonService.ErrInvalidWallet) {
			common.Respond(s, i, "❌ Wallet cannot be negative.", true)
			return
		}
		if err != nil {
			common.SendError(s, i, err, db)
			return
		}
		common.Respond(s, i, fmt.Sprintf("✅ Set **%d** wallets to **%d**.", n, amount), true)
	}
}

func CreateTeam(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	team, err := seasonService.CreateTeam(db, season.ID, common.StringOption(common.Options(i), "name"))
	if errors.Is(err, seasonService.ErrDuplicate) || errors.Is(err, seasonService.ErrInvalidName) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Team **%s** created in season **%s**.", team.Name, season.Name), true)
}

// AddLeaguePlayer creates a league player, or with substitution set corrects
// the one existing player that differs in name, team or cost.
func AddLeaguePlayer(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	if !requireAdmin(s, i, cfg) {
		return
	}
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	name := common.StringOption(opts, "name")
	teamName := common.StringOption(opts, "team")
	cost, _ := common.IntOption(opts, "cost")

	userError := func(err error) bool {
		return isLookupError(err) ||
			errors.Is(err, seasonService.ErrDuplicate) ||
			errors.Is(err, seasonService.ErrInvalidName) ||
			errors.Is(err, seasonService.ErrInvalidCost) ||
			errors.Is(err, seasonService.ErrNoSubstitution) ||
			errors.Is(err, seasonService.ErrNewNameRequired)
	}

	if common.BoolOption(opts, "substitution", false) {
		result, err := seasonService.SubstituteLeaguePlayer(db, season.ID, seasonService.Substitution{
			Name:     name,
			TeamName: teamName,
			Cost:     cost,
			NewName:  common.StringOption(opts, "newname"),
		})
		if userError(err) {
			common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
			return
		}
		if err != nil {
			common.SendError(s, i, err, db)
			return
		}
		common.Respond(s, i, messageService.SubstitutionMessage(result), true)
		return
	}

	lp, err := seasonService.AddLeaguePlayer(db, season.ID, name, teamName, cost)
	if userError(err) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Player **%s** (external id %d) added to **%s** with cost %d.",
		lp.Name, *lp.ExternalID, lp.Team.Name, lp.Cost), true)
}
