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
	"t2TrialsFantasyBot/services/transferService"
)

const notRegisteredMessage = "⚠️ You must register using `/joinleague` first."

// activeSeason answers the interaction itself when there is no season to
// work with.
func activeSeason(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) (*models.Season, bool) {
	season, err := seasonService.GetActiveSeason(db)
	if errors.Is(err, seasonService.ErrNoActiveSeason) {
		common.Respond(s, i, "⚠️ No active season set. An admin needs to run `/newseason` first.", true)
		return nil, false
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return nil, false
	}
	return season, true
}

func isLookupError(err error) bool {
	return errors.Is(err, transferService.ErrPlayerNotFound) ||
		errors.Is(err, transferService.ErrAmbiguousPlayer) ||
		errors.Is(err, transferService.ErrTeamNotFound)
}

func JoinLeague(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	user := common.InteractionUser(i)
	fp, err := seasonService.JoinLeague(db, season.ID, user.ID, common.GetUsernameFromUser(user))
	if errors.Is(err, seasonService.ErrAlreadyRegistered) {
		common.Respond(s, i, fmt.Sprintf("⚠️ You are already registered for **%s**.", season.Name), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, fmt.Sprintf("✅ Welcome to the **%s** fantasy league! Your wallet: **%d**. Use `/pickplayer` to build your team.",
		season.Name, fp.Wallet), false)
}

func PickPlayer(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	changeRoster(s, i, db, transferService.AddPlayer)
}

func RemovePlayer(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	changeRoster(s, i, db, transferService.RemovePlayer)
}

type rosterChange func(db *gorm.DB, season models.Season, discordID string, leaguePlayerID uint) (transferService.RosterResult, error)

func changeRoster(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, apply rosterChange) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	lp, err := transferService.ResolveLeaguePlayer(db, season.ID, common.StringOption(opts, "player"), common.StringOption(opts, "team"))
	if isLookupError(err) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	result, err := apply(db, *season, common.InteractionUserID(i), lp.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, rosterMessage(result), result.Outcome != transferService.OutcomeApplied)
}

func rosterMessage(result transferService.RosterResult) string {
	msg := result.Message()
	if result.Outcome == transferService.OutcomeApplied && result.Decision.Reason == transferService.ReasonPlayoffsOK {
		msg += "\n" + result.Decision.Message()
	}
	return msg
}

func MyTeam(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	target := common.InteractionUser(i)
	self := true
	if opt, ok := common.Options(i)["user"]; ok {
		target = opt.UserValue(s)
		self = target.ID == common.InteractionUserID(i)
	}

	fp, err := seasonService.GetFantasyPlayer(db, season.ID, target.ID)
	if errors.Is(err, seasonService.ErrNotRegistered) {
		if self {
			common.Respond(s, i, notRegisteredMessage, true)
		} else {
			common.Respond(s, i, fmt.Sprintf("⚠️ <@%s> has not joined **%s**.", target.ID, season.Name), true)
		}
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	roster, err := seasonService.RosterPlayers(db, season.ID, fp.Team)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	fantasyCfg, err := transferService.GetConfig(db, season.ID)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.RespondEmbed(s, i, messageService.TeamEmbed(*fp, roster, season.TeamSizeLimit(), fantasyCfg.Phase), true)
}

func MyScore(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	var week *int
	if w, ok := common.IntOption(opts, "week"); ok {
		week = &w
	}

	score, err := scoringService.GetScore(db, season.ID, common.InteractionUserID(i), week)
	if errors.Is(err, scoringService.ErrNotRegistered) {
		common.Respond(s, i, notRegisteredMessage, true)
		return
	}
	if errors.Is(err, scoringService.ErrInvalidWeek) {
		common.Respond(s, i, fmt.Sprintf("❌ Week must be between 1 and %d.", models.MaxWeek), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.Respond(s, i, messageService.ScoreMessage(*score), common.BoolOption(opts, "ephemeral", false))
}

func ShowLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	players, err := scoringService.Leaderboard(db, season.ID, scoringService.DefaultLeaderboardSize)
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}
	if len(players) == 0 {
		common.Respond(s, i, "No users found on the leaderboard.", false)
		return
	}

	common.RespondEmbed(s, i, messageService.LeaderboardEmbed(players), false)
}

func PlayerStats(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	season, ok := activeSeason(s, i, db)
	if !ok {
		return
	}

	opts := common.Options(i)
	lp, err := seasonService.LeaguePlayerStats(db, season.ID, common.StringOption(opts, "player"), common.StringOption(opts, "team"))
	if isLookupError(err) {
		common.Respond(s, i, fmt.Sprintf("❌ %v", err), true)
		return
	}
	if err != nil {
		common.SendError(s, i, err, db)
		return
	}

	common.RespondEmbed(s, i, messageService.PlayerStatsEmbed(*lp), common.BoolOption(opts, "ephemeral", false))
}
