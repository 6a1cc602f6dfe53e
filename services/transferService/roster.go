package transferService

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/models"
)

var (
	ErrPlayerNotFound  = errors.New("league player not found")
	ErrAmbiguousPlayer = errors.New("more than one league player has that name")
	ErrTeamNotFound    = errors.New("team not found")
)

type RosterOutcome string

const (
	OutcomeApplied           RosterOutcome = "APPLIED"
	OutcomeNotRegistered     RosterOutcome = "NOT_REGISTERED"
	OutcomePlayerNotFound    RosterOutcome = "PLAYER_NOT_FOUND"
	OutcomeAlreadyOnRoster   RosterOutcome = "ALREADY_ON_ROSTER"
	OutcomeNotOnRoster       RosterOutcome = "NOT_ON_ROSTER"
	OutcomeRosterFull        RosterOutcome = "ROSTER_FULL"
	OutcomeInvalidCost       RosterOutcome = "INVALID_COST"
	OutcomeInsufficientFunds RosterOutcome = "INSUFFICIENT_FUNDS"
	OutcomeDenied            RosterOutcome = "DENIED"
	OutcomeConflict          RosterOutcome = "CONFLICT"
)

const maxCommitAttempts = 3

// RosterResult describes what happened to a roster mutation. Wallet and Team
// hold the state after the mutation when it was applied, and the state that
// was read otherwise.
type RosterResult struct {
	Outcome  RosterOutcome
	Player   *models.LeaguePlayer
	Decision Decision
	Wallet   int
	Team     []uint
	MaxSize  int
}

// ResolveLeaguePlayer finds a season's league player by name, ignoring case.
// teamName narrows the search when two teams field players with the same name.
func ResolveLeaguePlayer(db *gorm.DB, seasonID uint, name string, teamName string) (*models.LeaguePlayer, error) {
	query := db.Preload("Team").
		Where("season_id = ? AND LOWER(name) = LOWER(?)", seasonID, strings.TrimSpace(name))

	if teamName = strings.TrimSpace(teamName); teamName != "" {
		var team models.Team
		err := db.Where("season_id = ? AND LOWER(name) = LOWER(?)", seasonID, teamName).First(&team).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
		}
		if err != nil {
			return nil, fmt.Errorf("error fetching team: %v", err)
		}
		query = query.Where("team_id = ?", team.ID)
	}

	var players []models.LeaguePlayer
	if err := query.Order("id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("error fetching league player: %v", err)
	}

	switch len(players) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	case 1:
		return &players[0], nil
	default:
		teams := make([]string, len(players))
		for i, p := range players {
			teams[i] = p.Team.Name
		}
		return nil, fmt.Errorf("%w: %s plays for %s", ErrAmbiguousPlayer, name, strings.Join(teams, ", "))
	}
}

// rosterPlan turns the state read for one attempt into the proposed roster and
// wallet, or an outcome explaining why there is nothing to propose.
type rosterPlan func(fp models.FantasyPlayer, lp models.LeaguePlayer) (team []uint, wallet int, outcome RosterOutcome)

// AddPlayer drafts a league player onto the user's roster and charges its cost.
func AddPlayer(db *gorm.DB, season models.Season, discordID string, leaguePlayerID uint) (RosterResult, error) {
	maxSize := season.TeamSizeLimit()
	return applyRosterChange(db, season, discordID, leaguePlayerID, func(fp models.FantasyPlayer, lp models.LeaguePlayer) ([]uint, int, RosterOutcome) {
		switch {
		case fp.HasPlayer(lp.ID):
			return nil, 0, OutcomeAlreadyOnRoster
		case len(fp.Team) >= maxSize:
			return nil, 0, OutcomeRosterFull
		case lp.Cost < 0:
			return nil, 0, OutcomeInvalidCost
		case lp.Cost > fp.Wallet:
			return nil, 0, OutcomeInsufficientFunds
		}

		team := make([]uint, 0, len(fp.Team)+1)
		team = append(team, fp.Team...)
		team = append(team, lp.ID)
		return team, fp.Wallet - lp.Cost, OutcomeApplied
	})
}

// RemovePlayer drops a league player from the user's roster and refunds its cost.
func RemovePlayer(db *gorm.DB, season models.Season, discordID string, leaguePlayerID uint) (RosterResult, error) {
	return applyRosterChange(db, season, discordID, leaguePlayerID, func(fp models.FantasyPlayer, lp models.LeaguePlayer) ([]uint, int, RosterOutcome) {
		if !fp.HasPlayer(lp.ID) {
			return nil, 0, OutcomeNotOnRoster
		}

		team := make([]uint, 0, len(fp.Team))
		for _, id := range fp.Team {
			if id != lp.ID {
				team = append(team, id)
			}
		}

		refund := lp.Cost
		if refund < 0 {
			refund = 0
		}
		return team, fp.Wallet + refund, OutcomeApplied
	})
}

func applyRosterChange(db *gorm.DB, season models.Season, discordID string, leaguePlayerID uint, plan rosterPlan) (RosterResult, error) {
	result := RosterResult{MaxSize: season.TeamSizeLimit()}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		var fp models.FantasyPlayer
		err := db.Where("season_id = ? AND discord_id = ?", season.ID, discordID).First(&fp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Outcome = OutcomeNotRegistered
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("error fetching fantasy player: %v", err)
		}
		result.Wallet = fp.Wallet
		result.Team = fp.Team

		var lp models.LeaguePlayer
		err = db.Where("season_id = ? AND id = ?", season.ID, leaguePlayerID).First(&lp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Outcome = OutcomePlayerNotFound
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("error fetching league player: %v", err)
		}
		result.Player = &lp

		team, wallet, outcome := plan(fp, lp)
		if outcome != OutcomeApplied {
			result.Outcome = outcome
			return result, nil
		}

		cfg, err := GetConfig(db, season.ID)
		if err != nil {
			return result, err
		}
		result.Decision = CanModifyTeam(cfg, fp.PlayoffSnapshot, team)
		if !result.Decision.Allowed {
			result.Outcome = OutcomeDenied
			return result, nil
		}

		committed, err := commitRoster(db, fp, team, wallet)
		if err != nil {
			return result, err
		}
		if committed {
			result.Outcome = OutcomeApplied
			result.Wallet = wallet
			result.Team = team
			return result, nil
		}

		log.WithFields(log.Fields{
			"season":  season.ID,
			"user":    discordID,
			"attempt": attempt,
		}).Debug("roster changed underneath mutation, retrying")
	}

	result.Outcome = OutcomeConflict
	return result, nil
}

// commitRoster writes team and wallet only if nobody else wrote the roster
// since fp was read.
func commitRoster(db *gorm.DB, fp models.FantasyPlayer, team []uint, wallet int) (bool, error) {
	res := db.Model(&models.FantasyPlayer{}).
		Where("id = ? AND version = ?", fp.ID, fp.Version).
		Updates(map[string]interface{}{
			"team":    datatypes.JSONSlice[uint](team),
			"wallet":  wallet,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("error saving roster: %v", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r RosterResult) Message() string {
	name := "that player"
	if r.Player != nil {
		name = fmt.Sprintf("**%s**", r.Player.Name)
	}

	switch r.Outcome {
	case OutcomeNotRegistered:
		return "⚠️ You must register using `/joinleague` first."
	case OutcomePlayerNotFound:
		return "❌ That league player is not part of this season."
	case OutcomeAlreadyOnRoster:
		return fmt.Sprintf("❌ You already have %s on your team.", name)
	case OutcomeNotOnRoster:
		return fmt.Sprintf("❌ %s is not in your fantasy team.", name)
	case OutcomeRosterFull:
		return fmt.Sprintf("❌ You cannot have more than %d players.", r.MaxSize)
	case OutcomeInvalidCost:
		return fmt.Sprintf("❗ %s has an invalid cost configured. Ask an admin to fix this.", name)
	case OutcomeInsufficientFunds:
		return fmt.Sprintf("❌ Not enough budget. %s costs **%d**, you have **%d**.", name, r.Player.Cost, r.Wallet)
	case OutcomeDenied:
		return r.Decision.Message()
	case OutcomeConflict:
		return "⚠️ Your team changed while this was being saved. Please try again."
	default:
		return fmt.Sprintf("✅ Team updated with %s. Wallet: **%d**.", name, r.Wallet)
	}
}
