package importService

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
)

type ImportOptions struct {
	// CreateMissing adds league players seen for the first time instead of
	// reporting them as not found.
	CreateMissing bool
}

type ImportResult struct {
	Created      int
	Updated      int
	TeamsCreated int
	Skipped      int
	NotFound     int
	Invalid      int
	Problems     []string
}

func (r ImportResult) Summary() string {
	return fmt.Sprintf("Created: %d, Updated: %d, Teams created: %d, Skipped: %d, Not found: %d, Invalid: %d",
		r.Created, r.Updated, r.TeamsCreated, r.Skipped, r.NotFound, r.Invalid)
}

type recordOutcome int

const (
	recordCreated recordOutcome = iota
	recordUpdated
	recordUnchanged
	recordNotFound
)

// ImportStats upserts every player record of a stats export into the season.
// Records are applied one transaction each; bad records are counted and the
// rest of the batch carries on. Only storage failures abort the import.
func ImportStats(db *gorm.DB, seasonID uint, data []byte, opts ImportOptions) (ImportResult, error) {
	var result ImportResult

	records, err := splitRecords(data)
	if err != nil {
		return result, err
	}

	for idx, raw := range records {
		p, err := decodeRecord(raw)
		if err != nil {
			result.Invalid++
			result.Problems = append(result.Problems, fmt.Sprintf("record %d: %v", idx, err))
			continue
		}

		if p.Name == "" || len(p.Weeks) == 0 {
			result.Skipped++
			continue
		}
		if p.TeamName == "" {
			result.NotFound++
			result.Problems = append(result.Problems, fmt.Sprintf("%s: no team_name", p.Name))
			continue
		}
		if p.FantasyPoints.Valid && p.FantasyPoints.Value < 0 {
			result.Invalid++
			result.Problems = append(result.Problems, fmt.Sprintf("%s: negative cost %d", p.Name, p.FantasyPoints.Value))
			continue
		}

		var outcome recordOutcome
		var teamCreated bool
		err = db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			outcome, teamCreated, txErr = importRecord(tx, seasonID, p, opts)
			return txErr
		})
		if err != nil {
			if database.IsDuplicateKey(err) {
				result.Invalid++
				result.Problems = append(result.Problems, fmt.Sprintf("%s: conflicts with an existing player", p.Name))
				continue
			}
			return result, fmt.Errorf("error importing %s: %w", p.Name, err)
		}

		if teamCreated {
			result.TeamsCreated++
		}
		switch outcome {
		case recordCreated:
			result.Created++
		case recordUpdated:
			result.Updated++
		case recordUnchanged:
			result.Skipped++
		case recordNotFound:
			result.NotFound++
			result.Problems = append(result.Problems, fmt.Sprintf("%s (%s): no matching player", p.Name, p.TeamName))
		}
	}

	log.WithFields(log.Fields{
		"season":   seasonID,
		"created":  result.Created,
		"updated":  result.Updated,
		"teams":    result.TeamsCreated,
		"skipped":  result.Skipped,
		"notFound": result.NotFound,
		"invalid":  result.Invalid,
	}).Info("stats import finished")

	return result, nil
}

func importRecord(tx *gorm.DB, seasonID uint, p StatsPlayer, opts ImportOptions) (recordOutcome, bool, error) {
	team, err := findTeam(tx, seasonID, p.TeamName)
	if err != nil {
		return 0, false, err
	}

	player, err := matchPlayer(tx, seasonID, p, team)
	if err != nil {
		return 0, false, err
	}
	if player == nil && !opts.CreateMissing {
		return recordNotFound, false, nil
	}

	teamCreated := false
	if team == nil {
		team = &models.Team{SeasonID: seasonID, Name: p.TeamName}
		if err := tx.Create(team).Error; err != nil {
			return 0, false, err
		}
		teamCreated = true
	}

	entries := BuildPerformance(p.ID, p.Weeks)

	if player == nil {
		lp := models.LeaguePlayer{
			SeasonID: seasonID,
			TeamID:   team.ID,
			Name:     p.Name,
			Cost:     p.FantasyPoints.IntOr(0),
		}
		if p.ID.Valid {
			externalID := p.ID.Value
			lp.ExternalID = &externalID
		}
		if err := tx.Create(&lp).Error; err != nil {
			return 0, teamCreated, err
		}
		if _, err := upsertPerformance(tx, seasonID, lp.ID, entries); err != nil {
			return 0, teamCreated, err
		}
		return recordCreated, teamCreated, nil
	}

	changes := map[string]interface{}{}
	if player.TeamID != team.ID {
		changes["team_id"] = team.ID
	}
	if p.FantasyPoints.Valid && int64(player.Cost) != p.FantasyPoints.Value {
		changes["cost"] = p.FantasyPoints.Value
	}
	if player.ExternalID == nil && p.ID.Valid {
		changes["external_id"] = p.ID.Value
	}
	if len(changes) > 0 {
		if err := tx.Model(&models.LeaguePlayer{}).Where("id = ?", player.ID).Updates(changes).Error; err != nil {
			return 0, teamCreated, err
		}
	}

	perfChanged, err := upsertPerformance(tx, seasonID, player.ID, entries)
	if err != nil {
		return 0, teamCreated, err
	}

	if len(changes) > 0 || perfChanged {
		return recordUpdated, teamCreated, nil
	}
	return recordUnchanged, teamCreated, nil
}

func findTeam(tx *gorm.DB, seasonID uint, name string) (*models.Team, error) {
	var team models.Team
	err := tx.Where("season_id = ? AND name = ?", seasonID, name).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// matchPlayer prefers the external id and falls back to the name within the
// record's team.
func matchPlayer(tx *gorm.DB, seasonID uint, p StatsPlayer, team *models.Team) (*models.LeaguePlayer, error) {
	var lp models.LeaguePlayer
	if p.ID.Valid {
		err := tx.Where("season_id = ? AND external_id = ?", seasonID, p.ID.Value).First(&lp).Error
		if err == nil {
			return &lp, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if team == nil {
		return nil, nil
	}
	err := tx.Where("season_id = ? AND team_id = ? AND LOWER(name) = LOWER(?)", seasonID, team.ID, p.Name).First(&lp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lp, nil
}

// upsertPerformance replaces stored weeks with the built ones. Weeks whose
// results are unchanged are not written.
func upsertPerformance(tx *gorm.DB, seasonID uint, leaguePlayerID uint, entries []models.PerformanceEntry) (bool, error) {
	changed := false
	for _, entry := range entries {
		entry.SeasonID = seasonID
		entry.LeaguePlayerID = leaguePlayerID

		var existing models.PerformanceEntry
		err := tx.Where("league_player_id = ? AND week = ?", leaguePlayerID, entry.Week).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&entry).Error; err != nil {
				return changed, err
			}
			changed = true
			continue
		}
		if err != nil {
			return changed, err
		}

		if existing.SameResults(entry) {
			continue
		}
		err = tx.Model(&models.PerformanceEntry{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"wins":   entry.Wins,
				"losses": entry.Losses,
				"sets":   entry.Sets,
			}).Error
		if err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
