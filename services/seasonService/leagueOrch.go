package seasonService

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/transferService"
)

var (
	ErrInvalidCost     = errors.New("cost cannot be negative")
	ErrNoSubstitution  = errors.New("no player differs in exactly one of name, team or cost")
	ErrNewNameRequired = errors.New("a new name is required to rename a player")
)

const DefaultListSize = 10

func findTeamByName(db *gorm.DB, seasonID uint, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	var team models.Team
	err := db.Where("season_id = ? AND LOWER(name) = LOWER(?)", seasonID, name).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", transferService.ErrTeamNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching team: %v", err)
	}
	return &team, nil
}

// CreateTeam adds a real team to the season. Names are unique per season
// regardless of case.
func CreateTeam(db *gorm.DB, seasonID uint, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var existing int64
	err := db.Model(&models.Team{}).
		Where("season_id = ? AND LOWER(name) = LOWER(?)", seasonID, name).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("error checking team: %v", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("team %s %w", name, ErrDuplicate)
	}

	team := models.Team{SeasonID: seasonID, Name: name}
	if err := db.Create(&team).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("team %s %w", name, ErrDuplicate)
		}
		return nil, fmt.Errorf("error creating team: %v", err)
	}

	log.WithFields(log.Fields{"season": seasonID, "team": name}).Info("team created")
	return &team, nil
}

// AddLeaguePlayer creates a league player by hand. It gets the next free
// external id of the season so later imports can match it.
func AddLeaguePlayer(db *gorm.DB, seasonID uint, name string, teamName string, cost int) (*models.LeaguePlayer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if cost < 0 {
		return nil, ErrInvalidCost
	}

	team, err := findTeamByName(db, seasonID, teamName)
	if err != nil {
		return nil, err
	}

	var lp models.LeaguePlayer
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.LeaguePlayer{}).
			Where("season_id = ? AND team_id = ? AND LOWER(name) = LOWER(?)", seasonID, team.ID, name).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%s on %s %w", name, team.Name, ErrDuplicate)
		}

		var maxExternal int64
		err = tx.Model(&models.LeaguePlayer{}).
			Where("season_id = ?", seasonID).
			Select("COALESCE(MAX(external_id), 0)").
			Scan(&maxExternal).Error
		if err != nil {
			return err
		}
		next := maxExternal + 1

		lp = models.LeaguePlayer{SeasonID: seasonID, TeamID: team.ID, Name: name, Cost: cost, ExternalID: &next}
		if err := tx.Create(&lp).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("%s on %s %w", name, team.Name, ErrDuplicate)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("error adding player: %v", err)
	}

	lp.Team = *team
	log.WithFields(log.Fields{
		"season":   seasonID,
		"player":   lp.Name,
		"team":     team.Name,
		"external": *lp.ExternalID,
	}).Info("league player added")
	return &lp, nil
}

type SubstitutionField string

const (
	SubstituteCost SubstitutionField = "cost"
	SubstituteTeam SubstitutionField = "team"
	SubstituteName SubstitutionField = "name"
)

// Substitution describes a league player by name, team and cost where at most
// one of those is wrong. NewName is only used to rename.
type Substitution struct {
	Name     string
	TeamName string
	Cost     int
	NewName  string
}

type SubstitutionResult struct {
	Player   models.LeaguePlayer
	Field    SubstitutionField
	Previous string
}

// SubstituteLeaguePlayer corrects one field of an existing league player.
// Name and team matching changes the cost, name and cost matching moves the
// player to the team, and a full match renames the player to NewName.
// Rosters holding the player are left untouched.
func SubstituteLeaguePlayer(db *gorm.DB, seasonID uint, sub Substitution) (SubstitutionResult, error) {
	var result SubstitutionResult

	sub.Name = strings.TrimSpace(sub.Name)
	sub.NewName = strings.TrimSpace(sub.NewName)
	if sub.Name == "" {
		return result, ErrInvalidName
	}
	if sub.Cost < 0 {
		return result, ErrInvalidCost
	}

	team, err := findTeamByName(db, seasonID, sub.TeamName)
	if err != nil {
		return result, err
	}

	var candidates []models.LeaguePlayer
	if err := db.Preload("Team").Where("season_id = ?", seasonID).Order("id").Find(&candidates).Error; err != nil {
		return result, fmt.Errorf("error fetching league players: %v", err)
	}

	var target *models.LeaguePlayer
	pick := func(field SubstitutionField, match func(lp models.LeaguePlayer) bool) {
		if target != nil {
			return
		}
		for idx := range candidates {
			if match(candidates[idx]) {
				target = &candidates[idx]
				result.Field = field
				return
			}
		}
	}
	sameName := func(lp models.LeaguePlayer) bool { return strings.EqualFold(lp.Name, sub.Name) }

	pick(SubstituteCost, func(lp models.LeaguePlayer) bool {
		return sameName(lp) && lp.TeamID == team.ID && lp.Cost != sub.Cost
	})
	pick(SubstituteTeam, func(lp models.LeaguePlayer) bool {
		return sameName(lp) && lp.TeamID != team.ID && lp.Cost == sub.Cost
	})
	pick(SubstituteName, func(lp models.LeaguePlayer) bool {
		return sameName(lp) && lp.TeamID == team.ID && lp.Cost == sub.Cost
	})
	if target == nil {
		return result, ErrNoSubstitution
	}

	updates := map[string]interface{}{}
	switch result.Field {
	case SubstituteCost:
		result.Previous = strconv.Itoa(target.Cost)
		updates["cost"] = sub.Cost
	case SubstituteTeam:
		result.Previous = target.Team.Name
		updates["team_id"] = team.ID
	case SubstituteName:
		if sub.NewName == "" {
			return result, ErrNewNameRequired
		}
		result.Previous = target.Name
		updates["name"] = sub.NewName
	}

	err = db.Model(&models.LeaguePlayer{}).Where("id = ?", target.ID).Updates(updates).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return result, fmt.Errorf("player %w on %s", ErrDuplicate, team.Name)
		}
		return result, fmt.Errorf("error updating player: %v", err)
	}

	if err := db.Preload("Team").First(&result.Player, target.ID).Error; err != nil {
		return result, fmt.Errorf("error fetching player: %v", err)
	}

	log.WithFields(log.Fields{
		"season":   seasonID,
		"player":   result.Player.Name,
		"field":    result.Field,
		"previous": result.Previous,
	}).Info("league player substituted")
	return result, nil
}

type PickCount struct {
	Player models.LeaguePlayer
	Picks  int
}

// MostPickedPlayers counts how many live rosters of the season hold each
// league player, most picked first. Players nobody picked are included.
func MostPickedPlayers(db *gorm.DB, seasonID uint, limit int) ([]PickCount, error) {
	if limit <= 0 {
		limit = DefaultListSize
	}
	if limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	var players []models.LeaguePlayer
	if err := db.Preload("Team").Where("season_id = ?", seasonID).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("error fetching league players: %v", err)
	}

	var rosters []models.FantasyPlayer
	if err := db.Select("id", "team").Where("season_id = ?", seasonID).Find(&rosters).Error; err != nil {
		return nil, fmt.Errorf("error fetching rosters: %v", err)
	}

	picks := make(map[uint]int)
	for _, fp := range rosters {
		seen := make(map[uint]bool, len(fp.Team))
		for _, id := range fp.Team {
			if !seen[id] {
				seen[id] = true
				picks[id]++
			}
		}
	}

	counts := make([]PickCount, len(players))
	for idx, lp := range players {
		counts[idx] = PickCount{Player: lp, Picks: picks[lp.ID]}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Picks != counts[j].Picks {
			return counts[i].Picks > counts[j].Picks
		}
		return strings.ToLower(counts[i].Player.Name) < strings.ToLower(counts[j].Player.Name)
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

type PlayerRecord struct {
	Player models.LeaguePlayer
	Wins   int
	Losses int
}

// TeamRecord is a real team's roster with each player's record and the team
// total, for one week when Week is set.
type TeamRecord struct {
	Team    models.Team
	Week    *int
	Players []PlayerRecord
	Wins    int
	Losses  int
}

func TeamStats(db *gorm.DB, seasonID uint, teamName string, week *int) (TeamRecord, error) {
	record := TeamRecord{Week: week}
	if week != nil && (*week < 1 || *week > models.MaxWeek) {
		return record, fmt.Errorf("team stats for week %d: %w", *week, scoringService.ErrInvalidWeek)
	}

	team, err := findTeamByName(db, seasonID, teamName)
	if err != nil {
		return record, err
	}
	record.Team = *team

	var players []models.LeaguePlayer
	err = db.Preload("Performance").
		Where("season_id = ? AND team_id = ?", seasonID, team.ID).
		Order("name").
		Find(&players).Error
	if err != nil {
		return record, fmt.Errorf("error fetching team players: %v", err)
	}

	for _, lp := range players {
		row := PlayerRecord{Player: lp}
		if week != nil {
			if entry := models.FindWeek(lp.Performance, *week); entry != nil {
				row.Wins, row.Losses = entry.Wins, entry.Losses
			}
		} else {
			for _, entry := range lp.Performance {
				row.Wins += entry.Wins
				row.Losses += entry.Losses
			}
		}
		record.Wins += row.Wins
		record.Losses += row.Losses
		record.Players = append(record.Players, row)
	}
	return record, nil
}

type SeasonInfo struct {
	Season         models.Season
	Config         models.FantasyConfig
	Teams          int64
	LeaguePlayers  int64
	FantasyPlayers int64
}

func GetSeasonInfo(db *gorm.DB, season models.Season) (SeasonInfo, error) {
	info := SeasonInfo{Season: season}

	cfg, err := transferService.GetConfig(db, season.ID)
	if err != nil {
		return info, err
	}
	info.Config = cfg

	counts := []struct {
		model interface{}
		into  *int64
	}{
		{&models.Team{}, &info.Teams},
		{&models.LeaguePlayer{}, &info.LeaguePlayers},
		{&models.FantasyPlayer{}, &info.FantasyPlayers},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where("season_id = ?", season.ID).Count(c.into).Error; err != nil {
			return info, fmt.Errorf("error counting season rows: %v", err)
		}
	}
	return info, nil
}
