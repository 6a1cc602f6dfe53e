package scheduler_jobs

import (
	"errors"
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/importService"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/seasonService"
	"t2TrialsFantasyBot/services/transferService"
)

var ErrNoStatsURL = errors.New("STATS_URL not set")

type WeeklyOptions struct {
	// FullRecalc rescores every week of the season instead of only the
	// config's current week.
	FullRecalc bool
	// AdvancePointer moves the config's current week forward once scoring
	// has succeeded.
	AdvancePointer bool
}

type WeeklyReport struct {
	Season     string
	Import     importService.ImportResult
	Week       int
	FullRecalc bool
	Modified   int
	NextWeek   int
}

func (r WeeklyReport) Summary() string {
	scored := fmt.Sprintf("week %d", r.Week)
	if r.FullRecalc {
		scored = "all weeks"
	}
	return fmt.Sprintf("Season %s: %s. Scored %s, %d rosters updated. Current week is now %d.",
		r.Season, r.Import.Summary(), scored, r.Modified, r.NextWeek)
}

// RunWeeklyImportOnce fetches the stats feed, imports it into the active
// season and scores it.
func RunWeeklyImportOnce(db *gorm.DB, cfg *config.Config, opts WeeklyOptions) (report WeeklyReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovered in RunWeeklyImportOnce", r)
			debug.PrintStack()
			err = fmt.Errorf("panic recovered in RunWeeklyImportOnce: %v", r)
		}
	}()

	if cfg.StatsURL == "" {
		return report, ErrNoStatsURL
	}

	season, err := seasonService.GetActiveSeason(db)
	if err != nil {
		return report, err
	}

	data, err := importService.FetchStats(cfg.StatsURL, cfg.StatsFetchTimeout)
	if err != nil {
		return report, err
	}

	return RunWeeklyImport(db, *season, data, opts)
}

// RunWeeklyImport is the weekly job for an already downloaded export.
func RunWeeklyImport(db *gorm.DB, season models.Season, data []byte, opts WeeklyOptions) (WeeklyReport, error) {
	report := WeeklyReport{Season: season.Name, FullRecalc: opts.FullRecalc}

	fantasyCfg, err := transferService.GetConfig(db, season.ID)
	if err != nil {
		return report, err
	}
	report.Week = fantasyCfg.CurrentWeek
	report.NextWeek = fantasyCfg.CurrentWeek

	report.Import, err = importService.ImportStats(db, season.ID, data, importService.ImportOptions{CreateMissing: true})
	if err != nil {
		return report, err
	}

	if opts.FullRecalc {
		report.Modified, err = scoringService.RecalculateSeason(db, season.ID)
	} else {
		report.Modified, err = scoringService.CalculateScoresForWeek(db, season.ID, fantasyCfg.CurrentWeek)
	}
	if err != nil {
		return report, err
	}

	if opts.AdvancePointer && fantasyCfg.CurrentWeek < models.MaxWeek {
		err = db.Model(&models.FantasyConfig{}).
			Where("id = ?", fantasyCfg.ID).
			Update("current_week", gorm.Expr("current_week + 1")).Error
		if err != nil {
			return report, fmt.Errorf("error advancing current week: %v", err)
		}
		report.NextWeek = fantasyCfg.CurrentWeek + 1
	}

	log.WithFields(log.Fields{
		"season":   season.Name,
		"week":     report.Week,
		"full":     opts.FullRecalc,
		"created":  report.Import.Created,
		"updated":  report.Import.Updated,
		"invalid":  report.Import.Invalid,
		"modified": report.Modified,
		"next":     report.NextWeek,
	}).Info("weekly import finished")

	return report, nil
}
