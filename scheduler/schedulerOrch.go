package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/scheduler/scheduler_jobs"
)

// SetupCron schedules the weekly import. It returns nil when jobs are
// disabled; otherwise the caller owns the returned scheduler.
func SetupCron(db *gorm.DB, cfg *config.Config) *cron.Cron {
	if !cfg.JobsEnabled {
		log.Println("weekly import skipped (JOBS_ENABLED != 1)")
		return nil
	}

	loc, err := time.LoadLocation(cfg.CronTZ)
	if err != nil {
		logCronError(db, err)
		return nil
	}

	cronService := cron.New(cron.WithLocation(loc))
	_, err = cronService.AddFunc(cfg.CronExpr, func() {
		report, err := scheduler_jobs.RunWeeklyImportOnce(db, cfg, scheduler_jobs.WeeklyOptions{AdvancePointer: true})
		if err != nil {
			logCronError(db, err)
			return
		}
		log.Println(report.Summary())
	})
	if err != nil {
		logCronError(db, fmt.Errorf("invalid CRON_EXPR %q: %v", cfg.CronExpr, err))
		return nil
	}

	log.WithFields(log.Fields{"expr": cfg.CronExpr, "tz": cfg.CronTZ}).Info("weekly import scheduled")
	cronService.Start()
	return cronService
}

func logCronError(db *gorm.DB, err error) {
	log.Errorf("weekly import: %v", err)
	errLog := models.ErrorLog{
		GuildID: "CRON ERR",
		Command: "weekly",
		Message: fmt.Sprintf("%v", err),
	}
	db.Create(&errLog)
}
