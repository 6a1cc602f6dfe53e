// Command t2admin runs the league's admin operations from a shell, against the
// same database the bot uses.
//
// Usage:
//
//	t2admin import stats.json --create-missing
//	t2admin score --week 3
//	t2admin score --all
//	t2admin phase PLAYOFFS_OPEN
//	t2admin weekly --full --advance
//	t2admin matches --week 3 stats.json
//	t2admin season new S2 --max-team-size 5
//	t2admin migrate
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/scheduler/scheduler_jobs"
	"t2TrialsFantasyBot/services"
	"t2TrialsFantasyBot/services/importService"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/seasonService"
	"t2TrialsFantasyBot/services/transferService"
)

var seasonName string

func main() {
	root := &cobra.Command{
		Use:           "t2admin",
		Short:         "T2 Trials fantasy league admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&seasonName, "season", "", "Season name (default: the active season)")

	root.AddCommand(importCmd())
	root.AddCommand(scoreCmd())
	root.AddCommand(phaseCmd())
	root.AddCommand(weeklyCmd())
	root.AddCommand(matchesCmd())
	root.AddCommand(seasonCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func connect() (*gorm.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.ConfigureLogging()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// withSeason connects and resolves the season a command works on.
func withSeason(run func(db *gorm.DB, cfg *config.Config, season models.Season) error) error {
	db, cfg, err := connect()
	if err != nil {
		return err
	}

	var season *models.Season
	if seasonName != "" {
		season, err = seasonService.GetSeasonByName(db, seasonName)
	} else {
		season, err = seasonService.GetActiveSeason(db)
	}
	if err != nil {
		return err
	}

	log.WithField("season", season.Name).Debug("using season")
	return run(db, cfg, *season)
}

func importCmd() *cobra.Command {
	var createMissing bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a per-player stats export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSeason(func(db *gorm.DB, cfg *config.Config, season models.Season) error {
				result, err := importService.ImportStats(db, season.ID, data, importService.ImportOptions{CreateMissing: createMissing})
				if err != nil {
					return err
				}
				fmt.Println(result.Summary())
				for _, problem := range result.Problems {
					fmt.Println("  " + problem)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&createMissing, "create-missing", false, "Create players and teams seen for the first time")
	return cmd
}

func scoreCmd() *cobra.Command {
	var week int
	var all bool
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Calculate fantasy scores for one week or the whole season",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (week != 0) {
				return fmt.Errorf("pass exactly one of --week or --all")
			}
			if !all && (week < 1 || week > models.MaxWeek) {
				return fmt.Errorf("--week must be between 1 and %d", models.MaxWeek)
			}
			return withSeason(func(db *gorm.DB, cfg *config.Config, season models.Season) error {
				var modified int
				var err error
				if all {
					modified, err = scoringService.RecalculateSeason(db, season.ID)
				} else {
					modified, err = scoringService.CalculateScoresForWeek(db, season.ID, week)
				}
				if err != nil {
					return err
				}
				fmt.Printf("%d teams updated\n", modified)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "Week to score")
	cmd.Flags().BoolVar(&all, "all", false, "Rescore every week")
	return cmd
}

func phaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase <PHASE>",
		Short: "Move the season to a new phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := transferService.ParsePhase(args[0])
			if err != nil {
				return err
			}
			return withSeason(func(db *gorm.DB, cfg *config.Config, season models.Season) error {
				change, err := transferService.SetPhase(db, season.ID, phase)
				if err != nil {
					return err
				}
				fmt.Printf("%s -> %s", change.Previous, change.Current)
				if change.Snapshotted {
					fmt.Printf(" (snapshot of %d teams)", change.Rosters)
				}
				fmt.Println()
				return nil
			})
		},
	}
}

func weeklyCmd() *cobra.Command {
	var opts scheduler_jobs.WeeklyOptions
	var file string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Run the weekly import and scoring job now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeason(func(db *gorm.DB, cfg *config.Config, season models.Season) error {
				var data []byte
				var err error
				if file != "" {
					data, err = os.ReadFile(file)
				} else if cfg.StatsURL != "" {
					data, err = importService.FetchStats(cfg.StatsURL, cfg.StatsFetchTimeout)
				} else {
					err = scheduler_jobs.ErrNoStatsURL
				}
				if err != nil {
					return err
				}

				report, err := scheduler_jobs.RunWeeklyImport(db, season, data, opts)
				if err != nil {
					return err
				}
				fmt.Println(report.Summary())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.FullRecalc, "full", false, "Rescore every week instead of the current one")
	cmd.Flags().BoolVar(&opts.AdvancePointer, "advance", false, "Move the current week forward afterwards")
	cmd.Flags().StringVar(&file, "file", "", "Read the export from a file instead of STATS_URL")
	return cmd
}

func matchesCmd() *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "matches <file>",
		Short: "Build a team match for a week from a per-player stats export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withSeason(func(db *gorm.DB, cfg *config.Config, season models.Season) error {
				result, err := importService.BuildMatchFromStats(db, season.ID, week, data)
				if err != nil {
					return err
				}
				verb := "created"
				if result.Replaced {
					verb = "replaced"
				}
				fmt.Printf("week %d %s vs %s %s, winner %s\n", week, result.TeamA.Name, result.TeamB.Name, verb, result.Match.Winner)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func seasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Create, activate or delete seasons",
	}

	var maxTeamSize int
	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create and activate a season",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect()
			if err != nil {
				return err
			}
			var size *int
			if cmd.Flags().Changed("max-team-size") {
				size = &maxTeamSize
			}
			result, err := seasonService.NewSeason(db, args[0], size)
			if err != nil {
				return err
			}
			fmt.Printf("season %s created, %d users carried over\n", result.Season.Name, result.UsersCopied)
			return nil
		},
	}
	newCmd.Flags().IntVar(&maxTeamSize, "max-team-size", models.DefaultMaxTeamSize, "Roster size limit")

	activateCmd := &cobra.Command{
		Use:   "activate <name>",
		Short: "Make a season the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect()
			if err != nil {
				return err
			}
			season, fantasyCfg, err := seasonService.ActivateSeason(db, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("season %s active, phase %s, week %d\n", season.Name, fantasyCfg.Phase, fantasyCfg.CurrentWeek)
			return nil
		},
	}

	var confirm bool
	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a season and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			db, _, err := connect()
			if err != nil {
				return err
			}
			if err := seasonService.DeleteSeason(db, args[0]); err != nil {
				return err
			}
			fmt.Printf("season %s deleted\n", args[0])
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the delete")

	cmd.AddCommand(newCmd, activateCmd, deleteCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and run pending data migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect()
			if err != nil {
				return err
			}
			return services.RunMigrations(db)
		},
	}
}
