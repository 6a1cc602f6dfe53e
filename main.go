package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/database"
	"t2TrialsFantasyBot/scheduler"
	"t2TrialsFantasyBot/services"
)

var (
	db  *gorm.DB
	cfg *config.Config
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	cfg.ConfigureLogging()

	db, err = database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = database.Migrate(db)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	err = services.RunMigrations(db)
	if err != nil {
		log.Fatalf("Error running data migrations: %v", err)
	}
}

func main() {
	if cfg.DiscordToken == "" {
		log.Fatalf("DISCORD_BOT_TOKEN not set in environment variables")
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	dg.AddHandler(interactionCreate)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as %s", r.User.Username)
		err := s.UpdateGameStatus(0, "T2 Trials Fantasy")
		if err != nil {
			log.Printf("Error setting status: %v", err)
		}
	})

	dg.Identify.Intents = discordgo.IntentsGuilds

	err = dg.Open()
	if err != nil {
		log.Fatalf("Error opening Discord session: %v", err)
	}
	defer func(dg *discordgo.Session) {
		if err := dg.Close(); err != nil {
			log.Printf("Error closing Discord session: %v", err)
		}
	}(dg)

	err = services.RegisterCommands(dg)
	if err != nil {
		log.Fatalf("Error registering commands: %v", err)
	}

	if c := scheduler.SetupCron(db, cfg); c != nil {
		defer c.Stop()
	}

	log.Println("Bot is running. Press CTRL+C to exit.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		services.HandleSlashCommand(s, i, db, cfg)
	case discordgo.InteractionApplicationCommandAutocomplete:
		services.HandleAutocomplete(s, i, db)
	case discordgo.InteractionMessageComponent:
		services.HandleComponentInteraction(s, i, db, cfg)
	case discordgo.InteractionModalSubmit:
		services.HandleModalSubmit(s, i, db, cfg)
	}
}
