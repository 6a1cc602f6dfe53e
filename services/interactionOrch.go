package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/common"
	"t2TrialsFantasyBot/services/seasonService"
)

const (
	deleteSeasonPrefix        = "delete_season_"
	deleteSeasonConfirmPrefix = "delete_season_confirm_"
	maxChoiceLength           = 100
)

func deleteSeasonButtonID(seasonID uint) string {
	return fmt.Sprintf("%s%d", deleteSeasonPrefix, seasonID)
}

func parseSeasonID(customID string, prefix string) (uint, bool) {
	if !strings.HasPrefix(customID, prefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(customID, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func HandleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	customID := i.MessageComponentData().CustomID

	seasonID, ok := parseSeasonID(customID, deleteSeasonPrefix)
	if !ok {
		log.Printf("Unknown component %s", customID)
		return
	}
	if !requireAdmin(s, i, cfg) {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			Title:    "Delete Season",
			CustomID: fmt.Sprintf("%s%d", deleteSeasonConfirmPrefix, seasonID),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "season_name",
							Label:       "Type the season name to confirm",
							Style:       discordgo.TextInputShort,
							Placeholder: "Season name",
							Required:    true,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Error presenting modal: %v", err)
	}
}

func HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, cfg *config.Config) {
	data := i.ModalSubmitData()

	seasonID, ok := parseSeasonID(data.CustomID, deleteSeasonConfirmPrefix)
	if !ok {
		log.Printf("Unknown modal %s", data.CustomID)
		return
	}
	if !requireAdmin(s, i, cfg) {
		return
	}

	typed := strings.TrimSpace(data.Components[0].(*discordgo.ActionsRow).Components[0].(*discordgo.TextInput).Value)

	var season models.Season
	if err := db.First(&season, seasonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Respond(s, i, "❌ That season no longer exists.", true)
			return
		}
		common.SendError(s, i, err, db)
		return
	}

	if typed != season.Name {
		common.Respond(s, i, fmt.Sprintf("❌ Name did not match **%s**. Nothing was deleted.", season.Name), true)
		return
	}

	if err := seasonService.DeleteSeason(db, season.Name); err != nil {
		common.SendError(s, i, err, db)
		return
	}
	common.Respond(s, i, fmt.Sprintf("✅ Season **%s** and all associated data have been deleted.", season.Name), true)
}

// focusedOption finds the option the user is typing in, looking inside
// subcommands too.
func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
		if found := focusedOption(opt.Options); found != nil {
			return found
		}
	}
	return nil
}

func choiceName(name string) string {
	if len(name) > maxChoiceLength {
		return name[:maxChoiceLength]
	}
	return name
}

// suggestions lists autocomplete choices for a player or team option.
func suggestions(db *gorm.DB, seasonID uint, focused *discordgo.ApplicationCommandInteractionDataOption) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	if focused == nil {
		return choices, nil
	}
	typed, _ := focused.Value.(string)

	switch focused.Name {
	case "player", "name":
		players, err := seasonService.SearchLeaguePlayers(db, seasonID, typed, seasonService.MaxSuggestions)
		if err != nil {
			return nil, err
		}
		for _, lp := range players {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choiceName(fmt.Sprintf("%s (%s)", lp.Name, lp.Team.Name)),
				Value: lp.Name,
			})
		}
	case "team":
		teams, err := seasonService.SearchTeams(db, seasonID, typed, seasonService.MaxSuggestions)
		if err != nil {
			return nil, err
		}
		for _, team := range teams {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choiceName(team.Name),
				Value: team.Name,
			})
		}
	}
	return choices, nil
}

func HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	season, err := seasonService.GetActiveSeason(db)
	if err == nil {
		choices, err = suggestions(db, season.ID, focusedOption(i.ApplicationCommandData().Options))
	}
	if err != nil && !errors.Is(err, seasonService.ErrNoActiveSeason) {
		log.Printf("Error building suggestions: %v", err)
	}
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Error sending suggestions: %v", err)
	}
}
