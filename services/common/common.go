package common

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"t2TrialsFantasyBot/config"
	"t2TrialsFantasyBot/models"
)

// IsAuthorized gates the admin commands. Bot owners always pass, guild
// members pass with Administrator or Manage Server, or with one of the
// configured league admin roles.
func IsAuthorized(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *config.Config) bool {
	userID := InteractionUserID(i)
	if userID == "" {
		return false
	}
	if cfg != nil && Contains(cfg.OwnerIDs, userID) {
		return true
	}

	// Use member data from the interaction - no privileged intent needed
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0 {
		return true
	}

	for _, roleID := range i.Member.Roles {
		if cfg != nil && Contains(cfg.AuthorizedRoleIDs, roleID) {
			return true
		}
		if s == nil {
			continue
		}

		role := lookupRole(s, i.GuildID, roleID)
		if role == nil {
			continue
		}
		if role.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0 {
			return true
		}
	}

	return false
}

func lookupRole(s *discordgo.Session, guildID string, roleID string) *discordgo.Role {
	role, err := s.State.Role(guildID, roleID)
	if err == nil && role != nil {
		return role
	}

	roles, err := s.GuildRoles(guildID)
	if err != nil {
		log.Printf("Error fetching roles from API: %v", err)
		return nil
	}
	for _, r := range roles {
		if r.ID == roleID {
			return r
		}
	}

	log.Printf("Role %s not found in guild %s", roleID, guildID)
	return nil
}

// InteractionUser returns whoever triggered the interaction, in a guild or a DM.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i == nil || i.Interaction == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func InteractionUserID(i *discordgo.InteractionCreate) string {
	if user := InteractionUser(i); user != nil {
		return user.ID
	}
	return ""
}

func commandName(i *discordgo.InteractionCreate) string {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	return i.ApplicationCommandData().Name
}

// SendError replies to the interaction with err and keeps a copy in the
// error log. i may be nil for errors raised outside an interaction.
func SendError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, db *gorm.DB) {
	log.WithField("command", commandName(i)).Error(err)

	guildId := ""
	if i != nil {
		guildId = i.GuildID
	}
	if i != nil && s != nil {
		localErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("An error occured: %v", err),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if localErr != nil {
			log.Printf("Error sending interaction: %v", localErr)
		}
	}

	if db == nil {
		return
	}
	errLog := models.ErrorLog{
		GuildID: guildId,
		Command: commandName(i),
		Message: fmt.Sprintf("%v", err),
	}
	if dbErr := db.Create(&errLog).Error; dbErr != nil {
		log.Printf("Error saving error log: %v", dbErr)
	}
}

// Respond sends a plain text reply, only visible to the caller when
// ephemeral is set.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error sending interaction: %v", err)
	}
}

func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error sending interaction: %v", err)
	}
}

// Defer acknowledges a slow command. The answer goes out with FollowUp.
func Defer(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func FollowUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	if err != nil {
		log.Printf("Error sending follow up: %v", err)
	}
}

// FollowUpError is SendError for a command that has already been deferred.
func FollowUpError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, db *gorm.DB) {
	FollowUp(s, i, fmt.Sprintf("An error occured: %v", err))
	SendError(nil, i, err, db)
}

func RespondUnauthorized(s *discordgo.Session, i *discordgo.InteractionCreate) {
	Respond(s, i, "You are not authorized to use this command.", true)
}

// GetUsernameFromUser extracts username from a discordgo.User object
func GetUsernameFromUser(user *discordgo.User) string {
	if user == nil {
		return "Unknown User"
	}
	username := user.GlobalName
	if username == "" {
		username = user.Username
	}
	if username == "" {
		return "Unknown User"
	}
	return username
}

// Options indexes the top level options of a slash command by name.
func Options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	return OptionMap(i.ApplicationCommandData().Options)
}

func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		byName[opt.Name] = opt
	}
	return byName
}

// StringOption returns the trimmed string value of name, or "" when the
// option was not given.
func StringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func IntOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (int, bool) {
	if opt, ok := opts[name]; ok {
		return int(opt.IntValue()), true
	}
	return 0, false
}

func BoolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, def bool) bool {
	if opt, ok := opts[name]; ok {
		return opt.BoolValue()
	}
	return def
}

// AttachmentURL resolves an attachment option to the file's download URL.
func AttachmentURL(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	opt, ok := opts[name]
	if !ok {
		return "", false
	}
	id, ok := opt.Value.(string)
	if !ok {
		return "", false
	}
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil || resolved.Attachments[id] == nil {
		return "", false
	}
	return resolved.Attachments[id].URL, true
}

func Contains[T comparable](s []T, e T) bool {
	for _, v := range s {
		if v == e {
			return true
		}
	}
	return false
}
