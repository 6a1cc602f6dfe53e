package messageService

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"t2TrialsFantasyBot/models"
	"t2TrialsFantasyBot/services/importService"
	"t2TrialsFantasyBot/services/scoringService"
	"t2TrialsFantasyBot/services/seasonService"
	"t2TrialsFantasyBot/services/transferService"
)

const (
	colorTeam        = 0x3498DB
	colorLeaderboard = 0x00ff00
	colorStats       = 0x9B59B6
	colorSeason      = 0xF1C40F

	discordFieldValueLimit = 1024
	maxProblemLines        = 10
)

func truncate(value string) string {
	if len(value) > discordFieldValueLimit {
		return value[:discordFieldValueLimit-3] + "..."
	}
	return value
}

// DisplayName prefers the stored username and falls back to a mention.
func DisplayName(fp models.FantasyPlayer) string {
	if fp.Username != nil && *fp.Username != "" {
		return *fp.Username
	}
	return fmt.Sprintf("<@%s>", fp.DiscordID)
}

func TeamEmbed(fp models.FantasyPlayer, roster []models.LeaguePlayer, maxSize int, phase string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🛡 %s's Fantasy Team", DisplayName(fp)),
		Color: colorTeam,
	}

	if len(roster) == 0 {
		embed.Description = "Your team is empty. Use `/pickplayer` to draft someone."
	} else {
		var lines []string
		value := 0
		for idx, lp := range roster {
			value += lp.Cost
			lines = append(lines, fmt.Sprintf("**%d. %s** (%s) - cost %d, %d pts",
				idx+1, lp.Name, lp.Team.Name, lp.Cost, scoringService.PlayerSeasonPoints(lp.Performance)))
		}
		embed.Description = strings.Join(lines, "\n")
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Team Value",
			Value:  fmt.Sprintf("%d", value),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Roster", Value: fmt.Sprintf("%d/%d", len(fp.Team), maxSize), Inline: true},
		&discordgo.MessageEmbedField{Name: "Wallet", Value: fmt.Sprintf("%d", fp.Wallet), Inline: true},
		&discordgo.MessageEmbedField{Name: "Total Points", Value: fmt.Sprintf("%d", fp.TotalPoints), Inline: true},
		&discordgo.MessageEmbedField{Name: "Phase", Value: phase, Inline: true},
	)
	return embed
}

func ScoreMessage(score scoringService.Score) string {
	if score.Week != nil {
		return fmt.Sprintf("📊 Week %d: **%d** points. Season total: **%d**.", *score.Week, score.WeekPoints, score.TotalPoints)
	}

	if len(score.WeeklyPoints) == 0 {
		return fmt.Sprintf("📊 Season total: **%d** points.", score.TotalPoints)
	}
	weeks := make([]string, len(score.WeeklyPoints))
	for idx, pts := range score.WeeklyPoints {
		weeks[idx] = fmt.Sprintf("W%d: %d", idx+1, pts)
	}
	return fmt.Sprintf("📊 Season total: **%d** points.\n%s", score.TotalPoints, strings.Join(weeks, " | "))
}

func LeaderboardEmbed(players []models.FantasyPlayer) *discordgo.MessageEmbed {
	description := ""
	for idx, fp := range players {
		description += fmt.Sprintf("**%d. %s** - %d points\n", idx+1, DisplayName(fp), fp.TotalPoints)
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: description,
		Color:       colorLeaderboard,
	}
}

func PlayerStatsEmbed(lp models.LeaguePlayer) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📈 %s (%s)", lp.Name, lp.Team.Name),
		Color: colorStats,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Cost", Value: fmt.Sprintf("%d", lp.Cost), Inline: true},
			{Name: "Fantasy Points", Value: fmt.Sprintf("%d", scoringService.PlayerSeasonPoints(lp.Performance)), Inline: true},
		},
	}

	if len(lp.Performance) == 0 {
		embed.Description = "No games recorded yet."
		return embed
	}

	wins, losses := 0, 0
	var lines []string
	for _, entry := range lp.Performance {
		wins += entry.Wins
		losses += entry.Losses
		lines = append(lines, fmt.Sprintf("Week %d: %d-%d, %d pts",
			entry.Week, entry.Wins, entry.Losses, scoringService.WeekPoints(lp.Performance, entry.Week)))
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Record", Value: fmt.Sprintf("%d-%d", wins, losses), Inline: true},
		&discordgo.MessageEmbedField{Name: "Weeks", Value: truncate(strings.Join(lines, "\n")), Inline: false},
	)
	return embed
}

func ImportMessage(result importService.ImportResult) string {
	msg := "✅ Import finished. " + result.Summary()
	if len(result.Problems) == 0 {
		return msg
	}

	problems := result.Problems
	more := 0
	if len(problems) > maxProblemLines {
		more = len(problems) - maxProblemLines
		problems = problems[:maxProblemLines]
	}
	msg += "\n```\n" + strings.Join(problems, "\n") + "\n```"
	if more > 0 {
		msg += fmt.Sprintf("\n...and %d more", more)
	}
	return msg
}

func MatchMessage(result importService.MatchResult) string {
	verb := "Created"
	if result.Replaced {
		verb = "Replaced"
	}

	winner := "draw"
	switch result.Match.Winner {
	case models.SideA:
		winner = result.TeamA.Name
	case models.SideB:
		winner = result.TeamB.Name
	}

	return fmt.Sprintf("✅ %s week %d match **%s** vs **%s** (%d sets, winner: %s).",
		verb, result.Match.Week, result.TeamA.Name, result.TeamB.Name, len(result.Match.Sets), winner)
}

func PhaseMessage(change transferService.PhaseChange) string {
	msg := fmt.Sprintf("✅ Phase changed from **%s** to **%s**.", change.Previous, change.Current)
	if change.Snapshotted {
		msg += fmt.Sprintf(" Snapshot taken for %d teams.", change.Rosters)
	}
	return msg
}

func rank(idx int) string {
	switch idx {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", idx+1)
	}
}

func PlayerLeaderboardEmbed(seasonName string, week *int, standings []scoringService.PlayerStanding) *discordgo.MessageEmbed {
	title := fmt.Sprintf("🏆 %s Player Leaderboard", seasonName)
	if week != nil {
		title = fmt.Sprintf("🏆 %s Week %d Player Leaderboard", seasonName, *week)
	}

	var lines []string
	for idx, st := range standings {
		lines = append(lines, fmt.Sprintf("%s **%s** (%s) - %d pts | %dW/%dL",
			rank(idx), st.Player.Name, st.Player.Team.Name, st.Points, st.Wins, st.Losses))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "No league players yet."
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorLeaderboard,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Top %d players", len(standings))},
	}
}

func MostPickedEmbed(seasonName string, counts []seasonService.PickCount) *discordgo.MessageEmbed {
	var lines []string
	for idx, c := range counts {
		lines = append(lines, fmt.Sprintf("%s **%s** (%s) - %d picks", rank(idx), c.Player.Name, c.Player.Team.Name, c.Picks))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "No league players yet."
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 Most-Picked Players (%s)", seasonName),
		Description: description,
		Color:       colorStats,
	}
}

func TeamStatsEmbed(record seasonService.TeamRecord) *discordgo.MessageEmbed {
	title := fmt.Sprintf("🛡 %s - Overall", record.Team.Name)
	if record.Week != nil {
		title = fmt.Sprintf("🛡 %s - Week %d", record.Team.Name, *record.Week)
	}

	var lines []string
	for _, row := range record.Players {
		lines = append(lines, fmt.Sprintf("• %s: %d-%d", row.Player.Name, row.Wins, row.Losses))
	}
	description := strings.Join(lines, "\n")
	if description == "" {
		description = "No players recorded."
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorTeam,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Team total: %d-%d", record.Wins, record.Losses)},
	}
}

func SeasonInfoEmbed(info seasonService.SeasonInfo) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📘 %s", info.Season.Name),
		Color: colorSeason,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created", Value: fmt.Sprintf("<t:%d:R>", info.Season.CreatedAt.Unix()), Inline: true},
			{Name: "Phase", Value: info.Config.Phase, Inline: true},
			{Name: "Current Week", Value: fmt.Sprintf("%d", info.Config.CurrentWeek), Inline: true},
			{Name: "Playoff Swap Limit", Value: fmt.Sprintf("%d", info.Config.PlayoffSwapLimit), Inline: true},
			{Name: "Max Team Size", Value: fmt.Sprintf("%d", info.Season.TeamSizeLimit()), Inline: true},
			{Name: "Teams", Value: fmt.Sprintf("%d", info.Teams), Inline: true},
			{Name: "League Players", Value: fmt.Sprintf("%d", info.LeaguePlayers), Inline: true},
			{Name: "Fantasy Managers", Value: fmt.Sprintf("%d", info.FantasyPlayers), Inline: true},
		},
	}
}

func SubstitutionMessage(result seasonService.SubstitutionResult) string {
	return fmt.Sprintf("✅ Updated %s for **%s** (was %s). Now team **%s**, cost %d.",
		result.Field, result.Player.Name, result.Previous, result.Player.Team.Name, result.Player.Cost)
}
