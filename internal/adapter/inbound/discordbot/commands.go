package discordbot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// CommandSpec describes one slash command to register.
type CommandSpec struct {
	Name        string
	Description string
}

// CommandRegistrar is the subset of *discordgo.Session used to publish
// slash commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands with specs. An empty
// guildID registers them globally.
func RegisterCommands(ctx context.Context, api CommandRegistrar, appID, guildID string, specs []CommandSpec) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		return nil, fmt.Errorf("register commands: application id is required")
	}
	cmds := make([]*discordgo.ApplicationCommand, 0, len(specs))
	for _, s := range specs {
		cmds = append(cmds, &discordgo.ApplicationCommand{
			Name:        s.Name,
			Description: s.Description,
			Type:        discordgo.ChatApplicationCommand,
		})
	}
	created, err := api.ApplicationCommandBulkOverwrite(appID, guildID, cmds, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return created, nil
}
