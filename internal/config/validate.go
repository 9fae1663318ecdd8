package config

import (
	"fmt"
	"strings"
)

// Discord caps channel names at 100 characters.
const maxChannelNameLength = 100

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Discord.Token == "" {
		errs = append(errs, "discord.token is required")
	}

	switch cfg.Discord.Transport {
	case TransportGateway:
	case TransportHTTP:
		if cfg.Discord.PublicKey == "" {
			errs = append(errs, "discord.publicKey is required when transport is http")
		}
		if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if cfg.Server.RequestsPerMinute <= 0 {
			errs = append(errs, "server.requestsPerMinute must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("discord.transport must be gateway or http (got %q)", cfg.Discord.Transport))
	}

	if cfg.Discord.RegisterCommands && cfg.Discord.ApplicationID == "" {
		errs = append(errs, "discord.applicationID is required when registerCommands is true")
	}

	if cfg.Server.OpsPort < 0 || cfg.Server.OpsPort > 65535 {
		errs = append(errs, "server.opsPort must be between 0 and 65535")
	}
	if cfg.Server.OpsPort != 0 && cfg.Discord.Transport == TransportHTTP && cfg.Server.OpsPort == cfg.Server.Port {
		errs = append(errs, "server.opsPort must differ from server.port")
	}

	if cfg.Sessions.WizardTimeout <= 0 {
		errs = append(errs, "sessions.wizardTimeout must be positive")
	}
	if cfg.Sessions.PaginationTimeout <= 0 {
		errs = append(errs, "sessions.paginationTimeout must be positive")
	}
	if cfg.Sessions.HelpPageSize < 1 || cfg.Sessions.HelpPageSize > 25 {
		errs = append(errs, "sessions.helpPageSize must be between 1 and 25")
	}

	if cfg.Tickets.MaxSlugLength < 1 {
		errs = append(errs, "tickets.maxSlugLength must be positive")
	}
	if len(cfg.Tickets.NamePrefix)+cfg.Tickets.MaxSlugLength > maxChannelNameLength {
		errs = append(errs, fmt.Sprintf("tickets.namePrefix plus tickets.maxSlugLength must not exceed %d", maxChannelNameLength))
	}
	if cfg.Tickets.NamePrefix != strings.ToLower(cfg.Tickets.NamePrefix) || strings.ContainsAny(cfg.Tickets.NamePrefix, " #") {
		errs = append(errs, "tickets.namePrefix must be lowercase without spaces or '#'")
	}

	if cfg.Audit.SQLite.Enabled && cfg.Audit.SQLite.Path == "" {
		errs = append(errs, "audit.sqlite.path is required when sqlite is enabled")
	}
	if cfg.Audit.SQLite.Retention < 0 {
		errs = append(errs, "audit.sqlite.retention must not be negative")
	}
	if s := cfg.Audit.Slack; s.WebhookURL == "" && (s.BotToken != "") != (s.Channel != "") {
		errs = append(errs, "audit.slack.botToken and audit.slack.channel must be set together")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level must be debug, info, warn, or error (got %q)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
