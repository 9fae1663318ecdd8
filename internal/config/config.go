package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. HELPDESK_DISCORD_TOKEN.
const EnvPrefix = "HELPDESK_"

const (
	TransportGateway = "gateway"
	TransportHTTP    = "http"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Discord  DiscordConfig  `yaml:"discord" envPrefix:"DISCORD_"`
	Sessions SessionsConfig `yaml:"sessions" envPrefix:"SESSIONS_"`
	Tickets  TicketsConfig  `yaml:"tickets" envPrefix:"TICKETS_"`
	Audit    AuditConfig    `yaml:"audit" envPrefix:"AUDIT_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING_"`
}

type ServerConfig struct {
	// Port serves the HTTP interactions endpoint; unused with the gateway
	// transport.
	Port              int           `yaml:"port" env:"PORT"`
	ReadTimeout       time.Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout      time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
	OpsPort           int           `yaml:"opsPort" env:"OPS_PORT"`
	RequestsPerMinute int           `yaml:"requestsPerMinute" env:"REQUESTS_PER_MINUTE"`
	TrustProxy        bool          `yaml:"trustProxy" env:"TRUST_PROXY"`
}

type DiscordConfig struct {
	Token         string `yaml:"token" env:"TOKEN"`
	ApplicationID string `yaml:"applicationID" env:"APPLICATION_ID"`
	// GuildID scopes command registration. Empty registers globally.
	GuildID          string        `yaml:"guildID" env:"GUILD_ID"`
	PublicKey        string        `yaml:"publicKey" env:"PUBLIC_KEY"`
	Transport        string        `yaml:"transport" env:"TRANSPORT"`
	RegisterCommands bool          `yaml:"registerCommands" env:"REGISTER_COMMANDS"`
	HandlerTimeout   time.Duration `yaml:"handlerTimeout" env:"HANDLER_TIMEOUT"`
	AckTimeout       time.Duration `yaml:"ackTimeout" env:"ACK_TIMEOUT"`
}

type SessionsConfig struct {
	WizardTimeout     time.Duration `yaml:"wizardTimeout" env:"WIZARD_TIMEOUT"`
	PaginationTimeout time.Duration `yaml:"paginationTimeout" env:"PAGINATION_TIMEOUT"`
	HelpPageSize      int           `yaml:"helpPageSize" env:"HELP_PAGE_SIZE"`
	// EffectTimeout bounds each platform call made outside an interaction,
	// such as stripping an expired anchor.
	EffectTimeout time.Duration `yaml:"effectTimeout" env:"EFFECT_TIMEOUT"`
}

type TicketsConfig struct {
	NamePrefix    string `yaml:"namePrefix" env:"NAME_PREFIX"`
	MaxSlugLength int    `yaml:"maxSlugLength" env:"MAX_SLUG_LENGTH"`
}

type AuditConfig struct {
	DispatchTimeout time.Duration     `yaml:"dispatchTimeout" env:"DISPATCH_TIMEOUT"`
	SQLite          SQLiteConfig      `yaml:"sqlite" envPrefix:"SQLITE_"`
	Slack           SlackMirrorConfig `yaml:"slack" envPrefix:"SLACK_"`
}

type SQLiteConfig struct {
	Enabled           bool   `yaml:"enabled" env:"ENABLED"`
	Path              string `yaml:"path" env:"PATH"`
	MaxOpenConns      int    `yaml:"maxOpenConns" env:"MAX_OPEN_CONNS"`
	PragmaJournalMode string `yaml:"pragmaJournalMode" env:"PRAGMA_JOURNAL_MODE"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout" env:"PRAGMA_BUSY_TIMEOUT"`
	// Retention prunes older records hourly. Zero keeps everything.
	Retention time.Duration `yaml:"retention" env:"RETENTION"`
}

// SlackMirrorConfig is enabled by a webhook URL, or by a bot token plus a
// channel.
type SlackMirrorConfig struct {
	WebhookURL string   `yaml:"webhookURL" env:"WEBHOOK_URL"`
	BotToken   string   `yaml:"botToken" env:"BOT_TOKEN"`
	Channel    string   `yaml:"channel" env:"CHANNEL"`
	EventTypes []string `yaml:"eventTypes" env:"EVENT_TYPES" envSeparator:","`
}

func (c SlackMirrorConfig) Enabled() bool {
	return c.WebhookURL != "" || (c.BotToken != "" && c.Channel != "")
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	Output string `yaml:"output" env:"OUTPUT"`
}

// Load reads a YAML config file, applies HELPDESK_* environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			OpsPort:           9090,
			RequestsPerMinute: 600,
		},
		Discord: DiscordConfig{
			Transport:        TransportGateway,
			RegisterCommands: true,
			HandlerTimeout:   30 * time.Second,
			AckTimeout:       2500 * time.Millisecond,
		},
		Sessions: SessionsConfig{
			WizardTimeout:     180 * time.Second,
			PaginationTimeout: 60 * time.Second,
			HelpPageSize:      3,
			EffectTimeout:     10 * time.Second,
		},
		Tickets: TicketsConfig{
			NamePrefix:    "ticket-",
			MaxSlugLength: 80,
		},
		Audit: AuditConfig{
			DispatchTimeout: 5 * time.Second,
			SQLite: SQLiteConfig{
				Enabled:           true,
				Path:              "/data/helpdesk-bot.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
