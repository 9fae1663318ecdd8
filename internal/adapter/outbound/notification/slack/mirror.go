package slack

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// Config selects how audit records reach Slack. WebhookURL takes precedence;
// otherwise BotToken and Channel post through the Web API.
type Config struct {
	WebhookURL string
	BotToken   string
	Channel    string
	// EventTypes limits mirroring to these types. Empty mirrors everything.
	EventTypes []string
	// APIURL overrides the Web API base URL.
	APIURL string
}

// Mirror implements outbound.AuditSink by posting records to Slack.
type Mirror struct {
	client *slackapi.Client
	config Config
	types  map[model.AuditEventType]bool
}

var _ outbound.AuditSink = (*Mirror)(nil)

func NewMirror(cfg Config) (*Mirror, error) {
	m := &Mirror{config: cfg}
	switch {
	case cfg.WebhookURL != "":
	case cfg.BotToken != "" && cfg.Channel != "":
		var opts []slackapi.Option
		if cfg.APIURL != "" {
			opts = append(opts, slackapi.OptionAPIURL(cfg.APIURL))
		}
		m.client = slackapi.New(cfg.BotToken, opts...)
	default:
		return nil, errors.New("slack mirror: webhookURL or botToken and channel are required")
	}
	if len(cfg.EventTypes) > 0 {
		m.types = make(map[model.AuditEventType]bool, len(cfg.EventTypes))
		for _, t := range cfg.EventTypes {
			m.types[model.AuditEventType(t)] = true
		}
	}
	return m, nil
}

func (m *Mirror) Name() string { return "slack" }

func (m *Mirror) Record(ctx context.Context, l model.AuditLog) error {
	if m.types != nil && !m.types[l.EventType] {
		return nil
	}
	blocks := BuildAuditBlocks(l)
	text := fmt.Sprintf("[%s] %s", l.EventType, l.Description)

	if m.config.WebhookURL != "" {
		err := slackapi.PostWebhookContext(ctx, m.config.WebhookURL, &slackapi.WebhookMessage{
			Text:   text,
			Blocks: &slackapi.Blocks{BlockSet: blocks},
		})
		if err != nil {
			return fmt.Errorf("slack webhook: %w", err)
		}
		return nil
	}

	_, _, err := m.client.PostMessageContext(ctx, m.config.Channel,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack post message: %w", err)
	}
	return nil
}

func eventEmoji(t model.AuditEventType) string {
	switch t {
	case model.AuditTicketCreated:
		return ":large_green_circle:"
	case model.AuditTicketAborted:
		return ":red_circle:"
	case model.AuditSessionExpired:
		return ":white_circle:"
	default:
		return ":large_blue_circle:"
	}
}

// BuildAuditBlocks renders one audit record as Block Kit blocks.
func BuildAuditBlocks(l model.AuditLog) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *%s*\n%s", eventEmoji(l.EventType), l.EventType, l.Description), false, false),
		nil, nil,
	)

	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Guild*\n`%s`", l.GuildID), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Actor*\n`%s`", l.Actor), false, false),
	}
	if l.ChannelID != "" {
		fields = append(fields, slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*Channel*\n`%s`", l.ChannelID), false, false))
	}
	if len(l.Metadata) > 0 {
		keys := make([]string, 0, len(l.Metadata))
		for k := range l.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, l.Metadata[k]))
		}
		fields = append(fields, slackapi.NewTextBlockObject(slackapi.MarkdownType, "*Details*\n"+strings.Join(lines, "\n"), false, false))
	}
	details := slackapi.NewSectionBlock(nil, fields, nil)

	footer := slackapi.NewContextBlock("",
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("session `%s` | %s", l.SessionKey, l.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")), false, false),
	)
	return []slackapi.Block{header, details, footer}
}
