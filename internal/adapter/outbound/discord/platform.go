package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/discordbot/template"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// RESTClient is the subset of *discordgo.Session the platform adapter uses.
type RESTClient interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const (
	ownerAllow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	botAllow   = ownerAllow | discordgo.PermissionManageChannels
)

var errNoBotID = errors.New("bot user id is unknown")

// Platform implements outbound.Platform over the Discord REST API.
type Platform struct {
	api    RESTClient
	botID  string
	logger *slog.Logger
}

var _ outbound.Platform = (*Platform)(nil)

func NewPlatform(api RESTClient, botID string, logger *slog.Logger) *Platform {
	return &Platform{api: api, botID: botID, logger: logger}
}

func (p *Platform) BotUserID() string { return p.botID }

// Categories lists the guild's channel categories in display order.
func (p *Platform) Categories(ctx context.Context, guildID string) ([]outbound.Category, error) {
	channels, err := p.api.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(fmt.Errorf("list guild channels: %w", err))
	}
	var cats []*discordgo.Channel
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			cats = append(cats, ch)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Position < cats[j].Position })

	out := make([]outbound.Category, 0, len(cats))
	for _, ch := range cats {
		out = append(out, outbound.Category{ID: ch.ID, Name: ch.Name})
	}
	return out, nil
}

// Category resolves one category of guildID against live state.
func (p *Platform) Category(ctx context.Context, guildID, categoryID string) (outbound.Category, error) {
	ch, err := p.api.Channel(categoryID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownChannel(err) {
			return outbound.Category{}, fmt.Errorf("category %s: %w", categoryID, outbound.ErrCategoryNotFound)
		}
		return outbound.Category{}, classify(fmt.Errorf("fetch category: %w", err))
	}
	if ch.Type != discordgo.ChannelTypeGuildCategory || ch.GuildID != guildID {
		return outbound.Category{}, fmt.Errorf("channel %s is not a category of guild %s: %w", categoryID, guildID, outbound.ErrCategoryNotFound)
	}
	return outbound.Category{ID: ch.ID, Name: ch.Name}, nil
}

// CreateTicketChannel creates a text channel visible only to the owner and
// the bot.
func (p *Platform) CreateTicketChannel(ctx context.Context, req outbound.ChannelRequest) (outbound.Channel, error) {
	if req.BotID == "" {
		return outbound.Channel{}, fmt.Errorf("create ticket channel: %w", errNoBotID)
	}
	overwrites := []*discordgo.PermissionOverwrite{
		// The @everyone role shares the guild's id.
		{ID: req.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: req.OwnerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ownerAllow},
		{ID: req.BotID, Type: discordgo.PermissionOverwriteTypeMember, Allow: botAllow},
	}

	ch, err := p.api.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownChannel(err) {
			return outbound.Channel{}, fmt.Errorf("create ticket channel: %w: %w", outbound.ErrParentMissing, err)
		}
		return outbound.Channel{}, classify(fmt.Errorf("create ticket channel: %w", err))
	}
	p.logger.Debug("ticket channel created", "guildID", req.GuildID, "channelID", ch.ID, "name", ch.Name)
	return outbound.Channel{ID: ch.ID, Name: ch.Name}, nil
}

func (p *Platform) PostMessage(ctx context.Context, channelID string, view outbound.View) (outbound.MessageRef, error) {
	msg, err := p.api.ChannelMessageSendComplex(channelID, template.BuildMessageSend(view), discordgo.WithContext(ctx))
	if err != nil {
		return outbound.MessageRef{}, classify(fmt.Errorf("post message: %w", err))
	}
	return outbound.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (p *Platform) EditMessage(ctx context.Context, ref outbound.MessageRef, view outbound.View) error {
	if _, err := p.api.ChannelMessageEditComplex(template.BuildMessageEdit(ref, view), discordgo.WithContext(ctx)); err != nil {
		return classify(fmt.Errorf("edit message: %w", err))
	}
	return nil
}

// classify tags permission failures with outbound.ErrMissingPermission.
func classify(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %w", outbound.ErrMissingPermission, err)
		}
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", outbound.ErrMissingPermission, err)
	}
	return err
}

func isUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel
}
