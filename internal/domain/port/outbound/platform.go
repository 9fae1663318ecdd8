package outbound

import (
	"context"
	"errors"
)

var (
	// ErrMissingPermission means the bot lacks a permission for the request.
	ErrMissingPermission = errors.New("missing permission")
	// ErrParentMissing means the parent category no longer exists.
	ErrParentMissing = errors.New("parent category missing")
	// ErrCategoryNotFound is returned by Category for unknown or non-category ids.
	ErrCategoryNotFound = errors.New("category not found")
)

type Category struct {
	ID   string
	Name string
}

type Channel struct {
	ID   string
	Name string
}

// ChannelRequest describes a private ticket channel. The adapter applies
// three overwrites: deny @everyone view, allow OwnerID view+send, allow BotID
// view+send+manage.
type ChannelRequest struct {
	GuildID  string
	Name     string
	ParentID string
	OwnerID  string
	BotID    string
	Topic    string
}

// Platform is the REST surface of the chat platform used by sessions.
type Platform interface {
	BotUserID() string
	Categories(ctx context.Context, guildID string) ([]Category, error)
	Category(ctx context.Context, guildID, categoryID string) (Category, error)
	CreateTicketChannel(ctx context.Context, req ChannelRequest) (Channel, error)
	PostMessage(ctx context.Context, channelID string, view View) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, view View) error
}
