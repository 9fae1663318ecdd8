package model

// EventKind classifies an inbound platform event.
type EventKind string

const (
	EventCommand        EventKind = "command"
	EventButton         EventKind = "button"
	EventModalSubmit    EventKind = "modal_submit"
	EventSelectMenu     EventKind = "select_menu"
	EventReactionAdd    EventKind = "reaction_add"
	EventReactionRemove EventKind = "reaction_remove"
)

// IsContinuation reports whether events of this kind can only act on an
// already-running session.
func (k EventKind) IsContinuation() bool {
	switch k {
	case EventButton, EventModalSubmit, EventSelectMenu:
		return true
	}
	return false
}

// Envelope is the normalized, immutable form of one inbound event. It lives
// for a single delivery and is never persisted.
type Envelope struct {
	Kind           EventKind
	CommandName    string
	CustomID       string
	OriginatorID   string
	OriginatorName string
	GuildID        string
	ChannelID      string
	// MessageID is the message the triggering component is attached to. For
	// continuation events it is the session key.
	MessageID string
	// Fields holds modal text inputs keyed by input id.
	Fields map[string]string
	// Values holds select-menu choices in the order the platform sent them.
	Values []string
}

// Field returns the named modal input, or "" if absent.
func (e Envelope) Field(id string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[id]
}

// FirstValue returns the first select-menu value, or "" if none was sent.
func (e Envelope) FirstValue() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}
