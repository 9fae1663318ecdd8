package model

import (
	"errors"
	"time"
)

type Step string

const (
	StepCollectingTitle       Step = "collecting_title"
	StepCollectingDescription Step = "collecting_description"
	StepSelectingCategory     Step = "selecting_category"
	StepCompleted             Step = "completed"
	StepAborted               Step = "aborted"
	StepExpired               Step = "expired"
)

// IsTerminal reports whether no further transition may leave this step.
func (s Step) IsTerminal() bool {
	switch s {
	case StepCompleted, StepAborted, StepExpired:
		return true
	}
	return false
}

// Ordinal returns the position of a non-terminal step in the wizard, or -1.
func (s Step) Ordinal() int {
	switch s {
	case StepCollectingTitle:
		return 0
	case StepCollectingDescription:
		return 1
	case StepSelectingCategory:
		return 2
	}
	return -1
}

type AbortReason string

const (
	AbortMissingPermission AbortReason = "permission"
	AbortMissingParent     AbortReason = "missing_parent"
	AbortUnknown           AbortReason = "unknown"
)

var (
	ErrSessionTerminal = errors.New("session is in a terminal state")
	ErrStepOrder       = errors.New("wizard step out of order")
	ErrEmptyInput      = errors.New("input must not be empty")
)

// Collected accumulates wizard answers. Each field is empty until its step
// completes.
type Collected struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

// Session is one in-flight ticket wizard. It is a value: every transition
// returns a modified copy and leaves the receiver untouched.
type Session struct {
	Key             string      `json:"key"`
	AnchorChannelID string      `json:"anchor_channel_id"`
	GuildID         string      `json:"guild_id"`
	OwnerID         string      `json:"owner_id"`
	OwnerName       string      `json:"owner_name"`
	Step            Step        `json:"step"`
	Collected       Collected   `json:"collected"`
	TicketChannelID string      `json:"ticket_channel_id,omitempty"`
	AbortReason     AbortReason `json:"abort_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Deadline        time.Time   `json:"deadline"`
}

// NewSession returns a wizard at its first step. The anchor is attached once
// the first prompt has been posted.
func NewSession(guildID, ownerID, ownerName string, window time.Duration) Session {
	now := time.Now().UTC()
	return Session{
		GuildID:   guildID,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Step:      StepCollectingTitle,
		CreatedAt: now,
		Deadline:  now.Add(window),
	}
}

func (s Session) WithAnchor(messageID, channelID string) Session {
	s.Key = messageID
	s.AnchorChannelID = channelID
	return s
}

func (s Session) WithTitle(title string) (Session, error) {
	if err := s.expect(StepCollectingTitle); err != nil {
		return s, err
	}
	if title == "" {
		return s, ErrEmptyInput
	}
	s.Collected.Title = title
	s.Step = StepCollectingDescription
	return s, nil
}

func (s Session) WithDescription(description string) (Session, error) {
	if err := s.expect(StepCollectingDescription); err != nil {
		return s, err
	}
	if s.Collected.Title == "" {
		return s, ErrStepOrder
	}
	if description == "" {
		return s, ErrEmptyInput
	}
	s.Collected.Description = description
	s.Step = StepSelectingCategory
	return s, nil
}

// WithCategory records the chosen category. The step does not advance: the
// wizard only leaves SelectingCategory through Complete or Abort.
func (s Session) WithCategory(categoryID string) (Session, error) {
	if err := s.expect(StepSelectingCategory); err != nil {
		return s, err
	}
	if s.Collected.Description == "" {
		return s, ErrStepOrder
	}
	if categoryID == "" {
		return s, ErrEmptyInput
	}
	s.Collected.CategoryID = categoryID
	return s, nil
}

func (s Session) Complete(ticketChannelID string) (Session, error) {
	if err := s.expect(StepSelectingCategory); err != nil {
		return s, err
	}
	if s.Collected.CategoryID == "" {
		return s, ErrStepOrder
	}
	s.TicketChannelID = ticketChannelID
	s.Step = StepCompleted
	return s, nil
}

func (s Session) Abort(reason AbortReason) (Session, error) {
	if s.Step.IsTerminal() {
		return s, ErrSessionTerminal
	}
	s.AbortReason = reason
	s.Step = StepAborted
	return s, nil
}

func (s Session) Expire() (Session, error) {
	if s.Step.IsTerminal() {
		return s, ErrSessionTerminal
	}
	s.Step = StepExpired
	return s, nil
}

func (s Session) expect(step Step) error {
	if s.Step.IsTerminal() {
		return ErrSessionTerminal
	}
	if s.Step != step {
		return ErrStepOrder
	}
	return nil
}
