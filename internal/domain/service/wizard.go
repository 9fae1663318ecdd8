package service

import (
	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// Instruction is one render or side-effect step produced by a transition.
// The router executes instructions in order.
type Instruction interface {
	instruction()
}

// OpenModal answers the event with a popup form.
type OpenModal struct{ Modal outbound.Modal }

// RenderStep re-renders the anchor for the transition's session. Notice is
// shown inline when non-empty.
type RenderStep struct{ Notice string }

// Reject answers only the triggering user; the anchor is untouched.
type Reject struct{ Notice string }

// CreateTicket performs the one-time terminal effect.
type CreateTicket struct{}

func (OpenModal) instruction()    {}
func (RenderStep) instruction()   {}
func (Reject) instruction()       {}
func (CreateTicket) instruction() {}

// Transition is the result of feeding one token to the wizard.
type Transition struct {
	Session      model.Session
	Instructions []Instruction
	// Invalid is set when the token was well-formed for the step but its
	// payload failed validation. Session is then unchanged.
	Invalid *ValidationError
}

// Wizard is the ticket wizard's transition function. It performs no I/O.
type Wizard struct {
	TitleMaxLength       int
	DescriptionMaxLength int
}

func NewWizard() Wizard {
	return Wizard{TitleMaxLength: 100, DescriptionMaxLength: 1000}
}

// Advance applies tok to s. It fails only for terminal sessions; every other
// outcome, including rejected input, is expressed as instructions.
func (w Wizard) Advance(s model.Session, tok model.WizardToken) (Transition, error) {
	if s.Step.IsTerminal() {
		return Transition{Session: s}, model.ErrSessionTerminal
	}
	if tok.Step() != s.Step {
		return Transition{Session: s, Instructions: []Instruction{Reject{Notice: NoticeStepDone}}}, nil
	}

	switch tok := tok.(type) {
	case model.OpenTitlePrompt:
		return w.prompt(s, w.titleModal()), nil
	case model.OpenDescriptionPrompt:
		return w.prompt(s, w.descriptionModal()), nil
	case model.SubmitTitle:
		next, err := s.WithTitle(tok.Title)
		if err != nil {
			return invalid(s, "The title can't be empty.", err), nil
		}
		return rendered(next), nil
	case model.SubmitDescription:
		next, err := s.WithDescription(tok.Description)
		if err != nil {
			return invalid(s, "The description can't be empty.", err), nil
		}
		return rendered(next), nil
	case model.SelectCategory:
		next, err := s.WithCategory(tok.CategoryID)
		if err != nil {
			return invalid(s, "Pick a category from the list.", err), nil
		}
		return Transition{Session: next, Instructions: []Instruction{CreateTicket{}}}, nil
	}
	return Transition{Session: s, Instructions: []Instruction{Reject{Notice: NoticeUnknownControl}}}, nil
}

func (w Wizard) prompt(s model.Session, m outbound.Modal) Transition {
	return Transition{Session: s, Instructions: []Instruction{OpenModal{Modal: m}}}
}

func rendered(s model.Session) Transition {
	return Transition{Session: s, Instructions: []Instruction{RenderStep{}}}
}

func invalid(s model.Session, notice string, err error) Transition {
	return Transition{
		Session:      s,
		Instructions: []Instruction{RenderStep{Notice: notice}},
		Invalid:      &ValidationError{Notice: notice, Err: err},
	}
}

func (w Wizard) titleModal() outbound.Modal {
	return outbound.Modal{
		CustomID: model.CustomIDTitleModal,
		Title:    "Ticket title",
		Inputs: []outbound.TextInput{{
			CustomID:    model.CustomIDTitleInput,
			Label:       "Title",
			Placeholder: "A short summary of the problem",
			Required:    true,
			MinLength:   1,
			MaxLength:   w.TitleMaxLength,
		}},
	}
}

func (w Wizard) descriptionModal() outbound.Modal {
	return outbound.Modal{
		CustomID: model.CustomIDDescModal,
		Title:    "Ticket description",
		Inputs: []outbound.TextInput{{
			CustomID:    model.CustomIDDescInput,
			Label:       "Description",
			Placeholder: "What happened, and what have you tried?",
			Paragraph:   true,
			Required:    true,
			MinLength:   1,
			MaxLength:   w.DescriptionMaxLength,
		}},
	}
}
