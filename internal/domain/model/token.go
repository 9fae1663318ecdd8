package model

import "strings"

// Component custom ids. These are the only strings the platform echoes back
// to us; DecodeToken turns them into typed tokens once, at the edge.
const (
	CustomIDOpenTitle       = "ticket:open-title"
	CustomIDTitleModal      = "ticket:title"
	CustomIDTitleInput      = "ticket:title-input"
	CustomIDOpenDescription = "ticket:open-description"
	CustomIDDescModal       = "ticket:description"
	CustomIDDescInput       = "ticket:description-input"
	CustomIDCategorySelect  = "ticket:category"
	CustomIDHelpPrev        = "help:prev"
	CustomIDHelpNext        = "help:next"
)

// Token is a decoded continuation event. The set of implementations is
// closed: only this package can add variants.
type Token interface {
	token()
}

// WizardToken is a Token that drives the ticket wizard.
type WizardToken interface {
	Token
	// Step is the wizard step the token is valid for.
	Step() Step
}

// PageToken is a Token that drives a pagination view.
type PageToken interface {
	Token
	// Delta is the index movement the token requests.
	Delta() int
}

type OpenTitlePrompt struct{}

type SubmitTitle struct{ Title string }

type OpenDescriptionPrompt struct{}

type SubmitDescription struct{ Description string }

type SelectCategory struct{ CategoryID string }

type PagePrev struct{}

type PageNext struct{}

// Unknown wraps a custom id this build does not recognize.
type Unknown struct{ CustomID string }

func (OpenTitlePrompt) token()       {}
func (SubmitTitle) token()           {}
func (OpenDescriptionPrompt) token() {}
func (SubmitDescription) token()     {}
func (SelectCategory) token()        {}
func (PagePrev) token()              {}
func (PageNext) token()              {}
func (Unknown) token()               {}

func (OpenTitlePrompt) Step() Step       { return StepCollectingTitle }
func (SubmitTitle) Step() Step           { return StepCollectingTitle }
func (OpenDescriptionPrompt) Step() Step { return StepCollectingDescription }
func (SubmitDescription) Step() Step     { return StepCollectingDescription }
func (SelectCategory) Step() Step        { return StepSelectingCategory }

func (PagePrev) Delta() int { return -1 }
func (PageNext) Delta() int { return 1 }

// DecodeToken maps a continuation envelope to its typed token. Text inputs
// are trimmed here so that later stages only ever see normalized payloads.
func DecodeToken(env Envelope) Token {
	switch {
	case env.Kind == EventButton && env.CustomID == CustomIDOpenTitle:
		return OpenTitlePrompt{}
	case env.Kind == EventModalSubmit && env.CustomID == CustomIDTitleModal:
		return SubmitTitle{Title: strings.TrimSpace(env.Field(CustomIDTitleInput))}
	case env.Kind == EventButton && env.CustomID == CustomIDOpenDescription:
		return OpenDescriptionPrompt{}
	case env.Kind == EventModalSubmit && env.CustomID == CustomIDDescModal:
		return SubmitDescription{Description: strings.TrimSpace(env.Field(CustomIDDescInput))}
	case env.Kind == EventSelectMenu && env.CustomID == CustomIDCategorySelect:
		return SelectCategory{CategoryID: strings.TrimSpace(env.FirstValue())}
	case env.Kind == EventButton && env.CustomID == CustomIDHelpPrev:
		return PagePrev{}
	case env.Kind == EventButton && env.CustomID == CustomIDHelpNext:
		return PageNext{}
	}
	return Unknown{CustomID: env.CustomID}
}
