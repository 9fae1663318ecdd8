package service

import (
	"fmt"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// maxSelectOptions is the platform limit on options per select menu.
const maxSelectOptions = 25

// WizardStepView renders a non-terminal wizard step. categories is only used
// for SelectingCategory.
func WizardStepView(s model.Session, categories []outbound.Category, notice string) outbound.View {
	v := outbound.View{
		Title:  "Open a support ticket",
		Tone:   outbound.ToneInfo,
		Fields: collectedFields(s.Collected, ""),
		Footer: fmt.Sprintf("Started by %s. Only they can use these controls.", ownerLabel(s)),
	}
	if notice != "" {
		v.Content = ":warning: " + notice
		v.Tone = outbound.ToneWarning
	}

	switch s.Step {
	case model.StepCollectingTitle:
		v.Body = "**Step 1 of 3:** give your ticket a short title."
		v.Buttons = []outbound.Button{{CustomID: model.CustomIDOpenTitle, Label: "Add title", Style: outbound.ButtonPrimary}}
	case model.StepCollectingDescription:
		v.Body = "**Step 2 of 3:** describe the problem."
		v.Buttons = []outbound.Button{{CustomID: model.CustomIDOpenDescription, Label: "Add description", Style: outbound.ButtonPrimary}}
	case model.StepSelectingCategory:
		v.Body = "**Step 3 of 3:** choose where the ticket should go."
		opts := make([]outbound.SelectOption, 0, min(len(categories), maxSelectOptions))
		for _, c := range categories {
			if len(opts) == maxSelectOptions {
				break
			}
			opts = append(opts, outbound.SelectOption{Label: c.Name, Value: c.ID})
		}
		v.Select = &outbound.Select{
			CustomID:    model.CustomIDCategorySelect,
			Placeholder: "Select a category",
			Options:     opts,
		}
	}
	return v
}

func CompletedView(s model.Session, category outbound.Category) outbound.View {
	return outbound.View{
		Title:  "Ticket created",
		Body:   fmt.Sprintf("Your ticket is ready: <#%s>", s.TicketChannelID),
		Tone:   outbound.ToneSuccess,
		Fields: collectedFields(s.Collected, category.Name),
	}
}

func AbortedView(s model.Session) outbound.View {
	var body string
	switch s.AbortReason {
	case model.AbortMissingPermission:
		body = "I don't have permission to create the ticket channel. Ask a server admin to check my role, then run `/ticket` again."
	case model.AbortMissingParent:
		body = "The selected category no longer exists. Run `/ticket` again and pick another category."
	default:
		body = "Creating the ticket failed. Run `/ticket` again."
	}
	return outbound.View{
		Title:  "Ticket not created",
		Body:   body,
		Tone:   outbound.ToneError,
		Fields: collectedFields(s.Collected, ""),
	}
}

func ExpiredWizardView(s model.Session) outbound.View {
	return outbound.View{
		Title:  "Ticket wizard expired",
		Body:   "No response within the time limit. Run `/ticket` to start over.",
		Tone:   outbound.ToneMuted,
		Fields: collectedFields(s.Collected, ""),
	}
}

// WelcomeView is posted once in a freshly created ticket channel.
func WelcomeView(s model.Session, category outbound.Category) outbound.View {
	return outbound.View{
		Content: fmt.Sprintf("<@%s> welcome! Staff will be with you shortly.", s.OwnerID),
		Title:   s.Collected.Title,
		Body:    s.Collected.Description,
		Tone:    outbound.ToneInfo,
		Fields: []outbound.ViewField{
			{Name: "Category", Value: category.Name, Inline: true},
			{Name: "Opened by", Value: fmt.Sprintf("<@%s>", s.OwnerID), Inline: true},
		},
	}
}

// HelpView renders the current page. Prev is disabled on the first page and
// next on the last, so a single page has both disabled.
func HelpView(v model.PaginationView) outbound.View {
	page := v.Current()
	fields := make([]outbound.ViewField, 0, len(page.Fields))
	for _, f := range page.Fields {
		fields = append(fields, outbound.ViewField{Name: f.Name, Value: f.Value})
	}
	return outbound.View{
		Title:  page.Title,
		Body:   page.Body,
		Tone:   outbound.ToneInfo,
		Fields: fields,
		Footer: fmt.Sprintf("Page %d of %d", v.Index+1, max(len(v.Pages), 1)),
		Buttons: []outbound.Button{
			{CustomID: model.CustomIDHelpPrev, Label: "Previous", Style: outbound.ButtonSecondary, Disabled: !v.HasPrev()},
			{CustomID: model.CustomIDHelpNext, Label: "Next", Style: outbound.ButtonSecondary, Disabled: !v.HasNext()},
		},
	}
}

func collectedFields(c model.Collected, categoryName string) []outbound.ViewField {
	var fields []outbound.ViewField
	if c.Title != "" {
		fields = append(fields, outbound.ViewField{Name: "Title", Value: c.Title})
	}
	if c.Description != "" {
		fields = append(fields, outbound.ViewField{Name: "Description", Value: c.Description})
	}
	if categoryName != "" {
		fields = append(fields, outbound.ViewField{Name: "Category", Value: categoryName, Inline: true})
	}
	return fields
}

func ownerLabel(s model.Session) string {
	if s.OwnerName != "" {
		return s.OwnerName
	}
	return "the requester"
}
