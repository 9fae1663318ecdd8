package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/service"
)

func freshSession() model.Session {
	return model.NewSession(guildID, ownerID, "Owner", time.Minute).WithAnchor(anchorID, channelID)
}

func TestWizard_Advance_FullSequence(t *testing.T) {
	w := service.NewWizard()
	s := freshSession()

	tr, err := w.Advance(s, model.OpenTitlePrompt{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tr.Instructions[0].(service.OpenModal); !ok {
		t.Fatalf("expected OpenModal, got %T", tr.Instructions[0])
	}

	tr, _ = w.Advance(tr.Session, model.SubmitTitle{Title: "Billing"})
	if tr.Session.Step != model.StepCollectingDescription {
		t.Fatalf("expected collecting_description, got %s", tr.Session.Step)
	}
	if _, ok := tr.Instructions[0].(service.RenderStep); !ok {
		t.Errorf("expected RenderStep, got %T", tr.Instructions[0])
	}

	tr, _ = w.Advance(tr.Session, model.SubmitDescription{Description: "Charged twice"})
	if tr.Session.Step != model.StepSelectingCategory {
		t.Fatalf("expected selecting_category, got %s", tr.Session.Step)
	}

	tr, _ = w.Advance(tr.Session, model.SelectCategory{CategoryID: "cat-1"})
	if _, ok := tr.Instructions[0].(service.CreateTicket); !ok {
		t.Fatalf("expected CreateTicket, got %T", tr.Instructions[0])
	}
	if tr.Session.Collected.CategoryID != "cat-1" || tr.Session.Step != model.StepSelectingCategory {
		t.Errorf("unexpected session after select: %+v", tr.Session)
	}
}

func TestWizard_Advance_InvalidInputKeepsSession(t *testing.T) {
	w := service.NewWizard()
	s := freshSession()

	tr, err := w.Advance(s, model.SubmitTitle{Title: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Invalid == nil || !errors.Is(tr.Invalid, model.ErrEmptyInput) {
		t.Fatalf("expected validation error wrapping ErrEmptyInput, got %v", tr.Invalid)
	}
	if tr.Session != s {
		t.Error("expected session unchanged")
	}
	step, ok := tr.Instructions[0].(service.RenderStep)
	if !ok || step.Notice == "" {
		t.Errorf("expected RenderStep with notice, got %+v", tr.Instructions[0])
	}
}

func TestWizard_Advance_WrongStepRejected(t *testing.T) {
	w := service.NewWizard()
	for _, tok := range []model.WizardToken{
		model.OpenDescriptionPrompt{},
		model.SubmitDescription{Description: "x"},
		model.SelectCategory{CategoryID: "cat-1"},
	} {
		tr, err := w.Advance(freshSession(), tok)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", tok, err)
		}
		rej, ok := tr.Instructions[0].(service.Reject)
		if !ok || rej.Notice != service.NoticeStepDone {
			t.Errorf("%T: expected step-done reject, got %+v", tok, tr.Instructions[0])
		}
		if tr.Session.Step != model.StepCollectingTitle {
			t.Errorf("%T: expected step unchanged, got %s", tok, tr.Session.Step)
		}
	}
}

func TestWizard_Advance_TerminalSession(t *testing.T) {
	w := service.NewWizard()
	expired, _ := freshSession().Expire()

	_, err := w.Advance(expired, model.OpenTitlePrompt{})
	if !errors.Is(err, model.ErrSessionTerminal) {
		t.Errorf("expected ErrSessionTerminal, got %v", err)
	}
}

func TestWizard_Modals(t *testing.T) {
	w := service.Wizard{TitleMaxLength: 50, DescriptionMaxLength: 500}

	tr, _ := w.Advance(freshSession(), model.OpenTitlePrompt{})
	m := tr.Instructions[0].(service.OpenModal).Modal
	if m.CustomID != model.CustomIDTitleModal || m.Inputs[0].CustomID != model.CustomIDTitleInput {
		t.Errorf("unexpected title modal: %+v", m)
	}
	if m.Inputs[0].MaxLength != 50 || m.Inputs[0].Paragraph {
		t.Errorf("expected short title input capped at 50, got %+v", m.Inputs[0])
	}
}
