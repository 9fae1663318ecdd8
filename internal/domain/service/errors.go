package service

import (
	"errors"
	"fmt"

	"github.com/jonny/helpdesk-bot/internal/domain/model"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
)

// User-facing notices.
const (
	NoticeSessionInactive = "This session is no longer active."
	NoticeNotOwner        = "Only the person who started this can use these controls."
	NoticeStepDone        = "That step is already complete."
	NoticeUnknownCommand  = "Unknown command."
	NoticeUnknownControl  = "This control is not recognized."
	NoticeGuildOnly       = "This command can only be used inside a server."
	NoticeGeneric         = "Something went wrong handling that interaction."
)

var (
	// ErrRoutingMiss means a continuation event referenced a session that is
	// not live. It is an expected race, not a failure.
	ErrRoutingMiss = errors.New("no live session for key")
	// ErrNotOwner means a non-owner tried to drive a session.
	ErrNotOwner = errors.New("originator is not the session owner")
)

// ValidationError is a rejected step input. The step is re-rendered with
// Notice and the session is unchanged.
type ValidationError struct {
	Notice string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %v", e.Notice, e.Err)
	}
	return "validation: " + e.Notice
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ExternalEffectError is a failed terminal side effect. It is never retried.
type ExternalEffectError struct {
	Reason model.AbortReason
	Err    error
}

func (e *ExternalEffectError) Error() string {
	return fmt.Sprintf("external effect failed (%s): %v", e.Reason, e.Err)
}

func (e *ExternalEffectError) Unwrap() error { return e.Err }

// classifyEffectError maps a platform error to an abort reason.
func classifyEffectError(err error) *ExternalEffectError {
	switch {
	case errors.Is(err, outbound.ErrMissingPermission):
		return &ExternalEffectError{Reason: model.AbortMissingPermission, Err: err}
	case errors.Is(err, outbound.ErrParentMissing), errors.Is(err, outbound.ErrCategoryNotFound):
		return &ExternalEffectError{Reason: model.AbortMissingParent, Err: err}
	default:
		return &ExternalEffectError{Reason: model.AbortUnknown, Err: err}
	}
}
