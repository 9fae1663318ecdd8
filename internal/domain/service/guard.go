package service

import "github.com/jonny/helpdesk-bot/internal/domain/model"

// AuthorizationGuard enforces the originator-only policy: a session may only
// be advanced by the user who started it.
type AuthorizationGuard struct{}

func (AuthorizationGuard) Permits(env model.Envelope, ownerID string) bool {
	return ownerID != "" && env.OriginatorID == ownerID
}

// Check is Permits expressed as an error.
func (g AuthorizationGuard) Check(env model.Envelope, ownerID string) error {
	if !g.Permits(env, ownerID) {
		return ErrNotOwner
	}
	return nil
}
