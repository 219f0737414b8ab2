package services

import (
	"servify-server/apperrors"
	"servify-server/models"
)

// Actor is the authenticated user on whose behalf an operation runs.
// ProfessionalID is zero unless the user owns a professional profile.
type Actor struct {
	UserID         uint
	Role           models.UserRole
	ProfessionalID uint
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsClient() bool {
	return a.Role == models.RoleClient
}

func (a Actor) IsProfessional() bool {
	return a.Role == models.RoleProfessional
}

// requireProfessional returns an error unless the actor is a professional
// with a profile.
func (a Actor) requireProfessional(action string) error {
	if !a.IsProfessional() {
		return apperrors.Forbidden("only professionals can " + action)
	}
	if a.ProfessionalID == 0 {
		return apperrors.NotFound("professional profile not found")
	}
	return nil
}

func (a Actor) requireClient(action string) error {
	if !a.IsClient() {
		return apperrors.Forbidden("only clients can " + action)
	}
	return nil
}

func (a Actor) requireAdmin() error {
	if !a.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}
	return nil
}
