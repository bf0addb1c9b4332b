package port

import (
	"context"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

type AuditRepository interface {
	// RecordTransition persists one resolved transition request
	RecordTransition(ctx context.Context, rec domain.TransitionRecord) error

	// ListTransitions returns the entity's history, newest first
	ListTransitions(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.TransitionRecord, error)
}

// Notifier surfaces user-facing results the way toasts do in a browser.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}
