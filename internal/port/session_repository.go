package port

import (
	"context"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// SessionStore holds the one session the caller acts as. Load returns nil
// without error when nobody is logged in.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}

type sessionIDKey struct{}

// WithSessionID scopes ctx to a gateway session. Stores that serve many
// sessions resolve the id from the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
