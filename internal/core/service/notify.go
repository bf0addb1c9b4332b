package service

import (
	"context"
	"errors"

	"github.com/ambikamber/ambikamber.com/internal/port"
)

var (
	ErrNotLoaded     = errors.New("entity is not in the loaded view")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrNotAdmin      = errors.New("admin access required")
	ErrNotCancelable = errors.New("order can no longer be cancelled")
)

type userMessager interface {
	UserMessage() string
}

// messageOr returns the server's wording carried by err, else fallback.
func messageOr(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

func notifyErr(ctx context.Context, n port.Notifier, msg string) {
	if n != nil {
		n.Error(ctx, msg)
	}
}

func notifyOK(ctx context.Context, n port.Notifier, msg string) {
	if n != nil {
		n.Success(ctx, msg)
	}
}
