package handler

import (
	"context"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/port"
)

// Notice is one toast the browser shows after a call.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type noticesKey struct{}

type noticeBox struct {
	mu    sync.Mutex
	items []Notice
}

func withNotices(ctx context.Context) context.Context {
	return context.WithValue(ctx, noticesKey{}, &noticeBox{})
}

func noticesFrom(ctx context.Context) []Notice {
	box, ok := ctx.Value(noticesKey{}).(*noticeBox)
	if !ok {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	return append([]Notice(nil), box.items...)
}

// ContextNotifier collects notices on the request that produced them so
// they travel back in the same response. Outside a request they are dropped.
type ContextNotifier struct{}

func (ContextNotifier) Success(ctx context.Context, msg string) { addNotice(ctx, "success", msg) }
func (ContextNotifier) Error(ctx context.Context, msg string)   { addNotice(ctx, "error", msg) }

func addNotice(ctx context.Context, level, msg string) {
	box, ok := ctx.Value(noticesKey{}).(*noticeBox)
	if !ok {
		return
	}
	box.mu.Lock()
	box.items = append(box.items, Notice{Level: level, Message: msg})
	box.mu.Unlock()
}

var _ port.Notifier = ContextNotifier{}

// SessionExpired is the API client's 401 hook: the backend has already
// dropped the token, so the caller is told to sign in again.
func SessionExpired(notify port.Notifier) func(ctx context.Context) {
	return func(ctx context.Context) {
		notify.Error(ctx, "Your session has expired. Please log in again.")
	}
}
