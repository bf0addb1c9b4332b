package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// UsersView is the admin user list. Every role change is critical and so
// needs two confirmations.
type UsersView struct {
	admin  port.AdminAPI
	notify port.Notifier
	gate   *gate.Gate

	mu    sync.RWMutex
	query domain.ListQuery
	page  domain.UserPage
}

func NewUsersView(admin port.AdminAPI, notify port.Notifier, opts ...gate.Option) *UsersView {
	v := &UsersView{admin: admin, notify: notify, query: domain.ListQuery{Page: 1}}
	commit := func(ctx context.Context, req domain.TransitionRequest) error {
		return admin.UpdateUserRole(ctx, req.EntityID, domain.Role(req.ProposedValue))
	}
	refresh := func(ctx context.Context, _ domain.TransitionRequest) error {
		return v.Load(ctx, v.Query())
	}
	base := []gate.Option{gate.WithNotifier(notify), gate.WithRefresh(refresh)}
	v.gate = gate.New(gate.RolePolicy{}, commit, append(base, opts...)...)
	return v
}

// Load fetches one page of users matching the search text.
func (v *UsersView) Load(ctx context.Context, q domain.ListQuery) error {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Status = ""

	page, err := v.admin.ListUsers(ctx, q)
	if err != nil {
		notifyErr(ctx, v.notify, "Failed to fetch users")
		return fmt.Errorf("list users: %w", err)
	}

	v.mu.Lock()
	v.query = q
	v.page = *page
	v.mu.Unlock()
	return nil
}

func (v *UsersView) Page() domain.UserPage {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p := v.page
	p.Users = append([]domain.User(nil), v.page.Users...)
	return p
}

func (v *UsersView) Rows() []domain.User {
	return v.Page().Users
}

func (v *UsersView) Query() domain.ListQuery {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

func (v *UsersView) Selected(userID string) (domain.Role, bool) {
	u, ok := v.find(userID)
	if !ok {
		return "", false
	}
	return u.Role, true
}

func (v *UsersView) find(userID string) (domain.User, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, u := range v.page.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return domain.User{}, false
}

// RequestRole opens the gate for giving userID the proposed role.
func (v *UsersView) RequestRole(ctx context.Context, userID string, proposed domain.Role) (domain.TransitionRequest, error) {
	if _, err := domain.ParseRole(string(proposed)); err != nil {
		return domain.TransitionRequest{}, err
	}
	u, ok := v.find(userID)
	if !ok {
		return domain.TransitionRequest{}, fmt.Errorf("user %s: %w", userID, ErrNotLoaded)
	}
	return v.gate.Open(ctx, u.ID, u.Name, string(u.Role), string(proposed))
}

func (v *UsersView) Continue(ctx context.Context) (domain.GateState, error) {
	return v.gate.Continue(ctx)
}

func (v *UsersView) Confirm(ctx context.Context) (domain.GateState, error) {
	return v.gate.Confirm(ctx)
}

func (v *UsersView) Cancel(ctx context.Context) (domain.Role, error) {
	prev, err := v.gate.Cancel(ctx)
	return domain.Role(prev), err
}

func (v *UsersView) Gate() *gate.Gate { return v.gate }
func (v *UsersView) Busy() bool       { return v.gate.Busy() }
