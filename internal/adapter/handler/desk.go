package handler

import (
	"sync"
	"time"

	"github.com/ambikamber/ambikamber.com/internal/core/gate"
	"github.com/ambikamber/ambikamber.com/internal/core/service"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

// Desk is what one admin tab keeps on the gateway: its order and user
// lists, each with its own gate.
type Desk struct {
	Orders *service.OrdersView
	Users  *service.UsersView

	mu    sync.Mutex
	owner string
}

// Busy keeps the desk from being swept while either gate is open.
func (d *Desk) Busy() bool {
	return d.Orders.Busy() || d.Users.Busy()
}

// claim binds the desk to the session that minted it.
func (d *Desk) claim(sessionID string) {
	d.mu.Lock()
	d.owner = sessionID
	d.mu.Unlock()
}

func (d *Desk) ownedBy(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.owner != "" && d.owner == sessionID
}

// Gate picks the desk's gate for a route segment.
func (d *Desk) Gate(kind string) (*gate.Gate, bool) {
	switch kind {
	case "orders":
		return d.Orders.Gate(), true
	case "users":
		return d.Users.Gate(), true
	}
	return nil, false
}

// NewDesks builds the per-view registry. Every gate it creates carries the
// view id plus opts (recorder, observer, locker, logger).
func NewDesks(admin port.AdminAPI, notify port.Notifier, idle time.Duration, opts ...gate.Option) *gate.Registry[*Desk] {
	create := func(viewID string) *Desk {
		o := append(opts[:len(opts):len(opts)], gate.WithViewID(viewID))
		return &Desk{
			Orders: service.NewOrdersView(admin, notify, o...),
			Users:  service.NewUsersView(admin, notify, o...),
		}
	}
	return gate.NewRegistry(idle, create, (*Desk).Busy)
}
