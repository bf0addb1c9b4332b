// Package gate implements the confirmation gate that stands between an
// admin picking a new status or role and the request that applies it.
//
// A gate holds at most one TransitionRequest. Standard transitions commit
// after one confirmation, critical ones after two. Nothing is committed
// until every required confirmation is given, and the entity is never
// mutated locally: on success the owning view re-fetches it.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

var (
	ErrNoChange         = errors.New("proposed value equals current value")
	ErrCommitInProgress = errors.New("a commit is already in progress")
	ErrInvalidAction    = errors.New("action not valid in current gate state")
	ErrEntityBusy       = errors.New("entity is being changed by another session")
)

// CommitFunc issues the single mutating call for req.
type CommitFunc func(ctx context.Context, req domain.TransitionRequest) error

// RefreshFunc re-fetches the authoritative state after a successful commit.
type RefreshFunc func(ctx context.Context, req domain.TransitionRequest) error

type Recorder interface {
	Record(ctx context.Context, rec domain.TransitionRecord)
}

type Observer interface {
	ObserveResolution(kind domain.EntityKind, outcome domain.Outcome)
}

// userMessager is implemented by errors that carry a message fit to show
// the admin as-is.
type userMessager interface {
	UserMessage() string
}

type Gate struct {
	policy   Policy
	commit   CommitFunc
	refresh  RefreshFunc
	notify   port.Notifier
	recorder Recorder
	observer Observer
	locker   port.LockRepository
	logger   *zap.Logger
	viewID   string
	now      func() time.Time
	newID    func() string

	mu           sync.Mutex
	req          *domain.TransitionRequest
	state        domain.GateState
	lastActivity time.Time
}

type Option func(*Gate)

func WithRefresh(fn RefreshFunc) Option       { return func(g *Gate) { g.refresh = fn } }
func WithNotifier(n port.Notifier) Option     { return func(g *Gate) { g.notify = n } }
func WithRecorder(r Recorder) Option          { return func(g *Gate) { g.recorder = r } }
func WithObserver(o Observer) Option          { return func(g *Gate) { g.observer = o } }
func WithLocker(l port.LockRepository) Option { return func(g *Gate) { g.locker = l } }
func WithLogger(l *zap.Logger) Option         { return func(g *Gate) { g.logger = l } }
func WithViewID(id string) Option             { return func(g *Gate) { g.viewID = id } }
func WithClock(now func() time.Time) Option   { return func(g *Gate) { g.now = now } }
func WithIDGenerator(fn func() string) Option { return func(g *Gate) { g.newID = fn } }

func New(policy Policy, commit CommitFunc, opts ...Option) *Gate {
	g := &Gate{
		policy: policy,
		commit: commit,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
		state:  domain.GateClosed,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastActivity = g.now()
	return g
}

func (g *Gate) Kind() domain.EntityKind {
	return g.policy.Kind()
}

// Open starts a request for entityID. A request already awaiting
// confirmation is discarded without being committed.
func (g *Gate) Open(ctx context.Context, entityID, label, current, proposed string) (domain.TransitionRequest, error) {
	if current == proposed {
		return domain.TransitionRequest{}, ErrNoChange
	}

	g.mu.Lock()
	if g.state == domain.GateCommitting {
		g.mu.Unlock()
		return domain.TransitionRequest{}, ErrCommitInProgress
	}

	replaced := g.req
	req := domain.TransitionRequest{
		ID:            g.newID(),
		Kind:          g.policy.Kind(),
		EntityID:      entityID,
		EntityLabel:   label,
		CurrentValue:  current,
		ProposedValue: proposed,
		ConfirmStep:   1,
		Critical:      g.policy.Critical(current, proposed),
		OpenedAt:      g.now(),
	}
	g.req = &req
	g.state = domain.GateAwaitingStep1
	g.lastActivity = req.OpenedAt
	g.mu.Unlock()

	if replaced != nil {
		g.resolve(ctx, *replaced, domain.OutcomeReplaced, "")
	}

	g.logger.Debug("transition requested",
		zap.String("action", logging.ActionTransitionOpened),
		zap.String("request_id", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("entity_id", entityID),
		zap.String("from", current),
		zap.String("to", proposed),
		zap.Bool("critical", req.Critical),
	)
	return req, nil
}

// Continue is the step-1 action: critical requests move to the final
// confirmation, standard ones commit.
func (g *Gate) Continue(ctx context.Context) (domain.GateState, error) {
	g.mu.Lock()
	if g.state == domain.GateCommitting {
		g.mu.Unlock()
		return domain.GateCommitting, ErrCommitInProgress
	}
	if g.req == nil || g.state != domain.GateAwaitingStep1 {
		state := g.state
		g.mu.Unlock()
		return state, ErrInvalidAction
	}
	g.lastActivity = g.now()
	if g.req.Critical {
		g.req.ConfirmStep = 2
		g.state = domain.GateAwaitingStep2
		g.mu.Unlock()
		return domain.GateAwaitingStep2, nil
	}
	req := *g.req
	g.state = domain.GateCommitting
	g.mu.Unlock()

	return g.run(ctx, req)
}

// Confirm is the step-2 action of a critical request.
func (g *Gate) Confirm(ctx context.Context) (domain.GateState, error) {
	g.mu.Lock()
	if g.state == domain.GateCommitting {
		g.mu.Unlock()
		return domain.GateCommitting, ErrCommitInProgress
	}
	if g.req == nil || g.state != domain.GateAwaitingStep2 {
		state := g.state
		g.mu.Unlock()
		return state, ErrInvalidAction
	}
	g.lastActivity = g.now()
	req := *g.req
	g.state = domain.GateCommitting
	g.mu.Unlock()

	return g.run(ctx, req)
}

// Cancel discards the open request and returns the value the selector
// must show again.
func (g *Gate) Cancel(ctx context.Context) (string, error) {
	g.mu.Lock()
	if g.state == domain.GateCommitting {
		g.mu.Unlock()
		return "", ErrCommitInProgress
	}
	if g.req == nil {
		g.mu.Unlock()
		return "", ErrInvalidAction
	}
	req := *g.req
	g.req = nil
	g.state = domain.GateCancelled
	g.lastActivity = g.now()
	g.mu.Unlock()

	g.resolve(ctx, req, domain.OutcomeCancelled, "")
	return req.CurrentValue, nil
}

func (g *Gate) run(ctx context.Context, req domain.TransitionRequest) (domain.GateState, error) {
	err := g.apply(ctx, req)
	if err != nil {
		g.notifyError(ctx, g.failureMessage(err))
		g.finish(domain.GateResolvedFailure)
		g.resolve(ctx, req, domain.OutcomeFailure, err.Error())
		return domain.GateResolvedFailure, fmt.Errorf("commit %s %s: %w", req.Kind, req.EntityID, err)
	}

	g.notifySuccess(ctx, g.policy.SuccessMessage(req))
	if g.refresh != nil {
		if rerr := g.refresh(ctx, req); rerr != nil {
			g.logger.Warn("refresh after commit failed",
				zap.String("action", logging.ActionRefreshFailed),
				zap.String("request_id", req.ID),
				zap.Error(rerr),
			)
		}
	}
	g.finish(domain.GateResolvedSuccess)
	g.resolve(ctx, req, domain.OutcomeSuccess, "")
	return domain.GateResolvedSuccess, nil
}

func (g *Gate) apply(ctx context.Context, req domain.TransitionRequest) error {
	if g.locker == nil {
		return g.commit(ctx, req)
	}

	key := fmt.Sprintf("lock:%s:%s", req.Kind, req.EntityID)
	token, ok, err := g.locker.AcquireCommitLock(ctx, key)
	if err != nil {
		return fmt.Errorf("acquire commit lock: %w", err)
	}
	if !ok {
		return ErrEntityBusy
	}
	defer func() {
		if err := g.locker.ReleaseCommitLock(context.WithoutCancel(ctx), key, token); err != nil {
			g.logger.Warn("release commit lock failed", zap.String("key", key), zap.Error(err))
		}
	}()

	return g.commit(ctx, req)
}

func (g *Gate) finish(state domain.GateState) {
	g.mu.Lock()
	g.req = nil
	g.state = state
	g.lastActivity = g.now()
	g.mu.Unlock()
}

func (g *Gate) resolve(ctx context.Context, req domain.TransitionRequest, outcome domain.Outcome, errMsg string) {
	confirmations := 0
	switch outcome {
	case domain.OutcomeSuccess, domain.OutcomeFailure:
		confirmations = req.ConfirmStep
	}

	g.logger.Info("transition resolved",
		zap.String("action", logging.ActionTransitionResolved),
		zap.String("request_id", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("entity_id", req.EntityID),
		zap.String("from", req.CurrentValue),
		zap.String("to", req.ProposedValue),
		zap.String("outcome", string(outcome)),
	)

	if g.observer != nil {
		g.observer.ObserveResolution(req.Kind, outcome)
	}
	if g.recorder != nil {
		g.recorder.Record(ctx, domain.TransitionRecord{
			RequestID:     req.ID,
			ViewID:        g.viewID,
			Kind:          req.Kind,
			EntityID:      req.EntityID,
			FromValue:     req.CurrentValue,
			ToValue:       req.ProposedValue,
			Outcome:       outcome,
			Confirmations: confirmations,
			ErrorMessage:  errMsg,
			OpenedAt:      req.OpenedAt,
			ResolvedAt:    g.now(),
		})
	}
}

func (g *Gate) failureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if errors.Is(err, ErrEntityBusy) {
		return "Another admin is changing this " + string(g.policy.Kind()) + " right now"
	}
	return g.policy.FailureMessage()
}

func (g *Gate) notifySuccess(ctx context.Context, msg string) {
	if g.notify != nil {
		g.notify.Success(ctx, msg)
	}
}

func (g *Gate) notifyError(ctx context.Context, msg string) {
	if g.notify != nil {
		g.notify.Error(ctx, msg)
	}
}

// Request returns a copy of the open request.
func (g *Gate) Request() (domain.TransitionRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.req == nil {
		return domain.TransitionRequest{}, false
	}
	return *g.req, true
}

func (g *Gate) State() domain.GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Notice describes the open request for the step the admin is on.
func (g *Gate) Notice() (Notice, bool) {
	req, ok := g.Request()
	if !ok {
		return Notice{}, false
	}
	return g.policy.Describe(req), true
}

type Snapshot struct {
	State   domain.GateState          `json:"state"`
	Request *domain.TransitionRequest `json:"request,omitempty"`
	Notice  *Notice                   `json:"notice,omitempty"`
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	s := Snapshot{State: g.state}
	if g.req != nil {
		req := *g.req
		s.Request = &req
	}
	g.mu.Unlock()

	if s.Request != nil {
		n := g.policy.Describe(*s.Request)
		s.Notice = &n
	}
	return s
}

// Busy reports whether a request is open or committing.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.req != nil || g.state == domain.GateCommitting
}

func (g *Gate) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActivity
}
