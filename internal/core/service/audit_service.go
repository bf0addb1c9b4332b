package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/logging"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

var (
	ErrAuditQueueFull   = errors.New("audit queue full")
	ErrAuditQueueClosed = errors.New("audit queue closed")
)

const defaultHistoryLimit = 50

// AuditService queues resolved transitions for the audit workers. Record
// never blocks the admin: a full or closed queue drops the row and logs it.
type AuditService struct {
	repo     port.AuditRepository
	sessions port.SessionStore
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan domain.TransitionRecord
}

func NewAuditService(repo port.AuditRepository, sessions port.SessionStore, queueSize int, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		queue:    make(chan domain.TransitionRecord, queueSize),
	}
}

// Record implements gate.Recorder.
func (s *AuditService) Record(ctx context.Context, rec domain.TransitionRecord) {
	if rec.Actor == "" {
		rec.Actor = s.actor(ctx)
	}
	if err := s.Enqueue(rec); err != nil {
		s.logger.Warn("audit record dropped",
			zap.String("action", logging.ActionAuditSaveFailed),
			zap.String("request_id", rec.RequestID),
			zap.Error(err),
		)
	}
}

func (s *AuditService) Enqueue(rec domain.TransitionRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrAuditQueueClosed
	}
	select {
	case s.queue <- rec:
		s.logger.Debug("audit record queued",
			zap.String("action", logging.ActionAuditQueued),
			zap.String("request_id", rec.RequestID),
		)
		return nil
	default:
		return ErrAuditQueueFull
	}
}

func (s *AuditService) actor(ctx context.Context) string {
	if s.sessions == nil {
		return ""
	}
	sess, err := s.sessions.Load(ctx)
	if err != nil || sess == nil {
		return ""
	}
	if sess.User.Email != "" {
		return sess.User.Email
	}
	return sess.User.ID
}

// History lists the entity's resolved transitions, newest first.
func (s *AuditService) History(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.TransitionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	recs, err := s.repo.ListTransitions(ctx, kind, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	return recs, nil
}

func (s *AuditService) Queue() <-chan domain.TransitionRecord {
	return s.queue
}

// Close stops accepting records; workers drain what is queued and exit.
func (s *AuditService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

// RunAuditWorker persists records from queue until it is closed.
func RunAuditWorker(id int, queue <-chan domain.TransitionRecord, repo port.AuditRepository, logger *zap.Logger) {
	for rec := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := repo.RecordTransition(ctx, rec); err != nil {
			logger.Error("failed to save transition",
				zap.String("action", logging.ActionAuditSaveFailed),
				zap.Int("worker", id),
				zap.String("request_id", rec.RequestID),
				zap.Error(err),
			)
		} else {
			logger.Debug("saved transition",
				zap.String("action", logging.ActionAuditSaved),
				zap.Int("worker", id),
				zap.String("request_id", rec.RequestID),
			)
		}

		cancel()
	}
	logger.Debug("audit worker stopped",
		zap.String("action", logging.ActionAuditQueueClosed),
		zap.Int("worker", id),
	)
}
