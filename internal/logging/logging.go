// Package logging builds the zap logger shared by the CLI and the gateway
// and names the actions that log lines are keyed by.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ActionServiceStarted   = "service_started"
	ActionGracefulShutdown = "graceful_shutdown"
	ActionMySQLConnected   = "mysql_connected"
	ActionRedisConnected   = "redis_connected"

	ActionTransitionOpened   = "transition_opened"
	ActionTransitionResolved = "transition_resolved"
	ActionRefreshFailed      = "refresh_failed"

	ActionAuditQueued      = "audit_queued"
	ActionAuditSaved       = "audit_saved"
	ActionAuditSaveFailed  = "audit_save_failed"
	ActionAuditQueueClosed = "audit_queue_closed"

	ActionSessionCleared = "session_cleared"
	ActionAPIRequest     = "api_request"
	ActionAPIFailed      = "api_failed"

	ActionValidationFailed = "validation_failed"
	ActionCheckoutPaid     = "checkout_paid"

	ActionHTTPRequest   = "http_request"
	ActionHealthChanged = "health_changed"
)

// New returns a production JSON logger, at debug level when verbose.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewCLI logs human-readable lines to stderr; the CLI's stdout is for
// results.
func NewCLI(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
