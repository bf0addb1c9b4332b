package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const transitionAuditSchema = `
CREATE TABLE IF NOT EXISTS transition_audit (
	id             BIGINT AUTO_INCREMENT PRIMARY KEY,
	request_id     VARCHAR(64)  NOT NULL,
	view_id        VARCHAR(64)  NOT NULL DEFAULT '',
	kind           VARCHAR(16)  NOT NULL,
	entity_id      VARCHAR(64)  NOT NULL,
	from_value     VARCHAR(32)  NOT NULL,
	to_value       VARCHAR(32)  NOT NULL,
	outcome        VARCHAR(16)  NOT NULL,
	confirmations  TINYINT      NOT NULL DEFAULT 0,
	error_message  VARCHAR(512) NOT NULL DEFAULT '',
	actor          VARCHAR(255) NOT NULL DEFAULT '',
	opened_at      DATETIME(3)  NOT NULL,
	resolved_at    DATETIME(3)  NOT NULL,
	UNIQUE KEY uq_transition_request (request_id),
	KEY idx_transition_entity (kind, entity_id, resolved_at)
)`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, transitionAuditSchema); err != nil {
		return fmt.Errorf("create transition_audit: %w", err)
	}
	return nil
}

// RecordTransition inserts rec. A request id that is already stored is a
// retried write and succeeds without a second row.
func (m *MySQLAdapter) RecordTransition(ctx context.Context, rec domain.TransitionRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO transition_audit
			(request_id, view_id, kind, entity_id, from_value, to_value, outcome,
			 confirmations, error_message, actor, opened_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.ViewID, rec.Kind, rec.EntityID, rec.FromValue, rec.ToValue, rec.Outcome,
		rec.Confirmations, truncate(rec.ErrorMessage, 512), rec.Actor, rec.OpenedAt.UTC(), rec.ResolvedAt.UTC(),
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListTransitions(ctx context.Context, kind domain.EntityKind, entityID string, limit int) ([]domain.TransitionRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT request_id, view_id, kind, entity_id, from_value, to_value, outcome,
		       confirmations, error_message, actor, opened_at, resolved_at
		FROM transition_audit
		WHERE kind = ? AND entity_id = ?
		ORDER BY resolved_at DESC, id DESC
		LIMIT ?`, kind, entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.TransitionRecord
	for rows.Next() {
		var rec domain.TransitionRecord
		if err := rows.Scan(
			&rec.RequestID, &rec.ViewID, &rec.Kind, &rec.EntityID, &rec.FromValue, &rec.ToValue, &rec.Outcome,
			&rec.Confirmations, &rec.ErrorMessage, &rec.Actor, &rec.OpenedAt, &rec.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
