package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/ambikamber?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := NewMySQLAdapter(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema setup failed: %v", err)
	}
	return db
}

func testRecord(requestID, entityID string, resolvedAt time.Time) domain.TransitionRecord {
	return domain.TransitionRecord{
		RequestID:     requestID,
		ViewID:        "view-1",
		Kind:          domain.EntityOrder,
		EntityID:      entityID,
		FromValue:     "pending",
		ToValue:       "cancelled",
		Outcome:       domain.OutcomeSuccess,
		Confirmations: 2,
		Actor:         "meera@ambikamber.com",
		OpenedAt:      resolvedAt.Add(-time.Minute),
		ResolvedAt:    resolvedAt,
	}
}

func TestRecordTransition_Success(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	entityID := "test-order-" + time.Now().Format("20060102150405.000")
	defer db.ExecContext(ctx, `DELETE FROM transition_audit WHERE entity_id = ?`, entityID)

	rec := testRecord("req-"+entityID, entityID, time.Now().Truncate(time.Millisecond))
	if err := adapter.RecordTransition(ctx, rec); err != nil {
		t.Fatalf("RecordTransition failed: %v", err)
	}

	got, err := adapter.ListTransitions(ctx, domain.EntityOrder, entityID, 10)
	if err != nil {
		t.Fatalf("ListTransitions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ToValue != "cancelled" || got[0].Confirmations != 2 {
		t.Errorf("unexpected record: %+v", got[0])
	}
	if got[0].Actor != "meera@ambikamber.com" {
		t.Errorf("expected actor to round trip, got %q", got[0].Actor)
	}
}

func TestRecordTransition_DuplicateIsIgnored(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	entityID := "test-dup-" + time.Now().Format("20060102150405.000")
	defer db.ExecContext(ctx, `DELETE FROM transition_audit WHERE entity_id = ?`, entityID)

	rec := testRecord("req-"+entityID, entityID, time.Now())
	if err := adapter.RecordTransition(ctx, rec); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := adapter.RecordTransition(ctx, rec); err != nil {
		t.Fatalf("duplicate insert should succeed, got: %v", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transition_audit WHERE entity_id = ?`, entityID).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestListTransitions_NewestFirstWithLimit(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	entityID := "test-list-" + time.Now().Format("20060102150405.000")
	defer db.ExecContext(ctx, `DELETE FROM transition_audit WHERE entity_id = ?`, entityID)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		rec := testRecord(entityID+"-"+id, entityID, base.Add(time.Duration(i)*time.Minute))
		if err := adapter.RecordTransition(ctx, rec); err != nil {
			t.Fatalf("insert %s failed: %v", id, err)
		}
	}

	got, err := adapter.ListTransitions(ctx, domain.EntityOrder, entityID, 2)
	if err != nil {
		t.Fatalf("ListTransitions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].RequestID != entityID+"-c" {
		t.Errorf("expected newest first, got %s", got[0].RequestID)
	}
}

func TestListTransitions_Empty(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	got, err := NewMySQLAdapter(db).ListTransitions(context.Background(), domain.EntityUser, "nobody", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("expected ab, got %s", got)
	}
}
