package auditlog

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingStore struct {
	events []audit.Event
	err    error
}

func (s *recordingStore) Log(ctx context.Context, e audit.Event) error {
	s.events = append(s.events, e)
	return s.err
}

func newTestLogger(setting string) (*Logger, *recordingStore) {
	rs := &recordingStore{}
	return &Logger{store: rs, zapLog: zap.NewNop(), config: Config{Admin: setting}}, rs
}

func TestLog_RespectsSetting(t *testing.T) {
	tests := []struct {
		setting string
		wantDB  int
	}{
		{"all", 1},
		{"db", 1},
		{"log", 0},
		{"off", 0},
	}

	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			l, rs := newTestLogger(tt.setting)
			l.BulkDeletionCompleted(context.Background(), httptest.NewRequest("DELETE", "/", nil),
				primitive.NewObjectID(), "batch-1", 1, 0, map[string]int64{"tasks": 3})
			if len(rs.events) != tt.wantDB {
				t.Errorf("stored %d events, want %d", len(rs.events), tt.wantDB)
			}
		})
	}
}

func TestLog_StripsMarkupFromDetails(t *testing.T) {
	l, rs := newTestLogger("db")
	l.ProjectManagerDeleted(context.Background(), httptest.NewRequest("DELETE", "/", nil),
		primitive.NewObjectID(), primitive.NewObjectID(), "<b>pm1@x.com</b>", "batch-1")

	if len(rs.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(rs.events))
	}
	if got := rs.events[0].Details["email"]; got != "pm1@x.com" {
		t.Errorf("email detail = %q, want markup stripped", got)
	}
}

func TestLog_StoreErrorIsSwallowed(t *testing.T) {
	l, rs := newTestLogger("all")
	rs.err = errors.New("db down")

	l.BulkDeletionFailed(context.Background(), httptest.NewRequest("DELETE", "/", nil),
		primitive.NewObjectID(), "batch-1", "tasks", true, "db down")

	if len(rs.events) != 1 || rs.events[0].Success {
		t.Errorf("expected one failed event, got %+v", rs.events)
	}
}

func TestNilAndNopLogger(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Log(context.Background(), audit.Event{Category: audit.CategoryAdmin})

	NewNopLogger().BulkDeletionCompleted(context.Background(), httptest.NewRequest("DELETE", "/", nil),
		primitive.NewObjectID(), "b", 0, 0, nil)
}

func TestBulkDeletionEvents(t *testing.T) {
	l, rs := newTestLogger("db")
	r := httptest.NewRequest("DELETE", "/api/admin/project-managers", nil)
	actor := primitive.NewObjectID()

	l.BulkDeletionCompleted(context.Background(), r, actor, "b1", 2, 1, map[string]int64{"tasks": 3})
	l.BulkDeletionRejected(context.Background(), r, actor, "b2", 404, "nothing resolved")

	if len(rs.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rs.events))
	}
	done := rs.events[0]
	if done.EventType != audit.EventBulkDeletionCompleted || done.Details["deleted_tasks"] != "3" || done.Details["processed"] != "2" {
		t.Errorf("completed event = %+v", done)
	}
	rej := rs.events[1]
	if rej.EventType != audit.EventBulkDeletionBadRequest || rej.Success || rej.Details["status"] != "404" {
		t.Errorf("rejected event = %+v", rej)
	}
	if rej.ActorID == nil || *rej.ActorID != actor {
		t.Errorf("ActorID = %v, want %v", rej.ActorID, actor)
	}
}

func TestLog_RecordsClientIPFirstHop(t *testing.T) {
	l, rs := newTestLogger("db")
	r := httptest.NewRequest("DELETE", "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2, 10.0.0.3")

	l.BulkDeletionRejected(context.Background(), r, primitive.NewObjectID(), "b1", 400, "bad")

	if len(rs.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rs.events))
	}
	if got := rs.events[0].IP; got != "203.0.113.7" {
		t.Errorf("IP = %q, want first forwarded hop", got)
	}
}
