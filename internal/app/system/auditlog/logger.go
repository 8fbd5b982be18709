// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Email: the human-readable identifier an admin submits for deletion

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for admin action events (bulk deletions).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// eventStore is the persistence side of the logger; *audit.Store satisfies it.
type eventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  eventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	l := &Logger{zapLog: zapLog, config: config}
	if store != nil {
		l.store = store
	}
	return l
}

// NewNopLogger returns a Logger that records nothing.
func NewNopLogger() *Logger {
	return &Logger{zapLog: zap.NewNop(), config: Config{Admin: "off"}}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op.
// Detail values come from request input, so markup is stripped before they
// are stored; the audit viewer renders them as HTML.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	if event.Category == audit.CategoryAdmin && l.config.Admin != "" {
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	for k, v := range event.Details {
		if !htmlsanitize.IsPlainText(v) {
			event.Details[k] = htmlsanitize.StripTags(v)
		}
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Admin Events ---

// ProjectManagerDeleted logs the removal of one project manager account.
func (l *Logger) ProjectManagerDeleted(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, email, batchID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		UserID:    &targetUserID,
		ActorID:   &actorID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"email":    email,
			"role":     "project_manager",
			"batch_id": batchID,
		},
	})
}

// BulkDeletionCompleted logs the summary of a finished bulk deletion.
// counts maps category name to deleted records.
func (l *Logger) BulkDeletionCompleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, batchID string, processed, skipped int, counts map[string]int64) {
	details := map[string]string{
		"batch_id":  batchID,
		"processed": strconv.Itoa(processed),
		"skipped":   strconv.Itoa(skipped),
	}
	for category, n := range counts {
		details["deleted_"+category] = strconv.FormatInt(n, 10)
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventBulkDeletionCompleted,
		ActorID:   &actorID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	})
}

// BulkDeletionFailed logs a cascade that stopped on a store error. Phases
// completed before the failure stay applied unless the run was transactional.
func (l *Logger) BulkDeletionFailed(ctx context.Context, r *http.Request, actorID primitive.ObjectID, batchID, phase string, partiallyApplied bool, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventBulkDeletionFailed,
		ActorID:       &actorID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"batch_id":          batchID,
			"phase":             phase,
			"partially_applied": strconv.FormatBool(partiallyApplied),
		},
	})
}

// BulkDeletionRejected logs a batch that was refused before any deletion
// (bad input, nothing resolvable, or a failed actor check).
func (l *Logger) BulkDeletionRejected(ctx context.Context, r *http.Request, actorID primitive.ObjectID, batchID string, status int, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventBulkDeletionBadRequest,
		ActorID:       &actorID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"batch_id": batchID,
			"status":   strconv.Itoa(status),
		},
	})
}
