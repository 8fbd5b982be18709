// internal/app/features/projectmanagers/handler.go
package projectmanagers

import (
	"github.com/dalemusser/projecthub/internal/app/cascade"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/limits"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the admin endpoints for project manager accounts.
type Handler struct {
	Workflow     *cascade.Workflow
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
	MaxBodyBytes int64

	// Limiter caps batches per admin; nil means unlimited.
	Limiter *ratelimit.Limiter
}

// NewHandler creates a Handler. A nil audit logger records nothing.
func NewHandler(wf *cascade.Workflow, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if audit == nil {
		audit = auditlog.NewNopLogger()
	}
	return &Handler{
		Workflow:     wf,
		AuditLog:     audit,
		Log:          logger,
		MaxBodyBytes: limits.MaxBulkDeleteBody,
	}
}
