// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/projecthub/internal/app/cascade"
	healthfeature "github.com/dalemusser/projecthub/internal/app/features/health"
	pmfeature "github.com/dalemusser/projecthub/internal/app/features/projectmanagers"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	recordstore "github.com/dalemusser/projecthub/internal/app/store/records"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// ProjectHub applies session/token middleware, then mounts the health check,
// the Prometheus endpoint, and the admin API for bulk Project Manager deletion.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	if appCfg.JWTSecret != "" {
		verifier, err := auth.NewTokenVerifier(appCfg.JWTSecret)
		if err != nil {
			logger.Error("token verifier init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.SetTokenVerifier(verifier)
	}

	db := deps.ProjectHubMongoDatabase

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Admin: appCfg.AuditLogAdmin})

	workflow := cascade.NewWorkflow(
		userstore.New(db),
		recordstore.New(db),
		txn.New(deps.ProjectHubMongoClient, appCfg.CascadeTransactions, logger),
		appCfg.MaxBatchSize,
		logger,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Global auth middleware: loads SessionUser into context from the cookie
	// or a bearer token.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ProjectHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// Admin API
	pmHandler := pmfeature.NewHandler(workflow, auditLog, logger)
	if appCfg.BulkDeleteRateLimit > 0 {
		pmHandler.Limiter = ratelimit.New(appCfg.BulkDeleteRateLimit, time.Minute)
	}
	r.Mount("/api/admin/project-managers", pmfeature.Routes(pmHandler))

	return r, nil
}
