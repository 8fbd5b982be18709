// internal/app/features/projectmanagers/routes.go
package projectmanagers

import (
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted under /api/admin/project-managers.
// POST /delete is for clients that cannot send a body with DELETE.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	if h.Limiter != nil {
		r.Use(h.Limiter.Middleware(actorKey))
	}
	r.Delete("/", h.HandleBulkDelete)
	r.Post("/delete", h.HandleBulkDelete)
	return r
}

// actorKey counts requests per signed-in user; anonymous requests fall
// through to the handler's 401.
func actorKey(r *http.Request) string {
	_, _, id, ok := authz.UserCtx(r)
	if !ok {
		return ""
	}
	return id.Hex()
}
