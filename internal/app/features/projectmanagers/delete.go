// internal/app/features/projectmanagers/delete.go
package projectmanagers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/projecthub/internal/app/cascade"
	"github.com/dalemusser/projecthub/internal/app/system/authz"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// deleteRequest is the JSON body. Emails is the older name of Identifiers.
type deleteRequest struct {
	Identifiers json.RawMessage `json:"identifiers"`
	Emails      json.RawMessage `json:"emails"`
}

type deleteResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Details *cascade.BatchResult `json:"details,omitempty"`
}

// HandleBulkDelete removes a batch of project managers and everything they own.
//
// 200 all deleted, 207 some skipped, 400 bad input, 401/403 auth,
// 404 nothing resolvable, 500 store failure (details carry partial counts).
func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, deleteResponse{Message: "Unauthorized: No token provided."})
		return
	}
	if !authz.IsAdmin(r) {
		writeJSON(w, http.StatusForbidden, deleteResponse{Message: "Forbidden: Admin access required."})
		return
	}

	elems, msg, ok := h.decodeIdentifiers(w, r)
	if !ok {
		h.Log.Info("bulk delete: bad request", zap.String("actor_id", actorID.Hex()), zap.String("reason", msg))
		writeJSON(w, http.StatusBadRequest, deleteResponse{Message: msg})
		return
	}

	// Once started the cascade runs to completion even if the client goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Cascade())
	defer cancel()

	start := time.Now()
	rep := h.Workflow.Run(ctx, cascade.Request{
		ActorID:     actorID,
		Identifiers: cascade.ParseIdentifiers(elems),
	})
	status := rep.Outcome.HTTPStatus()

	metrics.ObserveBatch(status, time.Since(start))
	for _, p := range rep.Counts.Phases() {
		if !p.Skipped {
			metrics.ObservePhase(p.Category, p.Requested, p.Deleted)
		}
	}
	h.audit(ctx, r, actorID, rep, status)

	h.writeResult(w, rep, status)
}

// decodeIdentifiers returns the identifier array elements or a client
// message explaining why the body is unusable.
func (h *Handler) decodeIdentifiers(w http.ResponseWriter, r *http.Request) ([]json.RawMessage, string, bool) {
	const invalidJSON = "Bad Request: Invalid JSON payload."
	const required = "Bad Request: 'identifiers' array is required and cannot be empty."

	if r.Body == nil {
		return nil, required, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)

	var body deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "Bad Request: payload too large.", false
		}
		return nil, invalidJSON, false
	}

	raw := body.Identifiers
	if isAbsent(raw) {
		raw = body.Emails
	}
	if isAbsent(raw) {
		return nil, required, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
		return nil, required, false
	}
	return elems, "", true
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// writeResult is the single place a Report turns into a response.
func (h *Handler) writeResult(w http.ResponseWriter, rep cascade.Report, status int) {
	if rep.Result.BatchID != "" {
		w.Header().Set("X-Batch-ID", rep.Result.BatchID)
	}
	if status == http.StatusInternalServerError {
		h.Log.Error("bulk delete failed",
			zap.String("batch_id", rep.Result.BatchID),
			zap.Error(rep.Err))
	}

	resp := deleteResponse{
		Success: status == http.StatusOK,
		Message: rep.Message,
	}
	if status != http.StatusForbidden {
		res := rep.Result
		resp.Details = &res
	}
	writeJSON(w, status, resp)
}

func (h *Handler) audit(ctx context.Context, r *http.Request, actorID primitive.ObjectID, rep cascade.Report, status int) {
	batchID := rep.Result.BatchID
	switch rep.Outcome {
	case cascade.OutcomeSuccess, cascade.OutcomePartial:
		for _, e := range rep.Deleted {
			h.AuditLog.ProjectManagerDeleted(ctx, r, actorID, e.ID, e.Identifier, batchID)
		}
		h.AuditLog.BulkDeletionCompleted(ctx, r, actorID, batchID,
			len(rep.Result.ValidProcessed), len(rep.Result.InvalidOrSkipped), rep.Result.DeletedCountsByCategory)
	case cascade.OutcomeFailed:
		phase := ""
		var se *cascade.StoreError
		if errors.As(rep.Err, &se) {
			phase = se.Phase
		}
		reason := ""
		if rep.Err != nil {
			reason = rep.Err.Error()
		}
		h.AuditLog.BulkDeletionFailed(ctx, r, actorID, batchID, phase, rep.Result.PartiallyApplied, reason)
	default:
		h.AuditLog.BulkDeletionRejected(ctx, r, actorID, batchID, status, rep.Message)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
