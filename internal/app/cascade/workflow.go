package cascade

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Workflow runs one bulk deletion batch end to end.
type Workflow struct {
	Users        UserLookup
	Store        RecordStore
	Graph        *Graph
	Tx           TxRunner
	ExpectedRole string
	MaxBatchSize int // 0 means no limit
	Log          *zap.Logger
	NewBatchID   func() string
}

// NewWorkflow wires a workflow for removing project managers.
func NewWorkflow(users UserLookup, store RecordStore, tx TxRunner, maxBatch int, logger *zap.Logger) *Workflow {
	return &Workflow{
		Users:        users,
		Store:        store,
		Graph:        ProjectManagerGraph(),
		Tx:           tx,
		ExpectedRole: models.RoleProjectManager,
		MaxBatchSize: maxBatch,
		Log:          logger,
	}
}

// Request is one batch submitted by an authenticated actor.
type Request struct {
	ActorID     primitive.ObjectID
	Identifiers []RawIdentifier
}

// Report is everything the caller needs to answer the request.
type Report struct {
	Outcome Outcome
	Message string
	Result  BatchResult
	Deleted []ResolvedEntity // roots that went through the cascade
	Counts  Counts
	Err     error
}

// batchState is threaded through the phases. Each phase takes the state by
// value and returns the next one.
type batchState struct {
	batchID       string
	actorEmail    string
	norm          NormalizeResult
	resolved      ResolveResult
	set           CascadeSet
	counts        Counts
	transactional bool
	err           error
}

// Run executes the batch. Failures are reported in the Report, never as
// panics; the Report always carries a batch id.
func (w *Workflow) Run(ctx context.Context, req Request) Report {
	log := w.logger()
	st := batchState{batchID: w.batchID()}
	log = log.With(zap.String("batch_id", st.batchID), zap.String("actor_id", req.ActorID.Hex()))

	if len(req.Identifiers) == 0 {
		return w.badInput(st, ErrBadInput, "Bad Request: 'identifiers' array is required and cannot be empty.")
	}
	if w.MaxBatchSize > 0 && len(req.Identifiers) > w.MaxBatchSize {
		return w.badInput(st, ErrTooMany,
			fmt.Sprintf("Bad Request: at most %d identifiers can be deleted per request.", w.MaxBatchSize))
	}

	st, rep, ok := w.loadActor(ctx, st, req.ActorID)
	if !ok {
		log.Warn("bulk delete: actor check failed", zap.Error(rep.Err))
		return rep
	}

	st = normalizePhase(st, req.Identifiers)
	if st.norm.Duplicates > 0 {
		log.Info("bulk delete: duplicate identifiers dropped", zap.Int("count", st.norm.Duplicates))
	}
	if len(st.norm.Accepted) == 0 {
		return w.badInput(st, ErrBadInput, "No valid Project Manager identifiers provided for deletion.")
	}

	st = w.resolvePhase(ctx, st, req.ActorID)
	if st.err != nil {
		log.Error("bulk delete: resolve failed", zap.Error(st.err))
		return w.report(st)
	}
	if len(st.resolved.Valid) == 0 {
		return w.report(st)
	}

	st = w.cascadePhase(ctx, st)
	rep = w.report(st)
	if st.err != nil {
		log.Error("bulk delete: cascade failed",
			zap.Error(st.err),
			zap.Bool("transactional", st.transactional),
			zap.Bool("partially_applied", rep.Result.PartiallyApplied))
	} else {
		log.Info("bulk delete: completed",
			zap.Int("processed", len(rep.Result.ValidProcessed)),
			zap.Int("skipped", len(rep.Result.InvalidOrSkipped)),
			zap.Int64("deleted", st.counts.Total()),
			zap.Bool("transactional", st.transactional))
	}
	return rep
}

func (w *Workflow) loadActor(ctx context.Context, st batchState, actorID primitive.ObjectID) (batchState, Report, bool) {
	u, err := w.Users.GetByID(ctx, actorID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return st, w.failed(st, ErrActorUnknown, "Server error: Could not verify admin identity."), false
	case err != nil:
		err = &StoreError{Phase: PhaseActor, Category: Users.Name, Err: err}
		return st, w.failed(st, err, "Server error: Could not verify admin identity."), false
	case normalize.Role(u.Role) != models.RoleAdmin:
		rep := w.failed(st, ErrActorForbidden, "Forbidden: Admin access required.")
		rep.Outcome = OutcomeForbidden
		return st, rep, false
	}
	st.actorEmail = u.Email
	return st, Report{}, true
}

func normalizePhase(st batchState, raw []RawIdentifier) batchState {
	st.norm = Normalize(raw, st.actorEmail)
	return st
}

func (w *Workflow) resolvePhase(ctx context.Context, st batchState, actorID primitive.ObjectID) batchState {
	res, err := Resolve(ctx, w.Users, st.norm.Accepted, w.ExpectedRole)
	if err != nil {
		st.err = err
		return st
	}
	// The actor's own record never enters the cascade, whatever its email.
	var valid []ResolvedEntity
	for _, e := range res.Valid {
		if e.ID == actorID {
			res.Invalid = append(res.Invalid, isSelf(e.Identifier))
			continue
		}
		valid = append(valid, e)
	}
	res.Valid = valid
	st.resolved = res
	return st
}

func (w *Workflow) cascadePhase(ctx context.Context, st batchState) batchState {
	agg := NewAggregator(w.Store, w.Graph, w.logger())
	exec := NewExecutor(w.Store, w.Graph, w.logger())
	roots := st.resolved.Valid

	tx := w.Tx
	if tx == nil {
		tx = plainRunner{}
	}
	// fn may be retried by the transaction runner, so it rebuilds everything
	// it reports on each attempt.
	transactional, err := tx.Run(ctx, func(ctx context.Context) error {
		set, err := agg.Aggregate(ctx, rootIDs(roots))
		st.set = set
		st.counts = Counts{}
		if err != nil {
			return err
		}
		st.counts, err = exec.Execute(ctx, set, roots)
		return err
	})
	st.transactional = transactional
	st.err = err
	return st
}

// report builds the response for a batch that got past normalization.
func (w *Workflow) report(st batchState) Report {
	res := BatchResult{
		BatchID:                   st.batchID,
		ValidProcessed:            []string{},
		InvalidOrSkipped:          append(append([]Rejection{}, st.norm.Rejected...), st.resolved.Invalid...),
		DeletedCountsByCategory:   zeroCounts(w.Graph),
		RequestedCountsByCategory: zeroCounts(w.Graph),
		Transactional:             st.transactional,
	}
	for k, v := range st.counts.deletedMap() {
		res.DeletedCountsByCategory[k] = v
	}
	for k, v := range st.counts.requestedMap() {
		res.RequestedCountsByCategory[k] = v
	}

	var deleted []ResolvedEntity
	if st.err == nil {
		for _, e := range st.resolved.Valid {
			res.ValidProcessed = append(res.ValidProcessed, e.Identifier)
		}
		deleted = st.resolved.Valid
	} else {
		var se *StoreError
		if errors.As(st.err, &se) && se.Phase == PhaseDelete && !st.transactional {
			res.PartiallyApplied = true
		}
		// Roots are only listed as processed once their delete was confirmed.
		// If resolution itself failed, every accepted identifier is unaccounted for.
		if errors.As(st.err, &se) && se.Phase == PhaseResolve {
			for _, email := range st.norm.Accepted {
				res.InvalidOrSkipped = append(res.InvalidOrSkipped, notDeleted(email))
			}
		} else {
			for _, e := range st.resolved.Valid {
				res.InvalidOrSkipped = append(res.InvalidOrSkipped, notDeleted(e.Identifier))
			}
		}
	}

	outcome := Classify(res, st.err)
	return Report{
		Outcome: outcome,
		Message: message(outcome, res, st.err),
		Result:  res,
		Deleted: deleted,
		Counts:  st.counts,
		Err:     st.err,
	}
}

func (w *Workflow) badInput(st batchState, err error, msg string) Report {
	r := w.report(st)
	r.Outcome = OutcomeBadInput
	r.Message = msg
	r.Err = err
	return r
}

func (w *Workflow) failed(st batchState, err error, msg string) Report {
	st.err = err
	r := w.report(st)
	r.Outcome = OutcomeFailed
	r.Message = msg
	return r
}

func message(o Outcome, res BatchResult, err error) string {
	switch o {
	case OutcomeSuccess, OutcomePartial:
		return fmt.Sprintf("Deletion process completed for %d Project Manager(s). %d identifier(s) were invalid or skipped.",
			len(res.ValidProcessed), len(res.InvalidOrSkipped))
	case OutcomeNotFound:
		return "No valid Project Managers found to delete based on provided identifiers."
	default:
		return "Server error during bulk Project Manager deletion: " + err.Error()
	}
}

func zeroCounts(g *Graph) map[string]int64 {
	m := map[string]int64{g.Root().Name: 0}
	for _, name := range g.Dependents() {
		m[name] = 0
	}
	return m
}

func (w *Workflow) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func (w *Workflow) batchID() string {
	if w.NewBatchID != nil {
		return w.NewBatchID()
	}
	return uuid.NewString()
}
