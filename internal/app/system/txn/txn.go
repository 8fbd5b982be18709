// Package txn runs multi-collection writes inside a MongoDB transaction when
// the deployment supports one, and falls back to plain execution on a
// standalone server.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes that mean "this deployment can't do transactions".
const (
	codeIllegalOperation           = 20
	codeInvalidOptions             = 51
	codeOperationNotSupportedInTxn = 263
)

// IsNotSupported reports whether err indicates that transactions (or
// sessions) are unavailable, e.g. a standalone mongod or an old DocumentDB.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeInvalidOptions, codeOperationNotSupportedInTxn:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	has := func(sub string) bool { return strings.Contains(s, sub) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation") && has("transaction"):
		return true
	}
	return false
}

// Runner executes a unit of work transactionally when possible.
type Runner struct {
	client  *mongo.Client
	enabled bool
	log     *zap.Logger
}

// New returns a Runner. With enabled=false (or a nil client) Run never opens
// a transaction.
func New(client *mongo.Client, enabled bool, logger *zap.Logger) *Runner {
	return &Runner{client: client, enabled: enabled, log: logger}
}

// Run calls fn with a context bound to a transaction and reports whether the
// work was committed transactionally. fn may be called more than once: the
// driver retries it on transient errors, and Run calls it again without a
// transaction when the server turns out not to support one. fn must therefore
// recompute its results from scratch on every call.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	if r == nil || r.client == nil || !r.enabled {
		return false, fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.log.Warn("sessions not supported; running without transaction", zap.Error(err))
			return false, fn(ctx)
		}
		return false, err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return true, nil
	}
	if IsNotSupported(err) {
		r.log.Warn("transactions not supported; running without transaction", zap.Error(err))
		return false, fn(ctx)
	}
	return true, err
}
