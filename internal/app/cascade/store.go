package cascade

import (
	"context"

	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldIn matches records whose Field equals, or for array fields contains,
// one of Values.
type FieldIn struct {
	Field  string
	Values []any
}

// RecordStore is the batched find/delete surface the cascade runs against.
type RecordStore interface {
	// Find returns records of collection matching any of match, projected
	// to fields.
	Find(ctx context.Context, collection string, match []FieldIn, fields []string) ([]bson.M, error)
	// DeleteIn removes records whose field is in values and returns the
	// store-reported count.
	DeleteIn(ctx context.Context, collection, field string, values []any) (int64, error)
}

// UserLookup reads the user records the workflow needs.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)
}

// TxRunner runs fn atomically when it can. It reports whether a
// transaction was used. fn may be invoked more than once.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) (bool, error)
}

// plainRunner runs fn once without a transaction.
type plainRunner struct{}

func (plainRunner) Run(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	return false, fn(ctx)
}
