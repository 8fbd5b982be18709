package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/dalemusser/projecthub/internal/app/cascade"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Call is one store operation seen by a MemStore.
type Call struct {
	Op         string // "find" or "delete"
	Collection string
	Values     int
}

// MemStore is an in-memory record store for cascade and handler tests.
// Documents are kept as bson.M exactly as the driver would decode them.
type MemStore struct {
	mu    sync.Mutex
	colls map[string][]bson.M
	calls []Call

	// FailFind and FailDelete inject an error for the named collection.
	FailFind   map[string]error
	FailDelete map[string]error
}

func NewMemStore() *MemStore {
	return &MemStore{
		colls:      make(map[string][]bson.M),
		FailFind:   make(map[string]error),
		FailDelete: make(map[string]error),
	}
}

// InsertOne stores doc after a bson round trip.
func (m *MemStore) InsertOne(_ context.Context, collection string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colls[collection] = append(m.colls[collection], d)
	return nil
}

// Count returns the number of documents in a collection.
func (m *MemStore) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.colls[collection])
}

// CountWhere returns how many documents have field matching value.
func (m *MemStore) CountWhere(collection, field string, value any) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.colls[collection] {
		if fieldMatches(d[field], []any{value}) {
			n++
		}
	}
	return n
}

// Calls returns the operations seen so far.
func (m *MemStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ResetCalls clears the call log.
func (m *MemStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MemStore) Find(_ context.Context, collection string, match []cascade.FieldIn, fields []string) ([]bson.M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, f := range match {
		n += len(f.Values)
	}
	m.calls = append(m.calls, Call{Op: "find", Collection: collection, Values: n})
	if err := m.FailFind[collection]; err != nil {
		return nil, err
	}

	var out []bson.M
	for _, d := range m.colls[collection] {
		if !anyMatch(d, match) {
			continue
		}
		p := bson.M{"_id": d["_id"]}
		for _, f := range fields {
			if v, ok := d[f]; ok {
				p[f] = v
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemStore) DeleteIn(_ context.Context, collection, field string, values []any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "delete", Collection: collection, Values: len(values)})
	if err := m.FailDelete[collection]; err != nil {
		return 0, err
	}

	kept := m.colls[collection][:0]
	var n int64
	for _, d := range m.colls[collection] {
		if fieldMatches(d[field], values) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	m.colls[collection] = kept
	return n, nil
}

// GetByID implements cascade.UserLookup.
func (m *MemStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailFind["users"]; err != nil {
		return nil, err
	}
	for _, d := range m.colls["users"] {
		if d["_id"] == id {
			u, err := decodeUser(d)
			if err != nil {
				return nil, err
			}
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

// FindByEmails implements cascade.UserLookup.
func (m *MemStore) FindByEmails(_ context.Context, emails []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "find", Collection: "users", Values: len(emails)})
	if err := m.FailFind["users"]; err != nil {
		return nil, err
	}
	var out []models.User
	for _, d := range m.colls["users"] {
		if fieldMatches(d["email"], toAny(emails)) {
			u, err := decodeUser(d)
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
	}
	return out, nil
}

func decodeUser(d bson.M) (models.User, error) {
	var u models.User
	raw, err := bson.Marshal(d)
	if err != nil {
		return u, fmt.Errorf("marshal user: %w", err)
	}
	if err := bson.Unmarshal(raw, &u); err != nil {
		return u, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func anyMatch(d bson.M, match []cascade.FieldIn) bool {
	for _, f := range match {
		if fieldMatches(d[f.Field], f.Values) {
			return true
		}
	}
	return false
}

// fieldMatches mirrors $in: a scalar equals one of values, or an array
// field contains one of them.
func fieldMatches(v any, values []any) bool {
	if arr, ok := v.(primitive.A); ok {
		for _, x := range arr {
			if fieldMatches(x, values) {
				return true
			}
		}
		return false
	}
	for _, want := range values {
		if v == want {
			return true
		}
	}
	return false
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
