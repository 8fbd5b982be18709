package recordstore

import (
	"context"
	"fmt"

	"github.com/dalemusser/projecthub/internal/app/cascade"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store runs the cascade's batched finds and deletes against MongoDB.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Find returns the documents of collection matching any of match, projected
// to fields. Several matches become one $or query.
func (s *Store) Find(ctx context.Context, collection string, match []cascade.FieldIn, fields []string) ([]bson.M, error) {
	filter := matchFilter(match)
	if filter == nil {
		return nil, nil
	}

	proj := bson.M{}
	for _, f := range fields {
		proj[f] = 1
	}
	opts := options.Find()
	if len(proj) > 0 {
		opts.SetProjection(proj)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

// DeleteIn removes every document whose field is in values.
func (s *Store) DeleteIn(ctx context.Context, collection, field string, values []any) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	res, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{field: bson.M{"$in": values}})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

// matchFilter builds {field: {$in: values}} or an $or of them. Empty
// matches produce nil so that no query is sent.
func matchFilter(match []cascade.FieldIn) bson.M {
	var or bson.A
	for _, m := range match {
		if len(m.Values) == 0 {
			continue
		}
		or = append(or, bson.M{m.Field: bson.M{"$in": m.Values}})
	}
	switch len(or) {
	case 0:
		return nil
	case 1:
		return or[0].(bson.M)
	default:
		return bson.M{"$or": or}
	}
}
