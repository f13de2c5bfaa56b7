package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
)

// Inserter is the part of *mongo.Collection used by InsertPerformer.
type Inserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	Name() string
}

var _ Inserter = (*mongo.Collection)(nil)

// InsertPerformer writes each batch with one ordered InsertMany. With ordered
// inserts, documents after the first failing one are not written.
type InsertPerformer[T any] struct {
	coll Inserter
}

var _ collector.Performer[struct{}] = (*InsertPerformer[struct{}])(nil)

// NewInsertPerformer creates an InsertPerformer writing to coll.
func NewInsertPerformer[T any](coll Inserter) *InsertPerformer[T] {
	return &InsertPerformer[T]{coll: coll}
}

// Perform inserts batch.
func (p *InsertPerformer[T]) Perform(ctx context.Context, batch []T) error {
	docs := make([]interface{}, len(batch))
	for i := range batch {
		docs[i] = batch[i]
	}

	_, err := p.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return nil
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		return errors.Wrapf(err, "mongodb: %d of %d documents rejected by %s", len(bwe.WriteErrors), len(docs), p.coll.Name())
	}
	return errors.Wrapf(err, "mongodb: failed to insert %d documents into %s", len(docs), p.coll.Name())
}

// String identifies the performer in collector logs.
func (p *InsertPerformer[T]) String() string {
	return "mongodb:" + p.coll.Name()
}
