package registry

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/strblr/mongoh"
)

// Collection is a schema-aware handle over one declared collection. Writes go
// through the node's Fill so declared defaults are applied immediately before
// the store sees the document; deletes honor the schema's delete policies.
// Everything else is reachable through Raw.
type Collection struct {
	reg  *Registry
	name string
	node *mongoh.Node
	coll *mongo.Collection
}

// Name returns the declared collection name.
func (c *Collection) Name() string { return c.name }

// Node returns the collection's schema node.
func (c *Collection) Node() *mongoh.Node { return c.node }

// Raw returns the bare driver collection.
func (c *Collection) Raw() *mongo.Collection { return c.coll }

// Fill normalizes a partial document against the collection schema without
// writing it.
func (c *Collection) Fill(doc any) any { return c.node.Fill(doc) }

// InsertOne normalizes doc through Fill and inserts it.
func (c *Collection) InsertOne(ctx context.Context, doc any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	return c.coll.InsertOne(ctx, c.node.Fill(doc), opts...)
}

// InsertMany normalizes every document through Fill and inserts them.
func (c *Collection) InsertMany(ctx context.Context, docs []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	filled := make([]any, len(docs))
	for i, d := range docs {
		filled[i] = c.node.Fill(d)
	}
	return c.coll.InsertMany(ctx, filled, opts...)
}

// ReplaceOne normalizes the replacement through Fill and replaces the first
// match.
func (c *Collection) ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	return c.coll.ReplaceOne(ctx, filter, c.node.Fill(replacement), opts...)
}

// DeleteOne deletes the first match after applying the delete policies of
// every ref edge targeting this collection. See Registry for the policy
// semantics.
func (c *Collection) DeleteOne(ctx context.Context, filter any) (int64, error) {
	return c.reg.deleteWithPolicies(ctx, c.name, filter, false, 0)
}

// DeleteMany deletes all matches after applying delete policies.
func (c *Collection) DeleteMany(ctx context.Context, filter any) (int64, error) {
	return c.reg.deleteWithPolicies(ctx, c.name, filter, true, 0)
}
