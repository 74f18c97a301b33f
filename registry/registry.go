// Package registry exposes a finalized mongoh schema as callable collection
// handles over a MongoDB database. Handles are minted eagerly at construction;
// looking up an undeclared name is a distinguishable failure, and an explicit
// Raw accessor returns the bare driver collection.
package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/strblr/mongoh"
)

// ErrUnknownCollection is returned when a name absent from the schema is
// looked up. Use errors.Is to detect it.
var ErrUnknownCollection = errors.New("registry: unknown collection")

// Registry maps declared collection names to schema-aware handles.
type Registry struct {
	db      *mongo.Database
	schema  *mongoh.Schema
	log     *zap.Logger
	handles map[string]*Collection
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger attaches a logger; the default is zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New builds a registry over db from a finalized schema. One handle is minted
// per declared collection, eagerly, so lookups are a plain map hit.
func New(db *mongo.Database, schema *mongoh.Schema, opts ...Option) (*Registry, error) {
	if !schema.Finalized() {
		return nil, mongoh.ErrNotFinalized
	}
	r := &Registry{
		db:      db,
		schema:  schema,
		log:     zap.NewNop(),
		handles: make(map[string]*Collection),
	}
	for _, o := range opts {
		o(r)
	}
	for _, name := range schema.Names() {
		node, _ := schema.Node(name)
		r.handles[name] = &Collection{
			reg:  r,
			name: name,
			node: node,
			coll: db.Collection(name),
		}
	}
	return r, nil
}

// Names returns the declared collection names.
func (r *Registry) Names() []string { return r.schema.Names() }

// Collection returns the schema-aware handle for name, or an error wrapping
// ErrUnknownCollection.
func (r *Registry) Collection(name string) (*Collection, error) {
	h, ok := r.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return h, nil
}

// Raw returns the bare driver collection for name, bypassing fill and cascade
// semantics.
func (r *Registry) Raw(name string) (*mongo.Collection, error) {
	h, ok := r.handles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return h.coll, nil
}

// EnsureSchemas creates every declared collection with its derived validator,
// or updates the validator in place when the collection already exists, then
// creates declared indexes.
func (r *Registry) EnsureSchemas(ctx context.Context) error {
	for _, name := range r.schema.Names() {
		node, _ := r.schema.Node(name)
		validator := bson.M{"$jsonSchema": node.BSONSchema()}

		err := r.db.CreateCollection(ctx, name,
			options.CreateCollection().SetValidator(validator))
		switch {
		case err == nil:
			r.log.Info("created collection with validator", zap.String("collection", name))
		case isNamespaceExists(err):
			if err := r.db.RunCommand(ctx, collModCommand(name, validator)).Err(); err != nil {
				return fmt.Errorf("registry: collMod %q: %w", name, err)
			}
			r.log.Info("updated collection validator", zap.String("collection", name))
		default:
			return fmt.Errorf("registry: create collection %q: %w", name, err)
		}

		if models := node.Indexes(); len(models) > 0 {
			if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
				return fmt.Errorf("registry: indexes for %q: %w", name, err)
			}
			r.log.Info("ensured indexes",
				zap.String("collection", name), zap.Int("count", len(models)))
		}
	}
	return nil
}

// collModCommand builds the command that swaps a collection's validator in
// place. Field order matters: the command name must come first.
func collModCommand(name string, validator bson.M) bson.D {
	return bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "strict"},
	}
}

// isNamespaceExists matches the server error for creating a collection that
// already exists (code 48).
func isNamespaceExists(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == 48 || ce.Name == "NamespaceExists"
	}
	return false
}
