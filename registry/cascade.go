package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/strblr/mongoh"
)

// ErrDeleteRejected is returned when a delete would orphan a reference whose
// policy is reject.
var ErrDeleteRejected = errors.New("registry: delete rejected by reference policy")

// maxCascadeDepth bounds recursive cascade deletes so mutually referencing
// schemas cannot loop.
const maxCascadeDepth = 10

// deleteWithPolicies deletes documents matching filter from the named
// collection, first applying the delete policy of every addressable ref edge
// that targets it: reject aborts when referencing documents exist, cascade
// deletes them recursively, nullify sets the referencing field to null, unset
// removes it, bypass does nothing. Refs under record nodes are not
// addressable and are skipped. Every reject check runs before the first
// write, so an abort leaves no partial state behind.
func (r *Registry) deleteWithPolicies(ctx context.Context, name string, filter any, many bool, depth int) (int64, error) {
	if depth > maxCascadeDepth {
		return 0, fmt.Errorf("registry: cascade depth exceeded deleting from %q", name)
	}

	ids, err := r.victimIDs(ctx, name, filter, many)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	rejects, mutations := splitEdges(r.schema.RefEdges(), name)

	for _, edge := range rejects {
		n, err := r.db.Collection(edge.Collection).CountDocuments(ctx, referencingFilter(edge.Path, ids))
		if err != nil {
			return 0, fmt.Errorf("registry: count refs in %q: %w", edge.Collection, err)
		}
		if n > 0 {
			return 0, fmt.Errorf("%w: %d document(s) in %q reference %q via %s",
				ErrDeleteRejected, n, edge.Collection, name, edge.Path)
		}
	}

	for _, edge := range mutations {
		refFilter := referencingFilter(edge.Path, ids)
		coll := r.db.Collection(edge.Collection)

		switch edge.Policy {
		case mongoh.DeleteCascade:
			if _, err := r.deleteWithPolicies(ctx, edge.Collection, refFilter, true, depth+1); err != nil {
				return 0, err
			}
			r.log.Debug("cascaded delete",
				zap.String("from", name), zap.String("into", edge.Collection), zap.String("path", edge.Path))
		case mongoh.DeleteNullify:
			update, opts := nullifyUpdate(edge, ids)
			if _, err := coll.UpdateMany(ctx, refFilter, update, opts...); err != nil {
				return 0, fmt.Errorf("registry: nullify refs in %q: %w", edge.Collection, err)
			}
		case mongoh.DeleteUnset:
			update, opts := unsetUpdate(edge, ids)
			if _, err := coll.UpdateMany(ctx, refFilter, update, opts...); err != nil {
				return 0, fmt.Errorf("registry: unset refs in %q: %w", edge.Collection, err)
			}
		}
	}

	res, err := r.db.Collection(name).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("registry: delete from %q: %w", name, err)
	}
	return res.DeletedCount, nil
}

// victimIDs resolves the _ids of the documents a delete targets, so policy
// filters can name them exactly even when the caller's filter is broad.
func (r *Registry) victimIDs(ctx context.Context, name string, filter any, many bool) ([]any, error) {
	opts := optionsFindIDs()
	if !many {
		opts.SetLimit(1)
	}
	cur, err := r.db.Collection(name).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve delete targets in %q: %w", name, err)
	}
	defer cur.Close(ctx)

	var ids []any
	for cur.Next(ctx) {
		var doc struct {
			ID any `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func optionsFindIDs() *options.FindOptions {
	return options.Find().SetProjection(bson.M{"_id": 1})
}

// splitEdges partitions the addressable edges targeting name into reject
// checks and mutating policies. Rejects run first.
func splitEdges(edges []mongoh.RefEdge, name string) (rejects, mutations []mongoh.RefEdge) {
	for _, edge := range edges {
		if edge.Target != name || !edge.Addressable || edge.Policy == mongoh.DeleteBypass {
			continue
		}
		if edge.Policy == mongoh.DeleteReject {
			rejects = append(rejects, edge)
		} else {
			mutations = append(mutations, edge)
		}
	}
	return rejects, mutations
}

// referencingFilter matches documents whose field at path references one of
// the ids. Dot paths reach through nested objects and array elements alike.
func referencingFilter(path string, ids []any) bson.M {
	return bson.M{path: bson.M{"$in": ids}}
}

// nullifyUpdate builds the update that nulls the referencing field. A ref
// inside an array is nulled per element through an arrayFilters-scoped
// positional operator, so elements referencing surviving documents keep
// their values.
func nullifyUpdate(edge mongoh.RefEdge, ids []any) (bson.M, []*options.UpdateOptions) {
	if edge.ArrayPath == "" {
		return bson.M{"$set": bson.M{edge.Path: nil}}, nil
	}
	suffix := strings.TrimPrefix(edge.Path, edge.ArrayPath)
	update := bson.M{"$set": bson.M{edge.ArrayPath + ".$[ref]" + suffix: nil}}
	return update, []*options.UpdateOptions{options.Update().SetArrayFilters(arrayRefFilter(suffix, ids))}
}

// unsetUpdate builds the update that removes the referencing field. A ref
// that is itself the array element is pulled out of the array; a ref nested
// inside array elements is unset per matching element; a scalar ref is unset
// in place.
func unsetUpdate(edge mongoh.RefEdge, ids []any) (bson.M, []*options.UpdateOptions) {
	if edge.ArrayPath == "" {
		return bson.M{"$unset": bson.M{edge.Path: ""}}, nil
	}
	if edge.Path == edge.ArrayPath {
		return bson.M{"$pull": bson.M{edge.ArrayPath: bson.M{"$in": ids}}}, nil
	}
	suffix := strings.TrimPrefix(edge.Path, edge.ArrayPath)
	update := bson.M{"$unset": bson.M{edge.ArrayPath + ".$[ref]" + suffix: ""}}
	return update, []*options.UpdateOptions{options.Update().SetArrayFilters(arrayRefFilter(suffix, ids))}
}

// arrayRefFilter scopes the $[ref] positional operator to elements whose
// value at suffix (empty when the element is the ref) is one of the ids.
func arrayRefFilter(suffix string, ids []any) options.ArrayFilters {
	return options.ArrayFilters{Filters: []any{bson.M{"ref" + suffix: bson.M{"$in": ids}}}}
}
