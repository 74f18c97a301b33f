package mongoh

import (
	"fmt"

	"github.com/strblr/mongoh/bsonschema"
)

// Schema is a database-level mapping from collection name to collection node.
// It is assembled with Collection and frozen with Finalize; derivation and
// registry construction refuse a schema that was not finalized, because ref
// validation needs the complete name set.
type Schema struct {
	names     []string
	colls     map[string]*Node
	issues    Issues
	finalized bool
}

// NewSchema returns an empty, unfinalized database schema.
func NewSchema() *Schema {
	return &Schema{colls: make(map[string]*Node)}
}

// Collection registers a collection node under a name. Registration problems
// (duplicate names, non-collection nodes) are recorded and reported together
// by Finalize rather than panicking mid-chain.
func (s *Schema) Collection(name string, node *Node) *Schema {
	if _, dup := s.colls[name]; dup {
		s.issues = AppendIssues(s.issues, Issue{
			Path:    name,
			Code:    CodeDuplicateCollection,
			Message: fmt.Sprintf("collection %q registered twice", name),
		})
		return s
	}
	if node.Kind() != KindCollection {
		s.issues = AppendIssues(s.issues, Issue{
			Path:    name,
			Code:    CodeInvalidCollection,
			Message: fmt.Sprintf("collection %q is a %s node, want collection", name, node.Kind()),
		})
		return s
	}
	s.names = append(s.names, name)
	s.colls[name] = node
	return s
}

// Finalize freezes the schema and validates every ref target against the
// registered name set. All violations found are reported as one aggregate
// Issues error; on success the schema is marked finalized.
func (s *Schema) Finalize() error {
	iss := s.issues
	for _, edge := range s.RefEdges() {
		if _, ok := s.colls[edge.Target]; !ok {
			iss = AppendIssues(iss, Issue{
				Path:    edge.Path,
				Code:    CodeInvalidRef,
				Message: fmt.Sprintf("ref target %q is not a collection in this schema", edge.Target),
			})
		}
	}
	if len(iss) > 0 {
		return iss
	}
	s.finalized = true
	return nil
}

// Finalized reports whether Finalize completed successfully.
func (s *Schema) Finalized() bool { return s.finalized }

// Names returns the registered collection names in registration order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Node returns the collection node registered under name.
func (s *Schema) Node(name string) (*Node, bool) {
	n, ok := s.colls[name]
	return n, ok
}

// Validators derives the validator document for every collection. The schema
// must be finalized first.
func (s *Schema) Validators() (map[string]*bsonschema.Schema, error) {
	if !s.finalized {
		return nil, ErrNotFinalized
	}
	out := make(map[string]*bsonschema.Schema, len(s.names))
	for _, name := range s.names {
		out[name] = s.colls[name].BSONSchema()
	}
	return out, nil
}

// Validator derives the validator document for a single collection.
func (s *Schema) Validator(name string) (*bsonschema.Schema, error) {
	if !s.finalized {
		return nil, ErrNotFinalized
	}
	n, ok := s.colls[name]
	if !ok {
		return nil, fmt.Errorf("mongoh: no collection %q", name)
	}
	return n.BSONSchema(), nil
}

// RefEdge describes one ref node found in a collection tree. Path is the dot
// path of the referencing field; it is empty, and Addressable false, when the
// ref sits under a record node whose member names are open-ended. ArrayPath
// is the dot path of the outermost array on the way to the ref, empty for
// scalar refs; cascade updates need it to scope writes to matching elements
// instead of replacing the whole array.
type RefEdge struct {
	Collection  string
	Path        string
	Target      string
	Policy      DeletePolicy
	Addressable bool
	ArrayPath   string
}

// RefEdges walks every registered collection tree and returns all ref nodes
// found. Finalize uses the targets; registry.Registry uses the paths and
// policies when interpreting deletes.
func (s *Schema) RefEdges() []RefEdge {
	var edges []RefEdge
	for _, name := range s.names {
		collectRefs(name, s.colls[name], "", "", true, &edges)
	}
	return edges
}

func collectRefs(coll string, n *Node, path, arrayPath string, addressable bool, edges *[]RefEdge) {
	switch n.kind {
	case KindRef:
		*edges = append(*edges, RefEdge{
			Collection:  coll,
			Path:        path,
			Target:      n.target,
			Policy:      n.policy,
			Addressable: addressable && path != "",
			ArrayPath:   arrayPath,
		})
	case KindArray:
		// Dot paths match array elements without an index segment; the
		// outermost array is remembered for element-scoped updates.
		if arrayPath == "" {
			arrayPath = path
		}
		collectRefs(coll, n.items, path, arrayPath, addressable, edges)
	case KindObject, KindCollection:
		for _, p := range n.props {
			collectRefs(coll, p.Node, joinPath(path, p.Name), arrayPath, addressable, edges)
		}
	case KindRecord:
		collectRefs(coll, n.value, path, arrayPath, false, edges)
	case KindOptional, KindDefault:
		collectRefs(coll, n.inner, path, arrayPath, addressable, edges)
	case KindUnion, KindIntersection:
		for _, m := range n.members {
			collectRefs(coll, m, path, arrayPath, addressable, edges)
		}
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
