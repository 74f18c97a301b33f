package mongoh

import (
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"
)

// Absent is the enum sentinel for "value may be missing". An enum that lists
// Absent reports Required() == false and the sentinel never appears in the
// derived validator.
var Absent = absentValue{}

type absentValue struct{}

// Prop is one named member of an object or collection node. Order of
// declaration is preserved so derived documents are deterministic.
type Prop struct {
	Name string
	Node *Node
}

// Node is one immutable schema construct. Every mutator returns a fresh node
// and shares children by reference, which is safe because children are
// themselves immutable.
type Node struct {
	kind Kind

	title       string
	description string

	// string
	minLen  *int
	maxLen  *int
	pattern string

	// number
	numType      NumberType
	min          *float64
	max          *float64
	exclusiveMin bool
	exclusiveMax bool
	multipleOf   *float64

	// array
	items       *Node
	minItems    *int
	maxItems    *int
	uniqueItems bool

	// object / collection
	props   []Prop
	strict  bool
	indexes []mongo.IndexModel

	// record
	key   *Node
	value *Node

	// optional / default
	inner    *Node
	defValue any
	defFn    func() any

	// union / intersection
	members   []*Node
	exclusive bool

	// ref
	target string
	policy DeletePolicy

	// enum
	values []any
}

// ---- primitive factories ----

// Null matches only the BSON null value.
func Null() *Node { return &Node{kind: KindNull} }

// Bool matches a BSON boolean.
func Bool() *Node { return &Node{kind: KindBool} }

// Date matches a BSON date.
func Date() *Node { return &Node{kind: KindDate} }

// Binary matches BSON binData.
func Binary() *Node { return &Node{kind: KindBinary} }

// ObjectID matches a BSON ObjectId.
func ObjectID() *Node { return &Node{kind: KindObjectID} }

// Ref declares a reference to a document in the named collection, stored as an
// ObjectId. The target name is checked against the enclosing Schema at
// Finalize time. The delete policy defaults to bypass; see OnDelete.
func Ref(target string) *Node {
	return &Node{kind: KindRef, target: target, policy: DeleteBypass}
}

// Enum matches exactly one of the listed literal values. Listing Absent makes
// the node optional without changing the emitted value set.
func Enum(values ...any) *Node {
	return &Node{kind: KindEnum, values: values}
}

// String matches a BSON string. Constrain with MinLen/MaxLen/Pattern.
func String() *Node { return &Node{kind: KindString} }

// Number matches a BSON double by default; switch the subtype with
// Int/Long/Decimal and constrain with Min/Max/MultipleOf.
func Number() *Node { return &Node{kind: KindNumber, numType: NumberDouble} }

// ---- composite factories ----

// Array matches an ordered sequence whose elements all satisfy item.
func Array(item *Node) *Node { return &Node{kind: KindArray, items: item} }

// Object starts an empty object node; add members with Prop.
func Object() *Node { return &Node{kind: KindObject} }

// Collection starts an empty collection node: an object schema that is the
// unit registered under a name in a Schema, plus an index list.
func Collection() *Node { return &Node{kind: KindCollection} }

// Record matches an open-ended mapping. An enum key closes the property set;
// a string key constrains member names by its pattern.
func Record(key, value *Node) *Node {
	return &Node{kind: KindRecord, key: key, value: value}
}

// Union matches any one of the member schemas (anyOf; oneOf when Exclusive).
func Union(members ...*Node) *Node {
	return &Node{kind: KindUnion, members: members}
}

// Intersection matches all of the member schemas (allOf).
func Intersection(members ...*Node) *Node {
	return &Node{kind: KindIntersection, members: members}
}

// clone returns a shallow copy. Mutators that grow a slice copy it first so
// the receiver's backing array is never shared with the result.
func (n *Node) clone() *Node {
	c := *n
	return &c
}

// ---- uniform combinators ----

// Array wraps the node as array-of-self.
func (n *Node) Array() *Node { return Array(n) }

// Record wraps the node as record-of-self keyed by an open string.
func (n *Node) Record() *Node { return Record(String(), n) }

// Or builds a union of this node and the given members, in that order.
func (n *Node) Or(others ...*Node) *Node {
	return Union(append([]*Node{n}, others...)...)
}

// And builds an intersection of this node and the given members, in that order.
func (n *Node) And(others ...*Node) *Node {
	return Intersection(append([]*Node{n}, others...)...)
}

// Optional wraps the node so its absence is allowed; derivation and fill pass
// through to the wrapped node.
func (n *Node) Optional() *Node {
	return &Node{kind: KindOptional, inner: n}
}

// Nullable is shorthand for a union of this node and Null.
func (n *Node) Nullable() *Node { return n.Or(Null()) }

// Default wraps the node with a value applied when the input is absent. A
// func() any argument is treated as a producer and invoked lazily, once per
// fill, never at definition time.
func (n *Node) Default(v any) *Node {
	d := &Node{kind: KindDefault, inner: n}
	if fn, ok := v.(func() any); ok {
		d.defFn = fn
	} else {
		d.defValue = v
	}
	return d
}

// Title returns a copy carrying the given title metadata.
func (n *Node) Title(s string) *Node {
	c := n.clone()
	c.title = s
	return c
}

// Description returns a copy carrying the given description metadata.
func (n *Node) Description(s string) *Node {
	c := n.clone()
	c.description = s
	return c
}

// ---- string options ----

// MinLen sets the minimum string length. Meaningful on string nodes only.
func (n *Node) MinLen(v int) *Node {
	c := n.clone()
	c.minLen = &v
	return c
}

// MaxLen sets the maximum string length. Meaningful on string nodes only.
func (n *Node) MaxLen(v int) *Node {
	c := n.clone()
	c.maxLen = &v
	return c
}

// Pattern constrains a string node by a regular expression source string.
func (n *Node) Pattern(src string) *Node {
	c := n.clone()
	c.pattern = src
	return c
}

// Regexp constrains a string node by a compiled regexp; only its source text
// is carried into the derived validator.
func (n *Node) Regexp(re *regexp.Regexp) *Node {
	return n.Pattern(re.String())
}

// ---- number options ----

// Int selects the BSON int subtype. Meaningful on number nodes only.
func (n *Node) Int() *Node { return n.numberType(NumberInt) }

// Long selects the BSON long subtype.
func (n *Node) Long() *Node { return n.numberType(NumberLong) }

// Decimal selects the BSON decimal subtype.
func (n *Node) Decimal() *Node { return n.numberType(NumberDecimal) }

// Double selects the BSON double subtype (the default).
func (n *Node) Double() *Node { return n.numberType(NumberDouble) }

func (n *Node) numberType(t NumberType) *Node {
	c := n.clone()
	c.numType = t
	return c
}

// Min sets the inclusive lower bound of a number node.
func (n *Node) Min(v float64) *Node {
	c := n.clone()
	c.min = &v
	return c
}

// Max sets the inclusive upper bound of a number node.
func (n *Node) Max(v float64) *Node {
	c := n.clone()
	c.max = &v
	return c
}

// ExclusiveMin marks the lower bound as exclusive.
func (n *Node) ExclusiveMin() *Node {
	c := n.clone()
	c.exclusiveMin = true
	return c
}

// ExclusiveMax marks the upper bound as exclusive.
func (n *Node) ExclusiveMax() *Node {
	c := n.clone()
	c.exclusiveMax = true
	return c
}

// MultipleOf constrains a number node to multiples of v.
func (n *Node) MultipleOf(v float64) *Node {
	c := n.clone()
	c.multipleOf = &v
	return c
}

// ---- array options ----

// MinItems sets the minimum array length. Meaningful on array nodes only.
func (n *Node) MinItems(v int) *Node {
	c := n.clone()
	c.minItems = &v
	return c
}

// MaxItems sets the maximum array length.
func (n *Node) MaxItems(v int) *Node {
	c := n.clone()
	c.maxItems = &v
	return c
}

// UniqueItems requires array elements to be distinct.
func (n *Node) UniqueItems() *Node {
	c := n.clone()
	c.uniqueItems = true
	return c
}

// ---- object / collection options ----

// Prop returns a copy with the named member appended. Declaration order is
// preserved. Meaningful on object and collection nodes only.
func (n *Node) Prop(name string, node *Node) *Node {
	c := n.clone()
	c.props = append(append([]Prop(nil), n.props...), Prop{Name: name, Node: node})
	return c
}

// Strict forbids members not declared by Prop (additionalProperties: false).
func (n *Node) Strict() *Node {
	c := n.clone()
	c.strict = true
	return c
}

// Index returns a copy with the index descriptor appended. Descriptors are
// opaque to the algebra; registry.Registry creates them at EnsureSchemas time.
func (n *Node) Index(model mongo.IndexModel) *Node {
	c := n.clone()
	c.indexes = append(append([]mongo.IndexModel(nil), n.indexes...), model)
	return c
}

// ---- union options ----

// Exclusive makes a union emit oneOf instead of anyOf.
func (n *Node) Exclusive() *Node {
	c := n.clone()
	c.exclusive = true
	return c
}

// ---- ref options ----

// OnDelete sets the delete policy carried by a ref node.
func (n *Node) OnDelete(p DeletePolicy) *Node {
	c := n.clone()
	c.policy = p
	return c
}

// ---- accessors ----

// Kind reports the node's variant tag.
func (n *Node) Kind() Kind { return n.kind }

// Props returns the declared members of an object or collection node.
func (n *Node) Props() []Prop {
	return append([]Prop(nil), n.props...)
}

// Indexes returns the index descriptors accumulated on a collection node.
func (n *Node) Indexes() []mongo.IndexModel {
	return append([]mongo.IndexModel(nil), n.indexes...)
}

// RefTarget returns the target collection name and delete policy of a ref node.
func (n *Node) RefTarget() (string, DeletePolicy) {
	return n.target, n.policy
}
