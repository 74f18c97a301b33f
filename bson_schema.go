package mongoh

import (
	"github.com/strblr/mongoh/bsonschema"
)

// BSONSchema derives the validator document for the node tree. It is a pure
// structural traversal: the same tree always yields the same document, and
// every call allocates a fresh one, so results may be mutated freely.
func (n *Node) BSONSchema() *bsonschema.Schema {
	s := n.deriveBase()
	if n.title != "" {
		s.Title = n.title
	}
	if n.description != "" {
		s.Description = n.description
	}
	return s
}

func (n *Node) deriveBase() *bsonschema.Schema {
	switch n.kind {
	case KindNull:
		return &bsonschema.Schema{BSONType: "null"}
	case KindBool:
		return &bsonschema.Schema{BSONType: "bool"}
	case KindDate:
		return &bsonschema.Schema{BSONType: "date"}
	case KindBinary:
		return &bsonschema.Schema{BSONType: "binData"}
	case KindObjectID, KindRef:
		// A ref is stored as the referenced document's ObjectId; the target
		// name is schema metadata, not part of the validator.
		return &bsonschema.Schema{BSONType: "objectId"}

	case KindEnum:
		values := make([]any, 0, len(n.values))
		for _, v := range n.values {
			if _, ok := v.(absentValue); ok {
				continue
			}
			values = append(values, v)
		}
		return &bsonschema.Schema{Enum: values}

	case KindString:
		return &bsonschema.Schema{
			BSONType:  "string",
			MinLength: n.minLen,
			MaxLength: n.maxLen,
			Pattern:   n.pattern,
		}

	case KindNumber:
		return &bsonschema.Schema{
			BSONType:         string(n.numType),
			Minimum:          n.min,
			Maximum:          n.max,
			ExclusiveMinimum: n.exclusiveMin,
			ExclusiveMaximum: n.exclusiveMax,
			MultipleOf:       n.multipleOf,
		}

	case KindArray:
		return &bsonschema.Schema{
			BSONType:    "array",
			Items:       n.items.BSONSchema(),
			MinItems:    n.minItems,
			MaxItems:    n.maxItems,
			UniqueItems: n.uniqueItems,
		}

	case KindObject, KindCollection:
		s := &bsonschema.Schema{BSONType: "object"}
		if len(n.props) > 0 {
			s.Properties = make(map[string]*bsonschema.Schema, len(n.props))
		}
		for _, p := range n.props {
			s.Properties[p.Name] = p.Node.BSONSchema()
			if p.Node.Required() {
				s.Required = append(s.Required, p.Name)
			}
		}
		if n.strict {
			s.AdditionalProperties = false
		}
		return s

	case KindRecord:
		return n.deriveRecord()

	case KindOptional, KindDefault:
		// Wrappers derive as their inner node; only requiredness differs.
		return n.inner.BSONSchema()

	case KindUnion:
		members := make([]*bsonschema.Schema, len(n.members))
		for i, m := range n.members {
			members[i] = m.BSONSchema()
		}
		if n.exclusive {
			return &bsonschema.Schema{OneOf: members}
		}
		return &bsonschema.Schema{AnyOf: members}

	case KindIntersection:
		members := make([]*bsonschema.Schema, len(n.members))
		for i, m := range n.members {
			members[i] = m.BSONSchema()
		}
		return &bsonschema.Schema{AllOf: members}
	}
	return &bsonschema.Schema{}
}

// deriveRecord emits a closed property set when the key is an enum, otherwise
// a single pattern-keyed entry using the key's pattern or a match-all.
func (n *Node) deriveRecord() *bsonschema.Schema {
	s := &bsonschema.Schema{BSONType: "object"}
	if n.key.kind == KindEnum {
		s.Properties = make(map[string]*bsonschema.Schema)
		var names []string
		for _, v := range n.key.values {
			name, ok := v.(string)
			if !ok {
				continue
			}
			s.Properties[name] = n.value.BSONSchema()
			names = append(names, name)
		}
		if n.value.Required() {
			s.Required = names
		}
		return s
	}
	pattern := n.key.pattern
	if pattern == "" {
		pattern = "^.*$"
	}
	s.PatternProperties = map[string]*bsonschema.Schema{
		pattern: n.value.BSONSchema(),
	}
	return s
}
