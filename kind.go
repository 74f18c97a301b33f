package mongoh

// Kind tags the closed set of node variants. Derivation, requiredness and fill
// are exhaustive switches over this tag, so adding a kind surfaces every site
// that needs a rule.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindDate
	KindBinary
	KindObjectID
	KindRef
	KindEnum
	KindString
	KindNumber
	KindArray
	KindObject
	KindCollection
	KindRecord
	KindOptional
	KindDefault
	KindUnion
	KindIntersection
)

var kindNames = [...]string{
	KindNull:         "null",
	KindBool:         "bool",
	KindDate:         "date",
	KindBinary:       "binary",
	KindObjectID:     "objectId",
	KindRef:          "ref",
	KindEnum:         "enum",
	KindString:       "string",
	KindNumber:       "number",
	KindArray:        "array",
	KindObject:       "object",
	KindCollection:   "collection",
	KindRecord:       "record",
	KindOptional:     "optional",
	KindDefault:      "default",
	KindUnion:        "union",
	KindIntersection: "intersection",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// NumberType selects the BSON numeric subtype a number node validates against.
type NumberType string

const (
	NumberDouble  NumberType = "double"
	NumberInt     NumberType = "int"
	NumberLong    NumberType = "long"
	NumberDecimal NumberType = "decimal"
)

// DeletePolicy tags a ref node with the behavior an external cascade mechanism
// applies when the referenced document is deleted. The algebra only carries the
// tag; registry.Registry interprets it.
type DeletePolicy string

const (
	DeleteBypass  DeletePolicy = "bypass"
	DeleteReject  DeletePolicy = "reject"
	DeleteCascade DeletePolicy = "cascade"
	DeleteNullify DeletePolicy = "nullify"
	DeleteUnset   DeletePolicy = "unset"
)
