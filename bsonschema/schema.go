// Package bsonschema holds the validator document derived from a node tree:
// the $jsonSchema dialect MongoDB's schema enforcement consumes.
package bsonschema

// Schema is the validator document representation used for export. It carries
// the small fixed vocabulary the store understands; everything is omitted when
// unset so derived documents stay minimal.
type Schema struct {
	// Core
	BSONType    string `bson:"bsonType,omitempty" json:"bsonType,omitempty"`
	Title       string `bson:"title,omitempty" json:"title,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Enum        []any  `bson:"enum,omitempty" json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `bson:"properties,omitempty" json:"properties,omitempty"`
	PatternProperties    map[string]*Schema `bson:"patternProperties,omitempty" json:"patternProperties,omitempty"`
	Required             []string           `bson:"required,omitempty" json:"required,omitempty"`
	AdditionalProperties any                `bson:"additionalProperties,omitempty" json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema `bson:"items,omitempty" json:"items,omitempty"`
	MinItems    *int    `bson:"minItems,omitempty" json:"minItems,omitempty"`
	MaxItems    *int    `bson:"maxItems,omitempty" json:"maxItems,omitempty"`
	UniqueItems bool    `bson:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	// String
	MinLength *int   `bson:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength *int   `bson:"maxLength,omitempty" json:"maxLength,omitempty"`
	Pattern   string `bson:"pattern,omitempty" json:"pattern,omitempty"`

	// Number
	Minimum          *float64 `bson:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum          *float64 `bson:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMinimum bool     `bson:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `bson:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `bson:"multipleOf,omitempty" json:"multipleOf,omitempty"`

	// Union / intersection
	AnyOf []*Schema `bson:"anyOf,omitempty" json:"anyOf,omitempty"`
	OneOf []*Schema `bson:"oneOf,omitempty" json:"oneOf,omitempty"`
	AllOf []*Schema `bson:"allOf,omitempty" json:"allOf,omitempty"`
}
