package mongoh_test

import (
	"reflect"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strblr/mongoh"
)

// normalize marshals v to JSON and unmarshals back into interface{} to remove
// pointer and ordering effects.
func normalize(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func assertSchema(t *testing.T, node *mongoh.Node, want any) {
	t.Helper()
	got := normalize(t, node.BSONSchema())
	if !reflect.DeepEqual(got, normalize(t, want)) {
		t.Fatalf("schema mismatch\n got=%v\nwant=%v", got, normalize(t, want))
	}
}

func TestBSONSchema_Primitives(t *testing.T) {
	assertSchema(t, mongoh.Null(), map[string]any{"bsonType": "null"})
	assertSchema(t, mongoh.Bool(), map[string]any{"bsonType": "bool"})
	assertSchema(t, mongoh.Date(), map[string]any{"bsonType": "date"})
	assertSchema(t, mongoh.Binary(), map[string]any{"bsonType": "binData"})
	assertSchema(t, mongoh.ObjectID(), map[string]any{"bsonType": "objectId"})
	assertSchema(t, mongoh.Ref("users"), map[string]any{"bsonType": "objectId"})
}

func TestBSONSchema_String(t *testing.T) {
	assertSchema(t, mongoh.String(), map[string]any{"bsonType": "string"})
	assertSchema(t,
		mongoh.String().MinLen(1).MaxLen(64).Pattern("^[a-z]+$"),
		map[string]any{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 64,
			"pattern":   "^[a-z]+$",
		})
}

func TestBSONSchema_Number(t *testing.T) {
	assertSchema(t, mongoh.Number(), map[string]any{"bsonType": "double"})
	assertSchema(t,
		mongoh.Number().Int().Min(0).Max(10).ExclusiveMax().MultipleOf(2),
		map[string]any{
			"bsonType":         "int",
			"minimum":          0,
			"maximum":          10,
			"exclusiveMaximum": true,
			"multipleOf":       2,
		})
	assertSchema(t, mongoh.Number().Long(), map[string]any{"bsonType": "long"})
	assertSchema(t, mongoh.Number().Decimal(), map[string]any{"bsonType": "decimal"})
}

func TestBSONSchema_Enum(t *testing.T) {
	assertSchema(t, mongoh.Enum("a", "b", 3), map[string]any{"enum": []any{"a", "b", 3}})
	// Absent never reaches the emitted value set.
	assertSchema(t, mongoh.Enum("a", mongoh.Absent), map[string]any{"enum": []any{"a"}})
}

func TestBSONSchema_Array(t *testing.T) {
	assertSchema(t,
		mongoh.Array(mongoh.String()).MinItems(1).MaxItems(5).UniqueItems(),
		map[string]any{
			"bsonType":    "array",
			"items":       map[string]any{"bsonType": "string"},
			"minItems":    1,
			"maxItems":    5,
			"uniqueItems": true,
		})
}

func TestBSONSchema_Object(t *testing.T) {
	obj := mongoh.Object().
		Prop("name", mongoh.String()).
		Prop("age", mongoh.Number().Int().Optional()).
		Prop("role", mongoh.Enum("admin", "user").Default("user")).
		Strict()

	assertSchema(t, obj, map[string]any{
		"bsonType": "object",
		"properties": map[string]any{
			"name": map[string]any{"bsonType": "string"},
			"age":  map[string]any{"bsonType": "int"},
			"role": map[string]any{"enum": []any{"admin", "user"}},
		},
		"required":             []any{"name", "role"},
		"additionalProperties": false,
	})
}

func TestBSONSchema_RequiredFollowsDeclarationOrder(t *testing.T) {
	obj := mongoh.Object().
		Prop("b", mongoh.String()).
		Prop("a", mongoh.String()).
		Prop("c", mongoh.String().Optional())
	assert.Equal(t, []string{"b", "a"}, obj.BSONSchema().Required)
}

func TestBSONSchema_RecordEnumKey(t *testing.T) {
	rec := mongoh.Record(mongoh.Enum("x", "y"), mongoh.String())
	s := rec.BSONSchema()
	require.Len(t, s.Properties, 2)
	assert.Equal(t, "string", s.Properties["x"].BSONType)
	assert.Equal(t, "string", s.Properties["y"].BSONType)
	assert.ElementsMatch(t, []string{"x", "y"}, s.Required)

	// optional value node drops the required list
	recOpt := mongoh.Record(mongoh.Enum("x", "y"), mongoh.String().Optional())
	assert.Empty(t, recOpt.BSONSchema().Required)
}

func TestBSONSchema_RecordStringKey(t *testing.T) {
	rec := mongoh.Record(mongoh.String().Pattern("^k_"), mongoh.Bool())
	s := rec.BSONSchema()
	require.Contains(t, s.PatternProperties, "^k_")
	assert.Equal(t, "bool", s.PatternProperties["^k_"].BSONType)

	open := mongoh.Bool().Record().BSONSchema()
	require.Contains(t, open.PatternProperties, "^.*$")
}

func TestBSONSchema_UnionIntersection(t *testing.T) {
	assertSchema(t,
		mongoh.String().Or(mongoh.Number().Int()),
		map[string]any{"anyOf": []any{
			map[string]any{"bsonType": "string"},
			map[string]any{"bsonType": "int"},
		}})
	assertSchema(t,
		mongoh.String().Or(mongoh.Number().Int()).Exclusive(),
		map[string]any{"oneOf": []any{
			map[string]any{"bsonType": "string"},
			map[string]any{"bsonType": "int"},
		}})
	assertSchema(t,
		mongoh.String().And(mongoh.String().MinLen(3)),
		map[string]any{"allOf": []any{
			map[string]any{"bsonType": "string"},
			map[string]any{"bsonType": "string", "minLength": 3},
		}})
}

func TestBSONSchema_WrappersPassThrough(t *testing.T) {
	inner := mongoh.String().MinLen(2)
	assertSchema(t, inner.Optional(), map[string]any{"bsonType": "string", "minLength": 2})
	assertSchema(t, inner.Default("ab"), map[string]any{"bsonType": "string", "minLength": 2})
}

func TestBSONSchema_TitleDescription(t *testing.T) {
	s := mongoh.String().Title("Email").Description("account email").BSONSchema()
	assert.Equal(t, "Email", s.Title)
	assert.Equal(t, "account email", s.Description)

	// metadata on a wrapper overlays the inner derivation
	wrapped := mongoh.String().Title("inner").Optional().Title("outer").BSONSchema()
	assert.Equal(t, "outer", wrapped.Title)
}

func TestBSONSchema_Deterministic(t *testing.T) {
	node := mongoh.Collection().
		Prop("name", mongoh.String().MinLen(1)).
		Prop("tags", mongoh.String().Array().UniqueItems()).
		Prop("meta", mongoh.Record(mongoh.Enum("a", "b"), mongoh.Number())).
		Strict()

	first := normalize(t, node.BSONSchema())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, normalize(t, node.BSONSchema()))
	}
}
