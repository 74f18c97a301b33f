// Package manifest loads database schemas from YAML manifests, so validator
// maintenance does not require recompiling the program that owns the schema.
package manifest

import (
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"github.com/strblr/mongoh"
)

// File is the root manifest structure.
type File struct {
	Collections []CollectionSpec `yaml:"collections"`
}

// CollectionSpec declares one collection: its members, strictness and indexes.
type CollectionSpec struct {
	Name    string       `yaml:"name"`
	Strict  bool         `yaml:"strict"`
	Fields  []*FieldSpec `yaml:"fields"`
	Indexes []IndexSpec  `yaml:"indexes"`
}

// IndexSpec is a declarative index: field name -> direction (1 or -1).
type IndexSpec struct {
	Name   string `yaml:"name"`
	Unique bool   `yaml:"unique"`
	Keys   []Key  `yaml:"keys"`
}

// Key is a single index key. Order of keys is preserved.
type Key struct {
	Field string `yaml:"field"`
	Order int    `yaml:"order"`
}

// FieldSpec is the recursive field grammar. Type selects the node kind; the
// remaining members apply per kind and are ignored otherwise, mirroring the
// algebra's behavior.
type FieldSpec struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`

	// enum
	Values []any `yaml:"values"`

	// string
	MinLength *int   `yaml:"minLength"`
	MaxLength *int   `yaml:"maxLength"`
	Pattern   string `yaml:"pattern"`

	// number
	Minimum          *float64 `yaml:"minimum"`
	Maximum          *float64 `yaml:"maximum"`
	ExclusiveMinimum bool     `yaml:"exclusiveMinimum"`
	ExclusiveMaximum bool     `yaml:"exclusiveMaximum"`
	MultipleOf       *float64 `yaml:"multipleOf"`

	// array
	Items       *FieldSpec `yaml:"items"`
	MinItems    *int       `yaml:"minItems"`
	MaxItems    *int       `yaml:"maxItems"`
	UniqueItems bool       `yaml:"uniqueItems"`

	// object
	Fields []*FieldSpec `yaml:"fields"`
	Strict bool         `yaml:"strict"`

	// record
	Key   *FieldSpec `yaml:"key"`
	Value *FieldSpec `yaml:"value"`

	// union / intersection
	Of        []*FieldSpec `yaml:"of"`
	Exclusive bool         `yaml:"exclusive"`

	// ref
	Target   string `yaml:"target"`
	OnDelete string `yaml:"onDelete"`

	// wrappers
	Required *bool  `yaml:"required"`
	Nullable bool   `yaml:"nullable"`
	Default  any    `yaml:"default"`
	Producer string `yaml:"producer"`
}

// Load reads a manifest file and builds an unfinalized schema from it.
// Callers finalize it themselves so registration errors surface as the usual
// aggregate Issues.
func Load(path string) (*mongoh.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds an unfinalized schema from manifest bytes.
func Parse(data []byte) (*mongoh.Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	schema := mongoh.NewSchema()
	for _, cs := range f.Collections {
		if cs.Name == "" {
			return nil, fmt.Errorf("manifest: collection without a name")
		}
		node, err := buildCollection(cs)
		if err != nil {
			return nil, err
		}
		schema.Collection(cs.Name, node)
	}
	return schema, nil
}

func buildCollection(cs CollectionSpec) (*mongoh.Node, error) {
	node := mongoh.Collection()
	for _, fs := range cs.Fields {
		if fs.Name == "" {
			return nil, fmt.Errorf("manifest: %s: field without a name", cs.Name)
		}
		child, err := buildField(fs, cs.Name+"."+fs.Name)
		if err != nil {
			return nil, err
		}
		node = node.Prop(fs.Name, child)
	}
	if cs.Strict {
		node = node.Strict()
	}
	for _, is := range cs.Indexes {
		node = node.Index(buildIndex(is))
	}
	return node, nil
}

func buildIndex(is IndexSpec) mongo.IndexModel {
	keys := make(bson.D, 0, len(is.Keys))
	for _, k := range is.Keys {
		order := k.Order
		if order == 0 {
			order = 1
		}
		keys = append(keys, bson.E{Key: k.Field, Value: order})
	}
	opts := options.Index()
	if is.Unique {
		opts.SetUnique(true)
	}
	if is.Name != "" {
		opts.SetName(is.Name)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

// buildField translates one field spec into a node, then applies wrappers in
// fixed order: nullable, default, optional.
func buildField(fs *FieldSpec, path string) (*mongoh.Node, error) {
	node, err := buildBase(fs, path)
	if err != nil {
		return nil, err
	}
	if fs.Title != "" {
		node = node.Title(fs.Title)
	}
	if fs.Description != "" {
		node = node.Description(fs.Description)
	}
	if fs.Nullable {
		node = node.Nullable()
	}
	switch {
	case fs.Producer != "":
		fn, ok := producers[fs.Producer]
		if !ok {
			return nil, fmt.Errorf("manifest: %s: unknown producer %q", path, fs.Producer)
		}
		node = node.Default(fn)
	case fs.Default != nil:
		node = node.Default(fs.Default)
	}
	if fs.Required != nil && !*fs.Required {
		if fs.Producer != "" || fs.Default != nil {
			// An optional wrapper outside a default means absent input stays
			// absent and the default can never apply.
			return nil, fmt.Errorf("manifest: %s: default conflicts with required: false", path)
		}
		node = node.Optional()
	}
	return node, nil
}

// producers are the named lazy defaults the manifest grammar offers.
var producers = map[string]func() any{
	"now":      mongoh.Now,
	"uuid":     mongoh.NewUUID,
	"objectId": mongoh.NewObjectID,
}

func buildBase(fs *FieldSpec, path string) (*mongoh.Node, error) {
	switch fs.Type {
	case "null":
		return mongoh.Null(), nil
	case "bool":
		return mongoh.Bool(), nil
	case "date":
		return mongoh.Date(), nil
	case "binary":
		return mongoh.Binary(), nil
	case "objectId":
		return mongoh.ObjectID(), nil

	case "ref":
		if fs.Target == "" {
			return nil, fmt.Errorf("manifest: %s: ref without a target", path)
		}
		node := mongoh.Ref(fs.Target)
		if fs.OnDelete != "" {
			policy, err := parsePolicy(fs.OnDelete)
			if err != nil {
				return nil, fmt.Errorf("manifest: %s: %w", path, err)
			}
			node = node.OnDelete(policy)
		}
		return node, nil

	case "enum":
		if len(fs.Values) == 0 {
			return nil, fmt.Errorf("manifest: %s: enum without values", path)
		}
		return mongoh.Enum(fs.Values...), nil

	case "string":
		node := mongoh.String()
		if fs.MinLength != nil {
			node = node.MinLen(*fs.MinLength)
		}
		if fs.MaxLength != nil {
			node = node.MaxLen(*fs.MaxLength)
		}
		if fs.Pattern != "" {
			node = node.Pattern(fs.Pattern)
		}
		return node, nil

	case "number", "double", "int", "long", "decimal":
		node := mongoh.Number()
		switch fs.Type {
		case "int":
			node = node.Int()
		case "long":
			node = node.Long()
		case "decimal":
			node = node.Decimal()
		}
		if fs.Minimum != nil {
			node = node.Min(*fs.Minimum)
		}
		if fs.Maximum != nil {
			node = node.Max(*fs.Maximum)
		}
		if fs.ExclusiveMinimum {
			node = node.ExclusiveMin()
		}
		if fs.ExclusiveMaximum {
			node = node.ExclusiveMax()
		}
		if fs.MultipleOf != nil {
			node = node.MultipleOf(*fs.MultipleOf)
		}
		return node, nil

	case "array":
		if fs.Items == nil {
			return nil, fmt.Errorf("manifest: %s: array without items", path)
		}
		item, err := buildField(fs.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		node := mongoh.Array(item)
		if fs.MinItems != nil {
			node = node.MinItems(*fs.MinItems)
		}
		if fs.MaxItems != nil {
			node = node.MaxItems(*fs.MaxItems)
		}
		if fs.UniqueItems {
			node = node.UniqueItems()
		}
		return node, nil

	case "object":
		node := mongoh.Object()
		for _, child := range fs.Fields {
			if child.Name == "" {
				return nil, fmt.Errorf("manifest: %s: field without a name", path)
			}
			built, err := buildField(child, path+"."+child.Name)
			if err != nil {
				return nil, err
			}
			node = node.Prop(child.Name, built)
		}
		if fs.Strict {
			node = node.Strict()
		}
		return node, nil

	case "record":
		if fs.Value == nil {
			return nil, fmt.Errorf("manifest: %s: record without a value", path)
		}
		key := mongoh.String()
		if fs.Key != nil {
			built, err := buildField(fs.Key, path+".<key>")
			if err != nil {
				return nil, err
			}
			key = built
		}
		value, err := buildField(fs.Value, path+".<value>")
		if err != nil {
			return nil, err
		}
		return mongoh.Record(key, value), nil

	case "union", "intersection":
		if len(fs.Of) < 2 {
			return nil, fmt.Errorf("manifest: %s: %s needs at least two members", path, fs.Type)
		}
		members := make([]*mongoh.Node, len(fs.Of))
		for i, m := range fs.Of {
			built, err := buildField(m, fmt.Sprintf("%s.of[%d]", path, i))
			if err != nil {
				return nil, err
			}
			members[i] = built
		}
		if fs.Type == "intersection" {
			return mongoh.Intersection(members...), nil
		}
		node := mongoh.Union(members...)
		if fs.Exclusive {
			node = node.Exclusive()
		}
		return node, nil

	default:
		return nil, fmt.Errorf("manifest: %s: unknown type %q", path, fs.Type)
	}
}

func parsePolicy(s string) (mongoh.DeletePolicy, error) {
	switch mongoh.DeletePolicy(s) {
	case mongoh.DeleteBypass, mongoh.DeleteReject, mongoh.DeleteCascade,
		mongoh.DeleteNullify, mongoh.DeleteUnset:
		return mongoh.DeletePolicy(s), nil
	}
	return "", fmt.Errorf("unknown delete policy %q", s)
}
