// Package mongoh provides:
//
// - A composable schema algebra for MongoDB documents (primitive factories plus
//   Array/Record/Or/And/Optional/Default combinators over immutable nodes)
// - Derivation of $jsonSchema validator documents via Node.BSONSchema
// - Default normalization of partial inputs via Node.Fill, applied right before writes
// - Database-level schemas (Schema) with finalize-time ref validation
//
// Design policy:
// - Keep the algebra pure and dependency-light in the root package; nodes are never
//   mutated after construction, so concurrent derivation needs no locking.
// - Place the store-facing registry under registry/, the YAML loader under manifest/,
//   the validator document type under bsonschema/, and the CLI under cmd/mongoh.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	users := mongoh.Collection().
//		Prop("email", mongoh.String().Pattern("^.+@.+$")).
//		Prop("role", mongoh.Enum("admin", "user").Default("user")).
//		Prop("createdAt", mongoh.Date().Default(mongoh.Now))
//
//	db := mongoh.NewSchema().Collection("users", users)
//	if err := db.Finalize(); err != nil { ... }
//
//	validators, _ := db.Validators() // name -> *bsonschema.Schema
//	doc := users.Fill(map[string]any{"email": "a@b.c"}) // role/createdAt filled
package mongoh
