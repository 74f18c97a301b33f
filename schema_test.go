package mongoh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strblr/mongoh"
)

func blogSchema() *mongoh.Schema {
	users := mongoh.Collection().
		Prop("name", mongoh.String()).
		Prop("email", mongoh.String().Pattern("^.+@.+$"))
	posts := mongoh.Collection().
		Prop("title", mongoh.String()).
		Prop("author", mongoh.Ref("users").OnDelete(mongoh.DeleteCascade)).
		Prop("reviewers", mongoh.Ref("users").OnDelete(mongoh.DeleteNullify).Array())
	return mongoh.NewSchema().
		Collection("users", users).
		Collection("posts", posts)
}

func TestSchema_FinalizeAndValidators(t *testing.T) {
	s := blogSchema()
	require.NoError(t, s.Finalize())
	assert.True(t, s.Finalized())
	assert.Equal(t, []string{"users", "posts"}, s.Names())

	validators, err := s.Validators()
	require.NoError(t, err)
	require.Len(t, validators, 2)
	assert.Equal(t, "object", validators["users"].BSONType)
	assert.Contains(t, validators["posts"].Properties, "author")
}

func TestSchema_ValidatorsRequireFinalize(t *testing.T) {
	s := blogSchema()
	_, err := s.Validators()
	assert.ErrorIs(t, err, mongoh.ErrNotFinalized)
	_, err = s.Validator("users")
	assert.ErrorIs(t, err, mongoh.ErrNotFinalized)
}

func TestSchema_FinalizeAggregatesInvalidRefs(t *testing.T) {
	s := mongoh.NewSchema().Collection("posts", mongoh.Collection().
		Prop("author", mongoh.Ref("users")).
		Prop("meta", mongoh.Object().Prop("editor", mongoh.Ref("editors"))))

	err := s.Finalize()
	require.Error(t, err)
	assert.False(t, s.Finalized())

	iss, ok := mongoh.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2, "every invalid ref is reported, not just the first")
	paths := []string{iss[0].Path, iss[1].Path}
	assert.ElementsMatch(t, []string{"posts.author", "posts.meta.editor"}, paths)
	for _, it := range iss {
		assert.Equal(t, mongoh.CodeInvalidRef, it.Code)
	}
}

func TestSchema_CollectionRegistrationIssues(t *testing.T) {
	s := mongoh.NewSchema().
		Collection("users", mongoh.Collection()).
		Collection("users", mongoh.Collection()).
		Collection("bad", mongoh.String())

	err := s.Finalize()
	require.Error(t, err)
	iss, ok := mongoh.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, mongoh.CodeDuplicateCollection, iss[0].Code)
	assert.Equal(t, mongoh.CodeInvalidCollection, iss[1].Code)
}

func TestSchema_RefEdges(t *testing.T) {
	s := blogSchema()
	require.NoError(t, s.Finalize())

	edges := s.RefEdges()
	require.Len(t, edges, 2)

	assert.Equal(t, "posts", edges[0].Collection)
	assert.Equal(t, "author", edges[0].Path)
	assert.Equal(t, "users", edges[0].Target)
	assert.Equal(t, mongoh.DeleteCascade, edges[0].Policy)
	assert.True(t, edges[0].Addressable)
	assert.Empty(t, edges[0].ArrayPath)

	// array-wrapped refs keep a dot path that matches elements and carry the
	// array location for element-scoped updates
	assert.Equal(t, "reviewers", edges[1].Path)
	assert.Equal(t, mongoh.DeleteNullify, edges[1].Policy)
	assert.True(t, edges[1].Addressable)
	assert.Equal(t, "reviewers", edges[1].ArrayPath)
}

func TestSchema_RefEdges_ArrayPaths(t *testing.T) {
	coll := mongoh.Collection().
		Prop("owner", mongoh.Ref("users")).
		Prop("items", mongoh.Object().Prop("author", mongoh.Ref("users")).Array()).
		Prop("meta", mongoh.Object().Prop("links", mongoh.Ref("users").Array()))
	s := mongoh.NewSchema().
		Collection("users", mongoh.Collection()).
		Collection("things", coll)
	require.NoError(t, s.Finalize())

	byPath := map[string]mongoh.RefEdge{}
	for _, e := range s.RefEdges() {
		if e.Collection == "things" {
			byPath[e.Path] = e
		}
	}

	assert.Empty(t, byPath["owner"].ArrayPath)
	assert.Equal(t, "items", byPath["items.author"].ArrayPath)
	assert.Equal(t, "meta.links", byPath["meta.links"].ArrayPath)
}

func TestSchema_RefEdges_ThroughWrappersAndUnions(t *testing.T) {
	coll := mongoh.Collection().
		Prop("owner", mongoh.Ref("users").Optional()).
		Prop("link", mongoh.Ref("users").Or(mongoh.Null())).
		Prop("loose", mongoh.Record(mongoh.String(), mongoh.Ref("users")))
	s := mongoh.NewSchema().
		Collection("users", mongoh.Collection()).
		Collection("things", coll)
	require.NoError(t, s.Finalize())

	var addressable, recordBound int
	for _, e := range s.RefEdges() {
		if e.Addressable {
			addressable++
		} else {
			recordBound++
		}
	}
	assert.Equal(t, 2, addressable)
	assert.Equal(t, 1, recordBound, "refs under record nodes are target-checked but not addressable")
}

func TestSchema_NodeLookup(t *testing.T) {
	s := blogSchema()
	n, ok := s.Node("users")
	require.True(t, ok)
	assert.Equal(t, mongoh.KindCollection, n.Kind())
	_, ok = s.Node("missing")
	assert.False(t, ok)
}
