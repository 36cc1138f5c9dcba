package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/visibility"
)

type fixture struct {
	app    *app
	out    *bytes.Buffer
	author models.User
	other  models.User
	post   models.Post
}

func newFixture(t *testing.T) *fixture {
	db, err := database.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))

	out := &bytes.Buffer{}
	a := &app{out: out}
	a.use(db, &visibility.Policy{Clock: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }})

	f := &fixture{app: a, out: out}
	ctx := context.Background()
	f.author = models.User{Username: "author", Email: "author@example.com", PasswordHash: "x"}
	f.other = models.User{Username: "other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, a.users.CreateUser(ctx, &f.author))
	require.NoError(t, a.users.CreateUser(ctx, &f.other))

	category := models.Category{Title: "Travel", Slug: "travel", IsPublished: true}
	require.NoError(t, a.categories.CreateCategory(ctx, &category))

	f.post = models.Post{
		Title:       "Hello",
		Text:        "World",
		PubDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		IsPublished: true,
		AuthorID:    f.author.ID,
		CategoryID:  &category.ID,
	}
	require.NoError(t, a.posts.CreatePost(ctx, &f.post))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	f.out.Reset()
	cmd := newRootCmd(f.app)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestCategoryCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "category", "create", "food", "Food", "--description", "Recipes"))
	assert.Contains(t, f.out.String(), "Created category food")

	require.NoError(t, f.run(t, "category", "unpublish", "food"))
	category, err := f.app.categories.GetCategoryBySlug(context.Background(), "food")
	require.NoError(t, err)
	assert.False(t, category.IsPublished)

	require.NoError(t, f.run(t, "category", "list"))
	assert.Contains(t, f.out.String(), "food")
	assert.Contains(t, f.out.String(), "travel")

	assert.Error(t, f.run(t, "category", "publish", "missing"))
}

func TestLocationCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "location", "create", "Moscow", "--unpublished"))
	require.NoError(t, f.run(t, "--output", "json", "location", "list"))

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Moscow", rows[0]["name"])
	assert.Equal(t, "no", rows[0]["published"])

	require.NoError(t, f.run(t, "location", "publish", rows[0]["id"]))
	assert.Error(t, f.run(t, "location", "publish", "abc"))
}

func TestPostModeration(t *testing.T) {
	f := newFixture(t)
	postID := id(f.post.ID)

	require.NoError(t, f.run(t, "post", "unpublish", postID))
	post, err := f.app.posts.GetPost(context.Background(), f.post.ID)
	require.NoError(t, err)
	assert.False(t, post.IsPublished)

	require.NoError(t, f.run(t, "post", "set-author", postID, "other"))
	post, err = f.app.posts.GetPost(context.Background(), f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, post.AuthorID)

	require.NoError(t, f.run(t, "post", "list", "--category", "travel"))
	assert.Contains(t, f.out.String(), "Hello")
	assert.Contains(t, f.out.String(), "other")

	assert.Error(t, f.run(t, "post", "set-author", postID, "nobody"))
	assert.Error(t, f.run(t, "post", "list", "--category", "missing"))
}

func TestCommentList(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.comments.CreateComment(context.Background(), &models.Comment{
		Text: "First!", PostID: f.post.ID, AuthorID: f.other.ID,
	}))

	require.NoError(t, f.run(t, "comment", "list", "--post", id(f.post.ID)))
	assert.Contains(t, f.out.String(), "First!")

	require.NoError(t, f.run(t, "comment", "list", "--post", "999"))
	assert.Contains(t, f.out.String(), "No results")
}

func TestUserPromote(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "user", "promote", "author"))
	user, err := f.app.users.GetUserByUsername(context.Background(), "author")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)

	require.NoError(t, f.run(t, "user", "promote", "author", "--revoke"))
	user, err = f.app.users.GetUserByUsername(context.Background(), "author")
	require.NoError(t, err)
	assert.False(t, user.IsStaff)

	assert.Error(t, f.run(t, "user", "promote", "nobody"))
}

func TestRejectsUnknownOutput(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.run(t, "--output", "yaml", "category", "list"))
}
