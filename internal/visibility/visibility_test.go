package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }

func fixedClock() time.Time { return now }

func TestIsLive(t *testing.T) {
	published := &models.Category{ID: 1, IsPublished: true}
	hidden := &models.Category{ID: 2, IsPublished: false}

	testCases := []struct {
		name          string
		post          *models.Post
		strict        bool
		uncategorized bool
	}{
		{
			name:          "published past post in published category",
			post:          &models.Post{IsPublished: true, PubDate: now.Add(-time.Hour), CategoryID: uintPtr(1), Category: published},
			strict:        true,
			uncategorized: true,
		},
		{
			name:          "pub date exactly now",
			post:          &models.Post{IsPublished: true, PubDate: now, CategoryID: uintPtr(1), Category: published},
			strict:        true,
			uncategorized: true,
		},
		{
			name: "unpublished post",
			post: &models.Post{IsPublished: false, PubDate: now.Add(-time.Hour), CategoryID: uintPtr(1), Category: published},
		},
		{
			name: "future post",
			post: &models.Post{IsPublished: true, PubDate: now.Add(time.Minute), CategoryID: uintPtr(1), Category: published},
		},
		{
			name: "unpublished category",
			post: &models.Post{IsPublished: true, PubDate: now.Add(-time.Hour), CategoryID: uintPtr(2), Category: hidden},
		},
		{
			name:          "no category",
			post:          &models.Post{IsPublished: true, PubDate: now.Add(-time.Hour)},
			strict:        false,
			uncategorized: true,
		},
		{
			name: "nil post",
		},
	}

	strict := &Policy{Clock: fixedClock}
	lenient := &Policy{IncludeUncategorized: true, Clock: fixedClock}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.strict, strict.IsLive(tc.post, now))
			assert.Equal(t, tc.uncategorized, lenient.IsLive(tc.post, now))
		})
	}
}

func TestCanViewOwnDrafts(t *testing.T) {
	p := &Policy{Clock: fixedClock}
	draft := &models.Post{AuthorID: 5, IsPublished: false, PubDate: now.Add(24 * time.Hour)}

	assert.True(t, p.CanView(draft, 5, now))
	assert.False(t, p.CanView(draft, 6, now))
	assert.False(t, p.CanView(draft, 0, now))
	assert.False(t, p.CanView(nil, 5, now))
}

func TestScheduledPostGoesLiveWhenClockPasses(t *testing.T) {
	current := now
	p := &Policy{Clock: func() time.Time { return current }}
	post := &models.Post{
		IsPublished: true,
		PubDate:     now.Add(time.Hour),
		CategoryID:  uintPtr(1),
		Category:    &models.Category{ID: 1, IsPublished: true},
	}

	assert.False(t, p.IsLive(post, p.Now()))
	current = now.Add(2 * time.Hour)
	assert.True(t, p.IsLive(post, p.Now()))
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))
	return db
}

// The scope and the predicate must agree on every combination
func TestScopeAgreesWithPredicate(t *testing.T) {
	db := setupDB(t)

	author := models.User{Username: "author", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)

	shown := models.Category{Title: "Shown", Slug: "shown", IsPublished: true}
	hidden := models.Category{Title: "Hidden", Slug: "hidden", IsPublished: false}
	require.NoError(t, db.Create(&shown).Error)
	require.NoError(t, db.Create(&hidden).Error)

	var posts []models.Post
	for _, published := range []bool{true, false} {
		for _, offset := range []time.Duration{-time.Hour, 0, time.Hour} {
			for _, categoryID := range []*uint{&shown.ID, &hidden.ID, nil} {
				posts = append(posts, models.Post{
					Title:       "p",
					Text:        "t",
					IsPublished: published,
					PubDate:     now.Add(offset),
					AuthorID:    author.ID,
					CategoryID:  categoryID,
				})
			}
		}
	}
	require.NoError(t, db.Create(&posts).Error)

	for _, include := range []bool{false, true} {
		p := &Policy{IncludeUncategorized: include, Clock: fixedClock}

		var live []models.Post
		require.NoError(t, db.Model(&models.Post{}).
			Select("posts.*").
			Scopes(p.Scope(now)).
			Preload("Category").
			Order("posts.id").
			Find(&live).Error)

		liveIDs := make(map[uint]bool, len(live))
		for _, post := range live {
			liveIDs[post.ID] = true
		}

		var all []models.Post
		require.NoError(t, db.Preload("Category").Order("id").Find(&all).Error)
		require.Len(t, all, len(posts))

		for i := range all {
			assert.Equal(t, p.IsLive(&all[i], now), liveIDs[all[i].ID],
				"post %d (include uncategorized=%v)", all[i].ID, include)
		}
	}
}
