// Package visibility decides which posts the public may see.
//
// A post is live when it is published, its pub date is not in the future
// and its category is published. The same rule exists twice: as a Go
// predicate for single posts and as gorm scopes for listing queries.
package visibility

import (
	"time"

	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

// categoryAlias is the alias under which Scope joins the categories table
const categoryAlias = "visible_categories"

// Clock returns the current time
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Policy holds the visibility rule and the clock it is evaluated against
type Policy struct {
	// IncludeUncategorized lets posts without a category be live.
	// By default such posts are hidden from the public.
	IncludeUncategorized bool
	Clock                Clock
}

// NewPolicy creates a policy on the system clock
func NewPolicy(includeUncategorized bool) *Policy {
	return &Policy{IncludeUncategorized: includeUncategorized, Clock: SystemClock}
}

// Now returns the policy's current time
func (p *Policy) Now() time.Time {
	if p.Clock == nil {
		return SystemClock()
	}
	return p.Clock()
}

// IsLive reports whether post is visible to the public at now.
// The post's Category must be loaded when CategoryID is set.
func (p *Policy) IsLive(post *models.Post, now time.Time) bool {
	if post == nil || !post.IsPublished || post.PubDate.After(now) {
		return false
	}
	if post.CategoryID == nil {
		return p.IncludeUncategorized
	}
	return post.Category != nil && post.Category.IsPublished
}

// CanView reports whether viewerID may see post at now. Authors always see
// their own posts. viewerID 0 is an anonymous visitor.
func (p *Policy) CanView(post *models.Post, viewerID uint, now time.Time) bool {
	if post == nil {
		return false
	}
	if post.IsAuthoredBy(viewerID) {
		return true
	}
	return p.IsLive(post, now)
}

// Scope restricts a posts query to live posts at now
func (p *Policy) Scope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("LEFT JOIN categories AS "+categoryAlias+" ON "+categoryAlias+".id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now)

		if p.IncludeUncategorized {
			return db.Where("(posts.category_id IS NULL OR "+categoryAlias+".is_published = ?)", true)
		}
		return db.Where(categoryAlias+".is_published = ?", true)
	}
}
