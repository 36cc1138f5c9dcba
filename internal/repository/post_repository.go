package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/visibility"
	"gorm.io/gorm"
)

const (
	postColumns          = "posts.*"
	postColumnsWithCount = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"
)

// Scope narrows a posts query before visibility rules apply
type Scope func(*gorm.DB) *gorm.DB

// InCategory scopes posts to a category
func InCategory(categoryID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.category_id = ?", categoryID)
	}
}

// ByAuthor scopes posts to an author
func ByAuthor(authorID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// ListOptions controls a post listing
type ListOptions struct {
	// Scopes define the base collection (a category, an author)
	Scopes []Scope
	// ApplyFilters hides posts that are not live. Only an owner viewing
	// their own collection may turn it off.
	ApplyFilters bool
	// CountComments annotates each post with its comment count
	CountComments bool
}

// PostPage is one page of a post listing, newest first
type PostPage struct {
	Page
	Posts []models.Post
}

// PostRepository handles all database operations for posts
type PostRepository interface {
	ListPosts(ctx context.Context, opts ListOptions, req PageRequest) (*PostPage, error)
	ListAllPosts(ctx context.Context, categoryID *uint) ([]models.Post, error)
	GetPost(ctx context.Context, postID uint) (*models.Post, error)
	GetVisiblePost(ctx context.Context, postID, viewerID uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID uint) error
	SetPublished(ctx context.Context, postID uint, published bool) error
	SetAuthor(ctx context.Context, postID, authorID uint) error
}

// postRepository implements PostRepository interface
type postRepository struct {
	db     *gorm.DB
	policy *visibility.Policy
}

// NewPostRepository creates a new post repository evaluating visibility with policy
func NewPostRepository(db *gorm.DB, policy *visibility.Policy) PostRepository {
	return &postRepository{db: db, policy: policy}
}

// ListPosts returns one page of posts ordered by pub date, newest first.
// Posts sharing a pub date keep insertion order.
func (r *postRepository) ListPosts(ctx context.Context, opts ListOptions, req PageRequest) (*PostPage, error) {
	now := r.policy.Now()

	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Post{})
		for _, scope := range opts.Scopes {
			query = query.Scopes(scope)
		}
		if opts.ApplyFilters {
			query = query.Scopes(r.policy.Scope(now))
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	page, err := resolvePage(req, total)
	if err != nil {
		return nil, err
	}

	columns := postColumns
	if opts.CountComments {
		columns = postColumnsWithCount
	}

	var posts []models.Post
	err = base().
		Select(columns).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &PostPage{Page: page, Posts: posts}, nil
}

// ListAllPosts returns every post regardless of visibility, optionally in one category
func (r *postRepository) ListAllPosts(ctx context.Context, categoryID *uint) ([]models.Post, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumnsWithCount).
		Preload("Author").
		Preload("Category").
		Preload("Location")
	if categoryID != nil {
		query = query.Scopes(InCategory(*categoryID))
	}

	var posts []models.Post
	err := query.Order("posts.pub_date DESC").Order("posts.id ASC").Find(&posts).Error
	return posts, err
}

// GetPost gets a post by ID with its relations and comment count
func (r *postRepository) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(postColumnsWithCount).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Where("posts.id = ?", postID).
		Take(&post).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// GetVisiblePost gets a post the viewer may see. Authors always see their
// own posts; anyone else only sees live posts. A hidden post is reported
// exactly like a missing one. viewerID 0 is an anonymous visitor.
func (r *postRepository) GetVisiblePost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !r.policy.CanView(post, viewerID, r.policy.Now()) {
		return nil, ErrPostNotFound
	}

	return post, nil
}

// CreatePost creates a new post. IsScheduled is fixed here from the pub
// date and the policy clock.
func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.AuthorID == 0 {
		return ErrInvalidInput
	}

	post.PubDate = post.PubDate.UTC()
	post.IsScheduled = post.PubDate.After(r.policy.Now())

	return r.db.WithContext(ctx).Omit("Author", "Category", "Location").Create(post).Error
}

// UpdatePost saves the editable fields of a post
func (r *postRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.ID == 0 {
		return ErrInvalidInput
	}

	post.PubDate = post.PubDate.UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("title", "text", "pub_date", "is_published", "category_id", "location_id", "image_key", "image_url").
		Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost deletes a post and its comments in one transaction
func (r *postRepository) DeletePost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}

		result := tx.Delete(&models.Post{}, postID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}

		return nil
	})
}

// SetPublished toggles the published flag of a post
func (r *postRepository) SetPublished(ctx context.Context, postID uint, published bool) error {
	return r.updateColumn(ctx, postID, "is_published", published)
}

// SetAuthor reassigns a post to another user
func (r *postRepository) SetAuthor(ctx context.Context, postID, authorID uint) error {
	return r.updateColumn(ctx, postID, "author_id", authorID)
}

func (r *postRepository) updateColumn(ctx context.Context, postID uint, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}
