package repository

import (
	"context"
	"errors"

	"github.com/zfogg/blogicum/internal/models"
	"gorm.io/gorm"
)

// CommentRepository handles all database operations for comments
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetPostComment(ctx context.Context, postID, commentID uint) (*models.Comment, error)
	ListPostComments(ctx context.Context, postID uint) ([]models.Comment, error)
	ListAllComments(ctx context.Context, postID *uint) ([]models.Comment, error)
	UpdateCommentText(ctx context.Context, commentID uint, text string) error
	DeleteComment(ctx context.Context, commentID uint) error
	CountPostComments(ctx context.Context, postID uint) (int64, error)
}

// commentRepository implements CommentRepository interface
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateComment creates a new comment
func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil || comment.PostID == 0 || comment.AuthorID == 0 {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Omit("Post", "Author").Create(comment).Error
}

// GetPostComment gets a comment that belongs to the given post
func (r *commentRepository) GetPostComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		Take(&comment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListPostComments lists a post's comments, oldest first
func (r *commentRepository) ListPostComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error

	return comments, err
}

// ListAllComments lists comments across posts, newest first
func (r *commentRepository) ListAllComments(ctx context.Context, postID *uint) ([]models.Comment, error) {
	query := r.db.WithContext(ctx).Preload("Author")
	if postID != nil {
		query = query.Where("post_id = ?", *postID)
	}

	var comments []models.Comment
	err := query.Order("created_at DESC").Order("id DESC").Find(&comments).Error
	return comments, err
}

// UpdateCommentText replaces a comment's text
func (r *commentRepository) UpdateCommentText(ctx context.Context, commentID uint, text string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", commentID).
		Update("text", text)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment deletes a comment
func (r *commentRepository) DeleteComment(ctx context.Context, commentID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// CountPostComments counts a post's comments
func (r *commentRepository) CountPostComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
