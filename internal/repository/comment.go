package repository

import (
	"context"
	"errors"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create appends a comment to its post. The post-existence check and the
// insert run in one transaction so a deleted post can never end up with an
// orphan comment.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.StartRepositorySpan(ctx, "CreateComment", "comments")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		observability.RecordSpanError(span, err)
		return storeError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListCommentsByPost", "comments")
	defer span.End()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return comments, nil
}
