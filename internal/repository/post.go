package repository

import (
	"context"
	"errors"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error)
	UpdateContent(ctx context.Context, postID uint, content string) error
	ReplacePhotos(ctx context.Context, postID uint, photos []models.Photo) error
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := observability.StartRepositorySpan(ctx, "CreatePost", "posts")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		observability.RecordSpanError(span, err)
		return storeError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

// GetByID loads the bare post row, without relations. Used for existence and
// ownership checks before mutations.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetPostByID", "posts")
	defer span.End()

	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return &post, nil
}

// List returns one feed page with author, photos, comments (with their
// authors) and computed like state attached. Order is pinned to newest first
// with the id as a tiebreak so pagination is stable.
func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ListPosts", "posts")
	defer span.End()

	var posts []*models.Post
	err := r.applyLikeDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return posts, nil
}

// applyLikeDetails adds subqueries to fetch the like count and the caller's
// liked flag in the same query.
func (r *postRepository) applyLikeDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery)
}

func (r *postRepository) UpdateContent(ctx context.Context, postID uint, content string) error {
	ctx, span := observability.StartRepositorySpan(ctx, "UpdatePostContent", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		Update("content", content)
	if res.Error != nil {
		observability.RecordSpanError(span, res.Error)
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

// ReplacePhotos swaps the post's entire photo sequence in one transaction.
// Photos are replaced, never merged.
func (r *postRepository) ReplacePhotos(ctx context.Context, postID uint, photos []models.Photo) error {
	ctx, span := observability.StartRepositorySpan(ctx, "ReplacePhotos", "photos")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		for i := range photos {
			photos[i].ID = 0
			photos[i].PostID = postID
			photos[i].Position = i
		}
		if len(photos) == 0 {
			return nil
		}
		return tx.Create(&photos).Error
	})
	if err != nil {
		observability.RecordSpanError(span, err)
		return storeError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

// Delete removes the post together with its photos, comments and likes.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.StartRepositorySpan(ctx, "DeletePost", "posts")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		observability.RecordSpanError(span, err)
		return storeError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

// ToggleLike flips like membership for (userID, postID) and reports the new
// state. The insert relies on the composite unique key, so two concurrent
// toggles cannot double-add; a no-op insert means the like existed and is
// removed instead.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "ToggleLike", "likes")
	defer span.End()

	like := models.Like{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if res.Error != nil {
		observability.RecordSpanError(span, res.Error)
		return false, storeError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateFeed(ctx)
		return true, nil
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error; err != nil {
		observability.RecordSpanError(span, err)
		return false, storeError(err)
	}
	cache.InvalidateFeed(ctx)
	return false, nil
}

// GetLikedPostIDs returns the subset of postIDs the user has liked. Used to
// re-attach per-user like state to cached feed pages.
func (r *postRepository) GetLikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	ctx, span := observability.StartRepositorySpan(ctx, "GetLikedPostIDs", "likes")
	defer span.End()

	var likedPostIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	if err != nil {
		observability.RecordSpanError(span, err)
		return nil, storeError(err)
	}
	return likedPostIDs, nil
}
