package service

import (
	"context"

	"snapfeed/internal/models"
	"snapfeed/internal/repository"
)

const maxPhotosPerPost = 5

// PostService implements post mutations: create, ownership-gated update and
// delete, comment append and the idempotent like toggle.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// CreatePostInput carries the new post's author, text and photo blobs.
type CreatePostInput struct {
	AuthorID uint
	Content  string
	Photos   [][]byte
}

// UpdatePostInput is a partial update: nil Content leaves the text alone;
// photos are applied only when ReplacePhotos is set, and then they replace
// the existing sequence outright.
type UpdatePostInput struct {
	PostID        uint
	CallerID      uint
	Content       *string
	Photos        [][]byte
	ReplacePhotos bool
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Photos) > maxPhotosPerPost {
		return nil, models.NewValidationError("A post can have at most 5 photos")
	}

	post := &models.Post{
		UserID:  in.AuthorID,
		Content: in.Content,
		Photos:  make([]models.Photo, 0, len(in.Photos)),
	}
	for i, data := range in.Photos {
		post.Photos = append(post.Photos, models.Photo{Position: i, Data: data})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) error {
	if err := s.authorize(ctx, in.PostID, in.CallerID, "update"); err != nil {
		return err
	}

	if in.Content != nil {
		if *in.Content == "" {
			return models.NewValidationError("Content cannot be empty")
		}
		if err := s.postRepo.UpdateContent(ctx, in.PostID, *in.Content); err != nil {
			return err
		}
	}

	if in.ReplacePhotos {
		if len(in.Photos) > maxPhotosPerPost {
			return models.NewValidationError("A post can have at most 5 photos")
		}
		photos := make([]models.Photo, 0, len(in.Photos))
		for i, data := range in.Photos {
			photos = append(photos, models.Photo{Position: i, Data: data})
		}
		if err := s.postRepo.ReplacePhotos(ctx, in.PostID, photos); err != nil {
			return err
		}
	}

	return nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint) error {
	if err := s.authorize(ctx, postID, callerID, "delete"); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// AddComment appends an immutable comment to a post.
func (s *PostService) AddComment(ctx context.Context, postID, callerID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  callerID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleLike flips the caller's like on a post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, callerID uint) (bool, error) {
	// Existence first, so an unknown post is NotFound rather than a
	// silently created like.
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}
	return s.postRepo.ToggleLike(ctx, callerID, postID)
}

// authorize enforces the existence check before the ownership check.
func (s *PostService) authorize(ctx context.Context, postID, callerID uint, action string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return models.NewForbiddenError("You are not allowed to " + action + " this post")
	}
	return nil
}
