package service

import (
	"context"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/repository"
)

// FeedService produces the paginated, relation-joined read-only projection
// of the post store.
type FeedService struct {
	postRepo repository.PostRepository
}

// NewFeedService creates a new FeedService.
func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// ListPostsInput carries validated pagination parameters and the caller's
// identity (0 for none).
type ListPostsInput struct {
	Page          int
	Limit         int
	CurrentUserID uint
}

// ListPosts returns one feed page, newest first. A page beyond the data set
// yields an empty slice, signalling "no more pages". The first page is
// served through the cache when one is available; per-user like state is
// re-attached after a cache hit so cached entries stay user-neutral.
func (s *FeedService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.PostView, error) {
	if in.Page < 1 {
		return nil, models.NewValidationError("page must be >= 1")
	}
	if in.Limit < 1 {
		return nil, models.NewValidationError("limit must be >= 1")
	}
	offset := (in.Page - 1) * in.Limit

	var posts []*models.Post
	var err error

	if in.Page == 1 {
		key := cache.FeedFirstPageKey(in.Limit)
		err = cache.Aside(ctx, key, &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.List(ctx, in.Limit, offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, err
		}
		if in.CurrentUserID != 0 && len(posts) > 0 {
			if err := s.attachLikedState(ctx, posts, in.CurrentUserID); err != nil {
				return nil, err
			}
		}
	} else {
		posts, err = s.postRepo.List(ctx, in.Limit, offset, in.CurrentUserID)
		if err != nil {
			return nil, err
		}
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p))
	}
	return views, nil
}

func (s *FeedService) attachLikedState(ctx context.Context, posts []*models.Post, userID uint) error {
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, userID, postIDs)
	if err != nil {
		return err
	}
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for _, p := range posts {
		p.Liked = liked[p.ID]
	}
	return nil
}
