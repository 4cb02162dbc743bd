package models

import (
	"time"
)

// PostView is the read-only, relation-joined projection of a Post returned by
// the feed. Photo bytes marshal as base64 at the JSON boundary; the stored
// entities keep raw blobs.
type PostView struct {
	ID         uint          `json:"id"`
	Content    string        `json:"content"`
	AuthorID   uint          `json:"author_id"`
	AuthorName string        `json:"author_name"`
	Photos     [][]byte      `json:"photos"`
	Comments   []CommentView `json:"comments"`
	LikesCount int           `json:"likes_count"`
	Liked      bool          `json:"liked"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CommentView is the projection of a Comment inside a PostView.
type CommentView struct {
	ID         uint      `json:"id"`
	Content    string    `json:"content"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPostView projects a loaded Post (author, photos, comments preloaded)
// into its feed representation.
func NewPostView(p *Post) PostView {
	view := PostView{
		ID:         p.ID,
		Content:    p.Content,
		AuthorID:   p.UserID,
		AuthorName: p.User.Name,
		Photos:     make([][]byte, 0, len(p.Photos)),
		Comments:   make([]CommentView, 0, len(p.Comments)),
		LikesCount: p.LikesCount,
		Liked:      p.Liked,
		CreatedAt:  p.CreatedAt,
	}
	for _, photo := range p.Photos {
		view.Photos = append(view.Photos, photo.Data)
	}
	for _, comment := range p.Comments {
		view.Comments = append(view.Comments, CommentView{
			ID:         comment.ID,
			Content:    comment.Content,
			AuthorID:   comment.UserID,
			AuthorName: comment.User.Name,
			CreatedAt:  comment.CreatedAt,
		})
	}
	return view
}
