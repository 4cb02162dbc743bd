package server

import (
	"snapfeed/internal/models"
	"snapfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type addCommentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

// GetPosts handles GET /api/posts?page=&limit=
// @Summary Get feed page
// @Description List one page of the feed, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} object{posts=[]models.PostView}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	views, err := s.feedService.ListPosts(c.Context(), service.ListPostsInput{
		Page:          page,
		Limit:         limit,
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"posts": views})
}

// CreatePost handles POST /api/posts (multipart: content + up to 5 photo parts)
// @Summary Create post
// @Description Create a post with text and up to five photo parts
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param content formData string true "Post text"
// @Param photo formData file false "Photo part, repeatable up to five times"
// @Success 201 {object} object{message=string,postId=integer}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	content := c.FormValue("content")

	var photos [][]byte
	if form, err := c.MultipartForm(); err == nil && form != nil {
		photos, err = readPhotoParts(form)
		if err != nil {
			return models.RespondWithError(c, err)
		}
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: currentUserID(c),
		Content:  content,
		Photos:   photos,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"postId":  post.ID,
	})
}

// UpdatePost handles PUT /api/posts/:id. The update is partial: absent
// content leaves the text alone, and photos are only replaced when at least
// one photo part is present.
// @Summary Update post
// @Description Partially update own post: text and/or full photo replacement
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param content formData string false "New post text"
// @Param photo formData file false "Replacement photo part, repeatable"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	in := service.UpdatePostInput{
		PostID:   postID,
		CallerID: currentUserID(c),
	}

	if content := c.FormValue("content"); content != "" {
		in.Content = &content
	}
	if form, ferr := c.MultipartForm(); ferr == nil && form != nil && len(form.File["photo"]) > 0 {
		photos, perr := readPhotoParts(form)
		if perr != nil {
			return models.RespondWithError(c, perr)
		}
		in.Photos = photos
		in.ReplacePhotos = true
	}

	if err := s.postService.UpdatePost(c.Context(), in); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post updated successfully"})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Delete own post together with its photos, comments and likes
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.DeletePost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// AddComment handles POST /api/posts/:id/comments
// @Summary Add comment
// @Description Append a comment to a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body addCommentRequest true "Comment request"
// @Success 201 {object} object{message=string,commentId=integer}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req addCommentRequest
	if err := s.parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.postService.AddComment(c.Context(), postID, currentUserID(c), req.Comment)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Comment added successfully",
		"commentId": comment.ID,
	})
}

// ToggleLike handles POST /api/posts/:id/likes
// @Summary Toggle like
// @Description Toggle the caller's like on a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{liked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/likes [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := paramID(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	liked, err := s.postService.ToggleLike(c.Context(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"liked": liked})
}
