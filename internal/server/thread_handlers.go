package server

import (
	"campus/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content      string     `json:"content" validate:"max=10000"`
	Media        []string   `json:"media" validate:"max=20,dive,max=2048"`
	UserID       FlexibleID `json:"user_id"`
	CreatedBy    FlexibleID `json:"createdby"`
	AuthorHandle string     `json:"author_handle" validate:"max=64"`
	ClubID       FlexibleID `json:"club_id"`
}

type createCommentRequest struct {
	PostID          FlexibleID `json:"postId" validate:"required"`
	ParentCommentID FlexibleID `json:"parentCommentId"`
	Content         string     `json:"content" validate:"max=10000"`
	Media           []string   `json:"media" validate:"max=20,dive,max=2048"`
	UserID          FlexibleID `json:"user_id"`
	CreatedBy       FlexibleID `json:"createdby"`
	AuthorHandle    string     `json:"author_handle" validate:"max=64"`
}

type updatePostRequest struct {
	Content string     `json:"content" validate:"max=10000"`
	UserID  FlexibleID `json:"user_id"`
}

type deletePostRequest struct {
	UserID FlexibleID `json:"user_id"`
}

// CreatePost creates a top-level post.
// @Summary Create post
// @Description Create a top-level post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body createPostRequest true "Post to create"
// @Success 201 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := s.bind(c, &req, false); err != nil {
		return nil
	}

	post, err := s.threads.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:     requester(c, req.UserID, req.CreatedBy),
		AuthorHandle: req.AuthorHandle,
		Content:      req.Content,
		Media:        req.Media,
		ClubID:       uint(req.ClubID),
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "Post created successfully", post)
}

// GetPost handles GET /api/posts/:postId
// @Summary Get post
// @Description Fetch a post, comment or reply by ID
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	post, err := s.threads.GetPost(c.UserContext(), postID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Post retrieved successfully", post)
}

// UpdatePost handles PUT /api/posts/:postId
// @Summary Update post
// @Description Edit the content of a post owned by the requester
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body updatePostRequest true "New content"
// @Success 200 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	return s.updateThreadItem(c, "postId", "Post updated successfully")
}

// DeletePost handles DELETE /api/posts/:postId
// @Summary Delete post
// @Description Delete a post owned by the requester
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param userId query int false "Requester ID when no body is sent"
// @Param request body deletePostRequest false "Requester"
// @Success 200 {object} object{message=string,data=object{id=int}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	return s.deleteThreadItem(c, "postId", "Post deleted successfully")
}

// CreateComment creates a comment on a post, or a reply when parentCommentId is set.
// @Summary Create comment
// @Description Comment on a post, or reply to a comment when parentCommentId is set
// @Tags comments
// @Accept json
// @Produce json
// @Param request body createCommentRequest true "Comment to create"
// @Success 201 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comment [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := s.bind(c, &req, false); err != nil {
		return nil
	}

	in := service.CreateCommentInput{
		PostID:       uint(req.PostID),
		AuthorID:     requester(c, req.UserID, req.CreatedBy),
		AuthorHandle: req.AuthorHandle,
		Content:      req.Content,
		Media:        req.Media,
	}
	if req.ParentCommentID != 0 {
		parent := uint(req.ParentCommentID)
		in.ParentCommentID = &parent
	}

	comment, err := s.threads.CreateComment(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "Comment created successfully", comment)
}

// GetComments returns a page of top-level comments, with nested replies when includeReplies=true.
// @Summary List comments
// @Description Page through top-level comments of a post, oldest first
// @Tags comments
// @Produce json
// @Param postId path int true "Root post ID"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param includeReplies query bool false "Nest every reply under its comment"
// @Success 200 {object} object{message=string,data=service.CommentsPage}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /comment/{postId} [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	page, err := s.threads.GetComments(c.UserContext(), service.GetCommentsInput{
		PostID:         postID,
		Page:           c.QueryInt("page", 1),
		Limit:          c.QueryInt("limit", 20),
		IncludeReplies: c.QueryBool("includeReplies", false),
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Comments retrieved successfully", page)
}

// UpdateComment handles PUT /api/comment/:commentId
// @Summary Update comment
// @Description Edit the content of a comment owned by the requester
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param request body updatePostRequest true "New content"
// @Success 200 {object} object{message=string,data=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comment/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	return s.updateThreadItem(c, "commentId", "Comment updated successfully")
}

// DeleteComment handles DELETE /api/comment/:commentId
// @Summary Delete comment
// @Description Delete a comment owned by the requester
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param userId query int false "Requester ID when no body is sent"
// @Param request body deletePostRequest false "Requester"
// @Success 200 {object} object{message=string,data=object{id=int}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comment/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	return s.deleteThreadItem(c, "commentId", "Comment deleted successfully")
}

// posts and comments share one table, so edits and deletes are the same operation
func (s *Server) updateThreadItem(c *fiber.Ctx, param, message string) error {
	id, err := s.parseID(c, param)
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := s.bind(c, &req, false); err != nil {
		return nil
	}

	post, err := s.threads.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:      id,
		RequesterID: requester(c, req.UserID),
		Content:     req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, message, post)
}

func (s *Server) deleteThreadItem(c *fiber.Ctx, param, message string) error {
	id, err := s.parseID(c, param)
	if err != nil {
		return nil
	}
	var req deletePostRequest
	if err := s.bind(c, &req, true); err != nil {
		return nil
	}

	post, err := s.threads.DeletePost(c.UserContext(), service.DeletePostInput{
		PostID:      id,
		RequesterID: requester(c, req.UserID, queryID(c, "userId")),
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, message, fiber.Map{"id": post.ID})
}
