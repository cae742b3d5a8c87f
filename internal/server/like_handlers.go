package server

import (
	"github.com/gofiber/fiber/v2"
)

type toggleLikeRequest struct {
	UserID FlexibleID `json:"userId"`
}

// ToggleLike likes a post, or removes the like when one exists.
// @Summary Toggle like
// @Description Like a post, or remove the existing like
// @Tags likes
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body toggleLikeRequest false "Liking user"
// @Success 200 {object} object{message=string,data=service.LikeState}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /like/{postId}/toggle [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req toggleLikeRequest
	if err := s.bind(c, &req, true); err != nil {
		return nil
	}

	state, err := s.likes.ToggleLike(c.UserContext(), postID, requester(c, req.UserID))
	if err != nil {
		return fail(c, err)
	}
	message := "Post unliked"
	if state.Liked {
		message = "Post liked"
	}
	return success(c, fiber.StatusOK, message, state)
}

// GetLikeCount handles GET /api/like/:postId/count
// @Summary Like count
// @Description Number of likes on a post
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string,data=object{postId=int,likeCount=int}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /like/{postId}/count [get]
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	count, err := s.likes.GetLikeCount(c.UserContext(), postID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Like count retrieved successfully", fiber.Map{
		"postId":    postID,
		"likeCount": count,
	})
}

// CheckLikeStatus handles GET /api/like/:postId/status
// @Summary Like status
// @Description Whether a user liked a post
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Param userId query int false "User ID"
// @Success 200 {object} object{message=string,data=object{postId=int,liked=bool}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /like/{postId}/status [get]
func (s *Server) CheckLikeStatus(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	liked, err := s.likes.CheckLikeStatus(c.UserContext(), postID, requester(c, queryID(c, "userId")))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Like status retrieved successfully", fiber.Map{
		"postId": postID,
		"liked":  liked,
	})
}

// GetPostLikes lists the users who liked a post, most recent first.
// @Summary Post likes
// @Description Users who liked a post, most recent first
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} object{message=string,data=service.LikersPage}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /like/{postId}/likes [get]
func (s *Server) GetPostLikes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	page, err := s.likes.GetPostLikes(c.UserContext(), postID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Post likes retrieved successfully", page)
}

// GetUserLikedPosts handles GET /api/like/user/:userId
// @Summary Liked posts
// @Description Posts liked by a user, most recent like first
// @Tags likes
// @Produce json
// @Param userId path int true "User ID"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} object{message=string,data=service.LikedPostsPage}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /like/user/{userId} [get]
func (s *Server) GetUserLikedPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.likes.GetUserLikedPosts(c.UserContext(), userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "Liked posts retrieved successfully", page)
}
