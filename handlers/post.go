package handlers

import (
	"net/http"

	"devconnector/services"

	"github.com/gin-gonic/gin"
)

type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// Post routes report a missing post or comment as 404.
const postNotFound = http.StatusNotFound

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

// List handles GET /api/posts.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get handles GET /api/posts/:id.
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Post removed"})
}

// Like handles PUT /api/posts/like/:id.
func (h *PostHandler) Like(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	likes, err := h.posts.Like(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// Unlike handles PUT /api/posts/unlike/:id.
func (h *PostHandler) Unlike(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	likes, err := h.posts.Unlike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, likes)
}

// AddComment handles POST /api/posts/comment/:id.
func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}

	comments, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// RemoveComment handles DELETE /api/posts/comment/:id/:comment_id.
func (h *PostHandler) RemoveComment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	comments, err := h.posts.RemoveComment(c.Request.Context(), c.Param("id"), c.Param("comment_id"), userID)
	if err != nil {
		respondError(c, err, postNotFound)
		return
	}
	c.JSON(http.StatusOK, comments)
}
