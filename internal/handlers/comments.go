package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IrishAnn-code/HomeLibrary/internal/dto"
)

func (h *Handler) createComment(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), bookID, currentUserID(c), req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": comment})
}

func (h *Handler) listComments(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := h.comments.ByBook(c.Request.Context(), bookID, page.Skip, page.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comments,
		"count":   len(comments),
	})
}

func (h *Handler) editComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Edit(c.Request.Context(), id, currentUserID(c), req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": comment})
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "comment deleted"})
}
