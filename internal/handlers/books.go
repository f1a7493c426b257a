package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IrishAnn-code/HomeLibrary/internal/dto"
	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
)

func (h *Handler) listBooks(c *gin.Context) {
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	books, err := h.books.List(c.Request.Context(), page.Skip, page.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    books,
		"count":   len(books),
	})
}

func (h *Handler) searchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	books, err := h.books.Search(c.Request.Context(), query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    books,
		"count":   len(books),
	})
}

// getBook returns a single book together with the caller's read status.
func (h *Handler) getBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	book, err := h.books.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	status, err := h.statuses.Get(c.Request.Context(), currentUserID(c), book.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dto.BookWithStatus{Book: book, Status: status}})
}

func (h *Handler) createBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.books.Create(c.Request.Context(), services.BookCreate{
		Author:      req.Author,
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Color:       req.Color,
		LibAddress:  req.LibAddress,
		Room:        req.Room,
		Shelf:       req.Shelf,
	}, currentUserID(c), req.LibraryID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": book})
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.books.Update(c.Request.Context(), currentUserID(c), id, services.BookUpdate{
		Author:     req.Author,
		Title:      req.Title,
		LibAddress: req.LibAddress,
		Room:       req.Room,
		Shelf:      req.Shelf,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": book})
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.books.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "book deleted"})
}

func (h *Handler) setStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.statuses.Set(c.Request.Context(), currentUserID(c), id, models.ReadStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": row})
}
