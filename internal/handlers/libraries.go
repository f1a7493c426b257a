package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/IrishAnn-code/HomeLibrary/internal/dto"
)

func (h *Handler) createLibrary(c *gin.Context) {
	var req dto.CreateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	library, err := h.libraries.Create(c.Request.Context(), req.Name, req.Password, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": library})
}

func (h *Handler) joinLibrary(c *gin.Context) {
	var req dto.JoinLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	library, err := h.libraries.Join(c.Request.Context(), req.Library, req.Password, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": library})
}

func (h *Handler) myLibraries(c *gin.Context) {
	libraries, err := h.libraries.Mine(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    libraries,
		"count":   len(libraries),
	})
}

func (h *Handler) discoverLibraries(c *gin.Context) {
	libraries, err := h.libraries.Discover(c.Request.Context(), currentUserID(c), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    libraries,
		"count":   len(libraries),
	})
}

func (h *Handler) libraryBySlug(c *gin.Context) {
	library, err := h.libraries.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": library})
}

func (h *Handler) libraryBooks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	books, err := h.libraries.Books(c.Request.Context(), id, currentUserID(c), c.Query("address"))
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

func (h *Handler) renameLibrary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.RenameLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	library, err := h.libraries.Rename(c.Request.Context(), id, currentUserID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": library})
}
