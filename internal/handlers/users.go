package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/IrishAnn-code/HomeLibrary/internal/dto"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
)

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func (h *Handler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dto.RegisterResponse{ID: user.ID, Username: user.Username},
	})
}

func (h *Handler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", "Bearer "+token, int(h.tokens.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dto.TokenResponse{AccessToken: token, TokenType: "bearer"},
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.ByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *Handler) myBooks(c *gin.Context) {
	books, err := h.users.Books(c.Request.Context(), currentUserID(c))
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

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.All(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"count":   len(users),
	})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.users.ByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *Handler) updateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), currentUserID(c), req.CurrentPassword, services.UserUpdate{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
}
