// Package handlers wires the HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/IrishAnn-code/HomeLibrary/internal/auth"
	"github.com/IrishAnn-code/HomeLibrary/internal/config"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

const Version = "1.0.0"

// Handler bundles the services the API routes call into.
type Handler struct {
	cfg       *config.Config
	tokens    *auth.TokenManager
	users     *services.Users
	libraries *services.Libraries
	books     *services.Books
	comments  *services.Comments
	statuses  *services.Statuses
}

func New(cfg *config.Config, tokens *auth.TokenManager, users *services.Users, libraries *services.Libraries, books *services.Books, comments *services.Comments, statuses *services.Statuses) *Handler {
	return &Handler{
		cfg:       cfg,
		tokens:    tokens,
		users:     users,
		libraries: libraries,
		books:     books,
		comments:  comments,
		statuses:  statuses,
	}
}

// SetupRouter builds the gin engine with all routes registered.
func (h *Handler) SetupRouter() *gin.Engine {
	if !h.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(h.cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"name":    h.cfg.AppName,
			"version": Version,
		})
	})

	users := router.Group("/users")
	{
		users.POST("/register", h.register)
		users.POST("/login", h.login)
		users.GET("/me", h.requireAuth(), h.me)
		users.GET("/books/me", h.requireAuth(), h.myBooks)
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/update", h.requireAuth(), h.updateUser)
		users.DELETE("/:id", h.requireAuth(), h.deleteUser)
	}

	library := router.Group("/library", h.requireAuth())
	{
		library.POST("/create", h.createLibrary)
		library.POST("/join", h.joinLibrary)
		library.GET("", h.myLibraries)
		library.GET("/discover", h.discoverLibraries)
		library.GET("/slug/:slug", h.libraryBySlug)
		library.GET("/:id/books", h.libraryBooks)
		library.PUT("/:id/name", h.renameLibrary)
	}

	books := router.Group("/books", h.requireAuth())
	{
		books.GET("", h.listBooks)
		books.GET("/search", h.searchBooks)
		books.GET("/:id", h.getBook)
		books.POST("", h.createBook)
		books.PUT("/:id", h.updateBook)
		books.DELETE("/:id", h.deleteBook)
		books.PUT("/:id/status", h.setStatus)
		books.POST("/:id/comments", h.createComment)
		books.GET("/:id/comments", h.listComments)
	}

	comments := router.Group("/comments", h.requireAuth())
	{
		comments.PUT("/:id", h.editComment)
		comments.DELETE("/:id", h.deleteComment)
	}

	return router
}

// cors echoes the request's Origin back when it is on the allow-list.
// The Allow-Origin header takes a single origin, and credentials are
// only allowed alongside a concrete one, never "*".
func (h *Handler) cors() gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(h.cfg.AllowedOrigins))
	for _, origin := range h.cfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		} else if len(allowed) == 0 {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

const userIDKey = "userID"

// requireAuth accepts the JWT from the Authorization header or the
// access_token cookie. The cookie value may carry a "Bearer " prefix.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if header := c.GetHeader("Authorization"); header != "" {
			raw = header
		} else if cookie, err := c.Cookie("access_token"); err == nil {
			raw = cookie
		}
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		userID, err := h.tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if _, err := h.users.ByID(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
