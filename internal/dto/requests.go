// Package dto holds the request and response shapes of the HTTP API.
package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	CurrentPassword string  `json:"current_password" binding:"required"`
	Firstname       *string `json:"firstname"`
	Lastname        *string `json:"lastname"`
	Password        *string `json:"password"`
}

type CreateLibraryRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

type JoinLibraryRequest struct {
	Library  string `json:"library" binding:"required"` // numeric id or name
	Password string `json:"password"`
}

type RenameLibraryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateBookRequest struct {
	LibraryID   int64  `json:"library_id" binding:"required"`
	Author      string `json:"author" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Color       string `json:"color"`
	LibAddress  string `json:"lib_address"`
	Room        string `json:"room"`
	Shelf       string `json:"shelf"`
}

type UpdateBookRequest struct {
	Author     *string `json:"author"`
	Title      *string `json:"title"`
	LibAddress *string `json:"lib_address"`
	Room       *string `json:"room"`
	Shelf      *string `json:"shelf"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CommentRequest struct {
	Message string `json:"message" binding:"required"`
}

type PageQuery struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}
