package dto

import "github.com/IrishAnn-code/HomeLibrary/internal/models"

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// BookWithStatus attaches the caller's read status to a single book.
type BookWithStatus struct {
	*models.Book
	Status models.ReadStatus `json:"status"`
}
