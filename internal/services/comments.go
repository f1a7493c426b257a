package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

const (
	defaultCommentPage = 50
	maxCommentPage     = 50
)

// Comments handles notes users leave on books.
type Comments struct {
	comments *store.Store[models.Comment]
	books    *store.Store[models.Book]
}

// NewComments wires the comment service.
func NewComments(comments *store.Store[models.Comment], books *store.Store[models.Book]) *Comments {
	return &Comments{comments: comments, books: books}
}

// Create adds a comment to a book.
func (s *Comments) Create(ctx context.Context, bookID, userID int64, message string) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.books.ByID(ctx, bookID); err != nil {
		return nil, err
	}
	comment := &models.Comment{Message: message, UserID: userID, BookID: bookID}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// ByBook lists a book's comments, newest first, paginated.
func (s *Comments) ByBook(ctx context.Context, bookID int64, skip, limit int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = defaultCommentPage
	}
	if limit > maxCommentPage {
		limit = maxCommentPage
	}
	if skip < 0 {
		skip = 0
	}
	return s.comments.Query(ctx, store.QueryParams{
		Where: "book_id = ?",
		Args:  []interface{}{bookID},
		Order: "created_at DESC",
		Start: skip,
		Limit: limit,
	})
}

// Edit changes a comment's message. Only its author may edit.
func (s *Comments) Edit(ctx context.Context, commentID, userID int64, message string) (*models.Comment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrInvalidInput
	}
	comment, err := s.comments.ByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}
	comment.Message = message
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment. Only its author may delete.
func (s *Comments) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.comments.ByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, comment)
}
