package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// Statuses tracks per-user reading progress. A book with no stored row
// reads as not_read.
type Statuses struct {
	statuses *store.Store[models.ReadingStatus]
	books    *store.Store[models.Book]
}

// NewStatuses wires the reading status service.
func NewStatuses(statuses *store.Store[models.ReadingStatus], books *store.Store[models.Book]) *Statuses {
	return &Statuses{statuses: statuses, books: books}
}

// Get returns the user's status for a book, defaulting to not_read.
func (s *Statuses) Get(ctx context.Context, userID, bookID int64) (models.ReadStatus, error) {
	row, err := s.find(ctx, userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return models.StatusNotRead, nil
	}
	if err != nil {
		return "", err
	}
	return row.Status, nil
}

// Set upserts the user's status for a book.
func (s *Statuses) Set(ctx context.Context, userID, bookID int64, status models.ReadStatus) (*models.ReadingStatus, error) {
	if !status.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := s.books.ByID(ctx, bookID); err != nil {
		return nil, err
	}
	row, err := s.find(ctx, userID, bookID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		row = &models.ReadingStatus{UserID: userID, BookID: bookID, Status: status}
	case err != nil:
		return nil, err
	default:
		row.Status = status
	}
	if err := s.statuses.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("save reading status: %w", err)
	}
	return row, nil
}

func (s *Statuses) find(ctx context.Context, userID, bookID int64) (*models.ReadingStatus, error) {
	rows, err := s.statuses.Query(ctx, store.QueryParams{
		Where: "user_id = ? AND book_id = ?",
		Args:  []interface{}{userID, bookID},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rows[0], nil
}
