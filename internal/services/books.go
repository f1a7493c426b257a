package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/slug"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Books handles the book catalogue.
type Books struct {
	books     *store.Store[models.Book]
	comments  *store.Store[models.Comment]
	statuses  *store.Store[models.ReadingStatus]
	libraries *Libraries
}

// NewBooks wires the book service.
func NewBooks(books *store.Store[models.Book], comments *store.Store[models.Comment], statuses *store.Store[models.ReadingStatus], libraries *Libraries) *Books {
	return &Books{books: books, comments: comments, statuses: statuses, libraries: libraries}
}

// BookCreate carries the fields of a new book.
type BookCreate struct {
	Author      string
	Title       string
	Description string
	Genre       string
	Color       string
	LibAddress  string
	Room        string
	Shelf       string
}

// BookUpdate carries the fields the shelver may change. Nil means keep.
type BookUpdate struct {
	Author     *string
	Title      *string
	LibAddress *string
	Room       *string
	Shelf      *string
}

// List returns books newest first, paginated. limit is clamped to the
// maximum page size; zero means the default.
func (s *Books) List(ctx context.Context, skip, limit int) ([]*models.Book, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return s.books.Query(ctx, store.QueryParams{
		Order: "created_at DESC",
		Start: skip,
		Limit: limit,
	})
}

// ByID fetches a single book.
func (s *Books) ByID(ctx context.Context, id int64) (*models.Book, error) {
	return s.books.ByID(ctx, id)
}

// Create shelves a book in a library the caller is a member of. The slug is
// derived from author and title and uniquified.
func (s *Books) Create(ctx context.Context, data BookCreate, userID, libraryID int64) (*models.Book, error) {
	if strings.TrimSpace(data.Title) == "" {
		return nil, ErrInvalidInput
	}
	member, err := s.libraries.IsMember(ctx, userID, libraryID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	book := &models.Book{
		Author:      data.Author,
		Title:       data.Title,
		Description: data.Description,
		Genre:       data.Genre,
		Color:       data.Color,
		LibAddress:  data.LibAddress,
		Room:        data.Room,
		Shelf:       data.Shelf,
		Slug:        slug.MakeUnique(data.Author + "-" + data.Title),
		LibraryID:   libraryID,
		UserID:      userID,
	}
	if err := s.books.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}
	return book, nil
}

// Update edits a book. Only the user who shelved it may edit; anything else
// reads as not found, matching the lookup by (id, user_id).
func (s *Books) Update(ctx context.Context, userID, bookID int64, upd BookUpdate) (*models.Book, error) {
	book, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, ErrNotFound
	}

	if upd.Author != nil {
		book.Author = *upd.Author
	}
	if upd.Title != nil {
		book.Title = *upd.Title
	}
	if upd.LibAddress != nil {
		book.LibAddress = *upd.LibAddress
	}
	if upd.Room != nil {
		book.Room = *upd.Room
	}
	if upd.Shelf != nil {
		book.Shelf = *upd.Shelf
	}
	if err := s.books.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}
	return book, nil
}

// Delete removes a book along with its comments and reading statuses. Only
// the shelver may delete.
func (s *Books) Delete(ctx context.Context, userID, bookID int64) error {
	book, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book.UserID != userID {
		return ErrForbidden
	}

	comments, err := s.comments.Query(ctx, store.QueryParams{
		Where: "book_id = ?",
		Args:  []interface{}{bookID},
	})
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := s.comments.Delete(ctx, comment); err != nil {
			return fmt.Errorf("delete comment %d: %w", comment.ID, err)
		}
	}

	statuses, err := s.statuses.Query(ctx, store.QueryParams{
		Where: "book_id = ?",
		Args:  []interface{}{bookID},
	})
	if err != nil {
		return err
	}
	for _, status := range statuses {
		if err := s.statuses.Delete(ctx, status); err != nil {
			return fmt.Errorf("delete reading status %d: %w", status.ID, err)
		}
	}

	return s.books.Delete(ctx, book)
}

// Search matches the query case-insensitively against title and author.
func (s *Books) Search(ctx context.Context, query string) ([]*models.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Book{}, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"
	return s.books.Query(ctx, store.QueryParams{
		Where: "LOWER(title) LIKE ? OR LOWER(author) LIKE ?",
		Args:  []interface{}{pattern, pattern},
		Order: "created_at DESC",
	})
}
