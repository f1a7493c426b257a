package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IrishAnn-code/HomeLibrary/internal/auth"
	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/slug"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// Users handles accounts: registration, login, profile updates and the
// full teardown on account deletion.
type Users struct {
	users       *store.Store[models.User]
	books       *store.Store[models.Book]
	libraries   *store.Store[models.Library]
	memberships *store.Store[models.Membership]
	comments    *store.Store[models.Comment]
	statuses    *store.Store[models.ReadingStatus]
	tokens      *auth.TokenManager
}

// NewUsers wires the user service.
func NewUsers(
	users *store.Store[models.User],
	books *store.Store[models.Book],
	libraries *store.Store[models.Library],
	memberships *store.Store[models.Membership],
	comments *store.Store[models.Comment],
	statuses *store.Store[models.ReadingStatus],
	tokens *auth.TokenManager,
) *Users {
	return &Users{
		users:       users,
		books:       books,
		libraries:   libraries,
		memberships: memberships,
		comments:    comments,
		statuses:    statuses,
		tokens:      tokens,
	}
}

// UserUpdate carries the fields a user may change about themselves.
// Nil means "leave as is".
type UserUpdate struct {
	Firstname *string
	Lastname  *string
	Password  *string
}

// Register creates an account. Username and (when given) email must be free.
func (s *Users) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	taken, err := s.users.Count(ctx, store.QueryParams{
		Where: "username = ? OR (email != '' AND email = ?)",
		Args:  []interface{}{username, email},
	})
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if taken > 0 {
		return nil, ErrAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Slug:         slug.MakeUnique(username),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and issues an access token.
func (s *Users) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ByID fetches a user by primary key.
func (s *Users) ByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.ByID(ctx, id)
}

// ByUsername fetches a user by username.
func (s *Users) ByUsername(ctx context.Context, username string) (*models.User, error) {
	found, err := s.users.Query(ctx, store.QueryParams{
		Where: "username = ?",
		Args:  []interface{}{username},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

// All lists every user.
func (s *Users) All(ctx context.Context) ([]*models.User, error) {
	return s.users.Query(ctx, store.QueryParams{Order: "created_at DESC"})
}

// Books lists the books the user shelved.
func (s *Users) Books(ctx context.Context, userID int64) ([]*models.Book, error) {
	if _, err := s.users.ByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.books.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
		Order: "created_at DESC",
	})
}

// Update changes the user's profile after re-verifying the current password.
func (s *Users) Update(ctx context.Context, userID int64, currentPassword string, upd UserUpdate) (*models.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return nil, ErrInvalidCredentials
	}

	if upd.Firstname != nil {
		user.Firstname = *upd.Firstname
	}
	if upd.Lastname != nil {
		user.Lastname = *upd.Lastname
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Delete removes the account together with everything it owns: shelved
// books with their comments and statuses, owned libraries with their
// contents, and the user's own memberships, comments and statuses.
// Deleting row by row through the stores keeps the cache in step with
// the database; the schema-level cascades are only a backstop.
func (s *Users) Delete(ctx context.Context, userID int64) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	books, err := s.books.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return fmt.Errorf("list shelved books: %w", err)
	}
	for _, book := range books {
		if err := s.deleteBook(ctx, book); err != nil {
			return err
		}
	}

	libraries, err := s.libraries.Query(ctx, store.QueryParams{
		Where: "owner_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return fmt.Errorf("list owned libraries: %w", err)
	}
	for _, lib := range libraries {
		if err := s.deleteLibrary(ctx, lib); err != nil {
			return err
		}
	}

	comments, err := s.comments.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	for _, comment := range comments {
		if err := s.comments.Delete(ctx, comment); err != nil {
			return err
		}
	}

	statuses, err := s.statuses.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return fmt.Errorf("list statuses: %w", err)
	}
	for _, status := range statuses {
		if err := s.statuses.Delete(ctx, status); err != nil {
			return err
		}
	}

	links, err := s.memberships.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return fmt.Errorf("list memberships: %w", err)
	}
	for _, link := range links {
		if err := s.memberships.Delete(ctx, link); err != nil {
			return err
		}
	}

	return s.users.Delete(ctx, user)
}

// deleteBook drops a book with its comments and reading statuses.
func (s *Users) deleteBook(ctx context.Context, book *models.Book) error {
	comments, err := s.comments.Query(ctx, store.QueryParams{
		Where: "book_id = ?",
		Args:  []interface{}{book.ID},
	})
	if err != nil {
		return fmt.Errorf("list book comments: %w", err)
	}
	for _, comment := range comments {
		if err := s.comments.Delete(ctx, comment); err != nil {
			return err
		}
	}

	statuses, err := s.statuses.Query(ctx, store.QueryParams{
		Where: "book_id = ?",
		Args:  []interface{}{book.ID},
	})
	if err != nil {
		return fmt.Errorf("list book statuses: %w", err)
	}
	for _, status := range statuses {
		if err := s.statuses.Delete(ctx, status); err != nil {
			return err
		}
	}

	return s.books.Delete(ctx, book)
}

// deleteLibrary drops a library with its books and membership links.
func (s *Users) deleteLibrary(ctx context.Context, lib *models.Library) error {
	books, err := s.books.Query(ctx, store.QueryParams{
		Where: "library_id = ?",
		Args:  []interface{}{lib.ID},
	})
	if err != nil {
		return fmt.Errorf("list library books: %w", err)
	}
	for _, book := range books {
		if err := s.deleteBook(ctx, book); err != nil {
			return err
		}
	}

	links, err := s.memberships.Query(ctx, store.QueryParams{
		Where: "library_id = ?",
		Args:  []interface{}{lib.ID},
	})
	if err != nil {
		return fmt.Errorf("list library members: %w", err)
	}
	for _, link := range links {
		if err := s.memberships.Delete(ctx, link); err != nil {
			return err
		}
	}

	return s.libraries.Delete(ctx, lib)
}
