package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IrishAnn-code/HomeLibrary/internal/auth"
	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/slug"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
)

// Libraries handles collections and memberships.
type Libraries struct {
	libs        *store.Store[models.Library]
	memberships *store.Store[models.Membership]
	books       *store.Store[models.Book]
}

// NewLibraries wires the library service.
func NewLibraries(libs *store.Store[models.Library], memberships *store.Store[models.Membership], books *store.Store[models.Book]) *Libraries {
	return &Libraries{libs: libs, memberships: memberships, books: books}
}

// Create makes a new library owned by ownerID. A non-empty password makes it
// private. The owner membership is written in the same transaction.
func (s *Libraries) Create(ctx context.Context, name, password string, ownerID int64) (*models.Library, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	taken, err := s.libs.Count(ctx, store.QueryParams{
		Where: "name = ?",
		Args:  []interface{}{name},
	})
	if err != nil {
		return nil, fmt.Errorf("check existing library: %w", err)
	}
	if taken > 0 {
		return nil, ErrAlreadyExists
	}

	var hash string
	if password != "" {
		hash, err = auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.libs.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create library: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.Exec(ctx,
		`INSERT INTO libraries ("created_at", "updated_at", "name", "slug", "password_hash", "owner_id") VALUES (?, ?, ?, ?, ?, ?)`,
		now, now, name, slug.Make(name), hash, ownerID)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert library: %w", err)
	}
	libID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("library id: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO memberships ("created_at", "updated_at", "user_id", "library_id", "role") VALUES (?, ?, ?, ?, ?)`,
		now, now, ownerID, libID, string(models.RoleOwner)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create library: %w", err)
	}

	s.libs.InvalidateQueries(ctx)
	s.memberships.InvalidateQueries(ctx)
	return s.libs.ByID(ctx, libID)
}

// Join adds userID to a library addressed by numeric ID or by name. Private
// libraries verify the password. Joining twice is a no-op.
func (s *Libraries) Join(ctx context.Context, idOrName, password string, userID int64) (*models.Library, error) {
	lib, err := s.resolve(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if lib.IsPrivate() && !auth.CheckPassword(lib.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	member, err := s.IsMember(ctx, userID, lib.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return lib, nil
	}

	link := &models.Membership{UserID: userID, LibraryID: lib.ID, Role: models.RoleMember}
	if err := s.memberships.Save(ctx, link); err != nil {
		return nil, fmt.Errorf("save membership: %w", err)
	}
	return lib, nil
}

// resolve finds a library by decimal ID or, failing that, by exact name.
func (s *Libraries) resolve(ctx context.Context, idOrName string) (*models.Library, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		lib, err := s.libs.ByID(ctx, id)
		if err == nil {
			return lib, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	found, err := s.libs.Query(ctx, store.QueryParams{
		Where: "name = ?",
		Args:  []interface{}{idOrName},
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

// ByID fetches a library by primary key.
func (s *Libraries) ByID(ctx context.Context, id int64) (*models.Library, error) {
	return s.libs.ByID(ctx, id)
}

// BySlug fetches a library by slug.
func (s *Libraries) BySlug(ctx context.Context, librarySlug string) (*models.Library, error) {
	found, err := s.libs.Query(ctx, store.QueryParams{
		Where: "slug = ?",
		Args:  []interface{}{librarySlug},
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

// Mine lists the libraries the user belongs to.
func (s *Libraries) Mine(ctx context.Context, userID int64) ([]*models.Library, error) {
	links, err := s.memberships.Query(ctx, store.QueryParams{
		Where: "user_id = ?",
		Args:  []interface{}{userID},
	})
	if err != nil {
		return nil, err
	}
	libs := make([]*models.Library, 0, len(links))
	for _, link := range links {
		lib, err := s.libs.ByID(ctx, link.LibraryID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// IsMember reports whether the user has any membership in the library.
func (s *Libraries) IsMember(ctx context.Context, userID, libraryID int64) (bool, error) {
	n, err := s.memberships.Count(ctx, store.QueryParams{
		Where: "user_id = ? AND library_id = ?",
		Args:  []interface{}{userID, libraryID},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Discover lists libraries matching the name query that the user is not a
// member of, ordered by name. An empty query returns nothing.
func (s *Libraries) Discover(ctx context.Context, userID int64, query string) ([]*models.Library, error) {
	if strings.TrimSpace(query) == "" {
		return []*models.Library{}, nil
	}

	mine, err := s.Mine(ctx, userID)
	if err != nil {
		return nil, err
	}

	where := "LOWER(name) LIKE ?"
	args := []interface{}{"%" + strings.ToLower(query) + "%"}
	if len(mine) > 0 {
		placeholders := make([]string, len(mine))
		for i, lib := range mine {
			placeholders[i] = "?"
			args = append(args, lib.ID)
		}
		where += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ", "))
	}

	return s.libs.Query(ctx, store.QueryParams{
		Where: where,
		Args:  args,
		Order: "name",
	})
}

// Books lists a library's books for a member, optionally narrowed to one
// physical address.
func (s *Libraries) Books(ctx context.Context, libraryID, userID int64, address string) ([]*models.Book, error) {
	if _, err := s.libs.ByID(ctx, libraryID); err != nil {
		return nil, err
	}
	member, err := s.IsMember(ctx, userID, libraryID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	params := store.QueryParams{
		Where: "library_id = ?",
		Args:  []interface{}{libraryID},
		Order: "created_at DESC",
	}
	if address != "" {
		params.Where += " AND lib_address = ?"
		params.Args = append(params.Args, address)
	}
	return s.books.Query(ctx, params)
}

// Rename changes a library's name. Only the owner may do this.
func (s *Libraries) Rename(ctx context.Context, libraryID, userID int64, newName string) (*models.Library, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrInvalidInput
	}
	lib, err := s.libs.ByID(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	if lib.OwnerID != userID {
		return nil, ErrForbidden
	}
	lib.Name = newName
	if err := s.libs.Save(ctx, lib); err != nil {
		return nil, fmt.Errorf("save library: %w", err)
	}
	return lib, nil
}
