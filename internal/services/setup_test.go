package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IrishAnn-code/HomeLibrary/internal/auth"
	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
	"github.com/IrishAnn-code/HomeLibrary/internal/store/cache"
	"github.com/IrishAnn-code/HomeLibrary/internal/store/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// env bundles the full service stack over a throwaway database.
type env struct {
	users     *services.Users
	libraries *services.Libraries
	books     *services.Books
	comments  *services.Comments
	statuses  *services.Statuses
	tokens    *auth.TokenManager
}

func setupServices(tb testing.TB) *env {
	tb.Helper()

	db, err := sqlite.New(filepath.Join(tb.TempDir(), "services_test.db"))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = db.Close() })
	require.NoError(tb, sqlite.Migrate(context.Background(), db))

	mem := cache.NewMemory()

	userStore, err := store.New[models.User](db, mem)
	require.NoError(tb, err)
	libraryStore, err := store.New[models.Library](db, mem)
	require.NoError(tb, err)
	membershipStore, err := store.New[models.Membership](db, mem)
	require.NoError(tb, err)
	bookStore, err := store.New[models.Book](db, mem)
	require.NoError(tb, err)
	commentStore, err := store.New[models.Comment](db, mem)
	require.NoError(tb, err)
	statusStore, err := store.New[models.ReadingStatus](db, mem)
	require.NoError(tb, err)

	tokens := auth.NewTokenManager(testSecret, time.Hour)
	libraries := services.NewLibraries(libraryStore, membershipStore, bookStore)

	return &env{
		users:     services.NewUsers(userStore, bookStore, libraryStore, membershipStore, commentStore, statusStore, tokens),
		libraries: libraries,
		books:     services.NewBooks(bookStore, commentStore, statusStore, libraries),
		comments:  services.NewComments(commentStore, bookStore),
		statuses:  services.NewStatuses(statusStore, bookStore),
		tokens:    tokens,
	}
}

// registerUser is a shorthand for tests that just need an account.
func registerUser(tb testing.TB, e *env, username string) *models.User {
	tb.Helper()
	user, err := e.users.Register(context.Background(), username, username+"@example.com", "password")
	require.NoError(tb, err)
	return user
}

// createLibrary makes a public library owned by the user.
func createLibrary(tb testing.TB, e *env, name string, ownerID int64) *models.Library {
	tb.Helper()
	lib, err := e.libraries.Create(context.Background(), name, "", ownerID)
	require.NoError(tb, err)
	return lib
}

// shelveBook adds a book for a user who is already a member of the library.
func shelveBook(tb testing.TB, e *env, title string, userID, libraryID int64) *models.Book {
	tb.Helper()
	book, err := e.books.Create(context.Background(), services.BookCreate{
		Author: "Some Author",
		Title:  title,
	}, userID, libraryID)
	require.NoError(tb, err)
	return book
}
