package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
)

func TestUsers_Register(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	user, err := e.users.Register(ctx, "ann", "ann@example.com", "password")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ann", user.Username)
	assert.NotEqual(t, "password", user.PasswordHash)
	assert.Contains(t, user.Slug, "ann-")
}

func TestUsers_Register_DuplicateUsername(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	registerUser(t, e, "ann")
	_, err := e.users.Register(ctx, "ann", "other@example.com", "password")
	assert.ErrorIs(t, err, services.ErrAlreadyExists)
}

func TestUsers_Register_DuplicateEmail(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	_, err := e.users.Register(ctx, "first", "shared@example.com", "password")
	require.NoError(t, err)

	_, err = e.users.Register(ctx, "second", "shared@example.com", "password")
	assert.ErrorIs(t, err, services.ErrAlreadyExists)
}

func TestUsers_Register_EmptyEmailAllowedTwice(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	_, err := e.users.Register(ctx, "first", "", "password")
	require.NoError(t, err)
	_, err = e.users.Register(ctx, "second", "", "password")
	assert.NoError(t, err, "empty emails must not collide")
}

func TestUsers_Register_MissingFields(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	_, err := e.users.Register(ctx, "", "a@example.com", "password")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = e.users.Register(ctx, "ann", "a@example.com", "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUsers_Login(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	registered := registerUser(t, e, "ann")

	user, token, err := e.users.Login(ctx, "ann", "password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)

	// Token carries the user's identity.
	userID, err := e.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestUsers_Login_WrongPassword(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	registerUser(t, e, "ann")
	_, _, err := e.users.Login(ctx, "ann", "nope")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUsers_Login_UnknownUser(t *testing.T) {
	e := setupServices(t)
	_, _, err := e.users.Login(context.Background(), "ghost", "password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUsers_Update(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, e, "ann")

	first, last := "Ann", "Ivanova"
	updated, err := e.users.Update(ctx, user.ID, "password", services.UserUpdate{
		Firstname: &first,
		Lastname:  &last,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Firstname)
	assert.Equal(t, "Ivanova", updated.Lastname)
}

func TestUsers_Update_WrongCurrentPassword(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, e, "ann")
	first := "Ann"
	_, err := e.users.Update(ctx, user.ID, "wrong", services.UserUpdate{Firstname: &first})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUsers_Update_ChangesPassword(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, e, "ann")
	newPass := "newpassword"
	_, err := e.users.Update(ctx, user.ID, "password", services.UserUpdate{Password: &newPass})
	require.NoError(t, err)

	_, _, err = e.users.Login(ctx, "ann", "password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, _, err = e.users.Login(ctx, "ann", "newpassword")
	assert.NoError(t, err)
}

func TestUsers_Books(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	ann := registerUser(t, e, "ann")
	bob := registerUser(t, e, "bob")
	lib := createLibrary(t, e, "shared", ann.ID)
	_, err := e.libraries.Join(ctx, lib.Name, "", bob.ID)
	require.NoError(t, err)

	shelveBook(t, e, "Mine", ann.ID, lib.ID)
	shelveBook(t, e, "Theirs", bob.ID, lib.ID)

	books, err := e.users.Books(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Mine", books[0].Title)
}

func TestUsers_Delete(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, e, "ann")
	require.NoError(t, e.users.Delete(ctx, user.ID))

	_, err := e.users.ByID(ctx, user.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.ErrorIs(t, e.users.Delete(ctx, user.ID), services.ErrNotFound)
}

func TestUsers_Delete_RemovesOwnedData(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	ann := registerUser(t, e, "ann")
	bob := registerUser(t, e, "bob")
	lib := createLibrary(t, e, "shared", ann.ID)
	_, err := e.libraries.Join(ctx, lib.Name, "", bob.ID)
	require.NoError(t, err)

	book := shelveBook(t, e, "Orphaned", ann.ID, lib.ID)
	_, err = e.comments.Create(ctx, book.ID, bob.ID, "great read")
	require.NoError(t, err)
	_, err = e.statuses.Set(ctx, bob.ID, book.ID, models.StatusReading)
	require.NoError(t, err)

	// Warm the caches so stale entries would be visible after the delete.
	_, err = e.books.ByID(ctx, book.ID)
	require.NoError(t, err)
	comments, err := e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, e.users.Delete(ctx, ann.ID))

	_, err = e.books.ByID(ctx, book.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = e.libraries.ByID(ctx, lib.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	mine, err := e.libraries.Mine(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, mine, "bob's membership in the deleted library must be gone")
}

func TestUsers_Delete_RemovesAuthoredRows(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	ann := registerUser(t, e, "ann")
	bob := registerUser(t, e, "bob")
	lib := createLibrary(t, e, "shared", ann.ID)
	_, err := e.libraries.Join(ctx, lib.Name, "", bob.ID)
	require.NoError(t, err)

	book := shelveBook(t, e, "Kept", ann.ID, lib.ID)
	_, err = e.comments.Create(ctx, book.ID, bob.ID, "from bob")
	require.NoError(t, err)
	_, err = e.statuses.Set(ctx, bob.ID, book.ID, models.StatusRead)
	require.NoError(t, err)

	comments, err := e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, e.users.Delete(ctx, bob.ID))

	// The book survives, but bob's comment and status do not.
	_, err = e.books.ByID(ctx, book.ID)
	require.NoError(t, err)
	comments, err = e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)
	status, err := e.statuses.Get(ctx, bob.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotRead, status)
}
