package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
)

func TestBooks_Create(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)

	book, err := e.books.Create(ctx, services.BookCreate{
		Author:     "Leo Tolstoy",
		Title:      "War and Peace",
		Genre:      "novel",
		LibAddress: "institut.13",
		Room:       "saloon",
		Shelf:      "3rd shelf",
	}, owner.ID, lib.ID)
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, lib.ID, book.LibraryID)
	assert.Equal(t, owner.ID, book.UserID)
	assert.Contains(t, book.Slug, "leo-tolstoy-war-and-peace-")
}

func TestBooks_Create_NotMember(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	outsider := registerUser(t, e, "outsider")
	lib := createLibrary(t, e, "shelf", owner.ID)

	_, err := e.books.Create(ctx, services.BookCreate{Title: "Nope", Author: "X"}, outsider.ID, lib.ID)
	assert.ErrorIs(t, err, services.ErrNotMember)
}

func TestBooks_Create_SlugsNeverCollide(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)

	a, err := e.books.Create(ctx, services.BookCreate{Title: "Same", Author: "Same"}, owner.ID, lib.ID)
	require.NoError(t, err)
	b, err := e.books.Create(ctx, services.BookCreate{Title: "Same", Author: "Same"}, owner.ID, lib.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.Slug, b.Slug)
}

func TestBooks_List_Pagination(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	for i := 0; i < 5; i++ {
		shelveBook(t, e, fmt.Sprintf("Book %d", i), owner.ID, lib.ID)
	}

	page, err := e.books.List(ctx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	rest, err := e.books.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	all, err := e.books.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "zero limit falls back to the default page size")
}

func TestBooks_Update_ShelverOnly(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	member := registerUser(t, e, "member")
	lib := createLibrary(t, e, "shelf", owner.ID)
	_, err := e.libraries.Join(ctx, "shelf", "", member.ID)
	require.NoError(t, err)
	book := shelveBook(t, e, "Original", owner.ID, lib.ID)

	title := "Stolen"
	_, err = e.books.Update(ctx, member.ID, book.ID, services.BookUpdate{Title: &title})
	assert.ErrorIs(t, err, services.ErrNotFound, "books of others read as missing")

	newTitle, newShelf := "Revised", "top shelf"
	updated, err := e.books.Update(ctx, owner.ID, book.ID, services.BookUpdate{
		Title: &newTitle,
		Shelf: &newShelf,
	})
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Title)
	assert.Equal(t, "top shelf", updated.Shelf)
}

func TestBooks_Delete_Cascades(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Doomed", owner.ID, lib.ID)

	_, err := e.comments.Create(ctx, book.ID, owner.ID, "great read")
	require.NoError(t, err)
	_, err = e.statuses.Set(ctx, owner.ID, book.ID, models.StatusRead)
	require.NoError(t, err)

	require.NoError(t, e.books.Delete(ctx, owner.ID, book.ID))

	_, err = e.books.ByID(ctx, book.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	comments, err := e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, comments)

	status, err := e.statuses.Get(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotRead, status, "status rows are gone with the book")
}

func TestBooks_Delete_ShelverOnly(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	member := registerUser(t, e, "member")
	lib := createLibrary(t, e, "shelf", owner.ID)
	_, err := e.libraries.Join(ctx, "shelf", "", member.ID)
	require.NoError(t, err)
	book := shelveBook(t, e, "Safe", owner.ID, lib.ID)

	assert.ErrorIs(t, e.books.Delete(ctx, member.ID, book.ID), services.ErrForbidden)
}

func TestBooks_Search(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)

	_, err := e.books.Create(ctx, services.BookCreate{Title: "War and Peace", Author: "Tolstoy"}, owner.ID, lib.ID)
	require.NoError(t, err)
	_, err = e.books.Create(ctx, services.BookCreate{Title: "Crime and Punishment", Author: "Dostoevsky"}, owner.ID, lib.ID)
	require.NoError(t, err)

	byTitle, err := e.books.Search(ctx, "WAR")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "War and Peace", byTitle[0].Title)

	byAuthor, err := e.books.Search(ctx, "dosto")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Crime and Punishment", byAuthor[0].Title)

	empty, err := e.books.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
