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

func TestComments_CreateAndList(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Discussed", owner.ID, lib.ID)

	comment, err := e.comments.Create(ctx, book.ID, owner.ID, "loved it")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, book.ID, comment.BookID)
	assert.Equal(t, owner.ID, comment.UserID)

	list, err := e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "loved it", list[0].Message)
}

func TestComments_Create_UnknownBook(t *testing.T) {
	e := setupServices(t)
	user := registerUser(t, e, "someone")

	_, err := e.comments.Create(context.Background(), 999, user.ID, "into the void")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestComments_Create_EmptyMessage(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Quiet", owner.ID, lib.ID)

	_, err := e.comments.Create(ctx, book.ID, owner.ID, "   ")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestComments_ByBook_Pagination(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Popular", owner.ID, lib.ID)

	for i := 0; i < 5; i++ {
		_, err := e.comments.Create(ctx, book.ID, owner.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	page, err := e.comments.ByBook(ctx, book.ID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := e.comments.ByBook(ctx, book.ID, 4, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestComments_Edit_AuthorOnly(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, e, "author")
	other := registerUser(t, e, "other")
	lib := createLibrary(t, e, "shelf", author.ID)
	book := shelveBook(t, e, "Edited", author.ID, lib.ID)

	comment, err := e.comments.Create(ctx, book.ID, author.ID, "first draft")
	require.NoError(t, err)

	_, err = e.comments.Edit(ctx, comment.ID, other.ID, "vandalism")
	assert.ErrorIs(t, err, services.ErrForbidden)

	edited, err := e.comments.Edit(ctx, comment.ID, author.ID, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", edited.Message)
}

func TestComments_Delete_AuthorOnly(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	author := registerUser(t, e, "author")
	other := registerUser(t, e, "other")
	lib := createLibrary(t, e, "shelf", author.ID)
	book := shelveBook(t, e, "Cleaned", author.ID, lib.ID)

	comment, err := e.comments.Create(ctx, book.ID, author.ID, "temporary")
	require.NoError(t, err)

	assert.ErrorIs(t, e.comments.Delete(ctx, comment.ID, other.ID), services.ErrForbidden)
	require.NoError(t, e.comments.Delete(ctx, comment.ID, author.ID))

	list, err := e.comments.ByBook(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStatuses_DefaultNotRead(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Untouched", owner.ID, lib.ID)

	status, err := e.statuses.Get(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotRead, status)
}

func TestStatuses_SetAndUpsert(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Tracked", owner.ID, lib.ID)

	row, err := e.statuses.Set(ctx, owner.ID, book.ID, models.StatusReading)
	require.NoError(t, err)
	firstID := row.ID

	status, err := e.statuses.Get(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReading, status)

	// Setting again updates the same row.
	row, err = e.statuses.Set(ctx, owner.ID, book.ID, models.StatusRead)
	require.NoError(t, err)
	assert.Equal(t, firstID, row.ID)

	status, err = e.statuses.Get(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, status)
}

func TestStatuses_Set_InvalidValue(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	owner := registerUser(t, e, "owner")
	lib := createLibrary(t, e, "shelf", owner.ID)
	book := shelveBook(t, e, "Odd", owner.ID, lib.ID)

	_, err := e.statuses.Set(ctx, owner.ID, book.ID, models.ReadStatus("skimmed"))
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestStatuses_Set_UnknownBook(t *testing.T) {
	e := setupServices(t)
	user := registerUser(t, e, "reader")

	_, err := e.statuses.Set(context.Background(), user.ID, 404, models.StatusRead)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStatuses_PerUser(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	ann := registerUser(t, e, "ann")
	bob := registerUser(t, e, "bob")
	lib := createLibrary(t, e, "shelf", ann.ID)
	_, err := e.libraries.Join(ctx, "shelf", "", bob.ID)
	require.NoError(t, err)
	book := shelveBook(t, e, "Shared", ann.ID, lib.ID)

	_, err = e.statuses.Set(ctx, ann.ID, book.ID, models.StatusRead)
	require.NoError(t, err)

	bobStatus, err := e.statuses.Get(ctx, bob.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotRead, bobStatus, "statuses are per user")
}
