package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRepository_DeleteLikeMedia(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `likes`")).
		WithArgs(int64(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteLikeMedia(context.Background(), 42, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_DeleteLikeMedia_NotLiked(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `likes`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.DeleteLikeMedia(context.Background(), 42, 7)
	assert.ErrorIs(t, err, ErrLikeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_ListCommentsByMedia(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInteractionRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `comments` WHERE media_id = (.+)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "media_id", "content"}).
			AddRow(1, 42, 7, "不错").
			AddRow(2, 43, 7, "喜欢"))

	comments, err := repo.ListCommentsByMedia(context.Background(), 7, 1, 20)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "不错", comments[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}
