package repository

import (
	"context"
	"regexp"
	"testing"

	"fanstream/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRepository_MarkCompleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `token_purchases`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkCompleted(context.Background(), nil, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_MarkCompleted_AlreadySettled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseRepository(db)

	// 已经不是 PENDING，条件更新不命中
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `token_purchases`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.MarkCompleted(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrPurchaseSettled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_GetByPaymentID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPurchaseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `token_purchases`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByPaymentID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCanTransitionPurchase(t *testing.T) {
	assert.True(t, model.CanTransitionPurchase(model.PurchaseStatusPending, model.PurchaseStatusCompleted))
	assert.True(t, model.CanTransitionPurchase(model.PurchaseStatusPending, model.PurchaseStatusExpired))
	assert.False(t, model.CanTransitionPurchase(model.PurchaseStatusCompleted, model.PurchaseStatusExpired))
	assert.False(t, model.CanTransitionPurchase(model.PurchaseStatusExpired, model.PurchaseStatusCompleted))
	assert.False(t, model.CanTransitionPurchase(model.PurchaseStatusCompleted, model.PurchaseStatusPending))
}
