package service

import (
	"context"
	"testing"

	"fanstream/internal/realtime"
	"fanstream/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSpendService(db *gorm.DB) *SpendService {
	hub := realtime.NewHub()
	return NewSpendService(
		db,
		repository.NewPostRepository(db),
		repository.NewMediaRepository(db),
		repository.NewProfileRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewOutboxRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db), hub),
		redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}),
		hub,
		testBusinessConfig(),
		testKafkaConfig(),
	)
}

func postRows(ownerID, tokenCost int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "content", "token_cost", "view_condition", "access_password",
	}).AddRow(10, ownerID, "付费内容", tokenCost, "none", "")
}

func int64Ptr(v int64) *int64 { return &v }

func TestSpend_BadTarget(t *testing.T) {
	db, _ := newMockDB(t)
	svc := newSpendService(db)

	_, err := svc.Spend(context.Background(), 42, nil, nil)
	assert.ErrorIs(t, err, ErrSpendBadTarget)

	_, err = svc.Spend(context.Background(), 42, int64Ptr(1), int64Ptr(2))
	assert.ErrorIs(t, err, ErrSpendBadTarget)
}

func TestSpend_FreeContent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSpendService(db)

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRows(7, 0))

	_, err := svc.Spend(context.Background(), 42, int64Ptr(10), nil)
	assert.ErrorIs(t, err, ErrContentFree)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpend_OwnContent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSpendService(db)

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRows(42, 500))

	_, err := svc.Spend(context.Background(), 42, int64Ptr(10), nil)
	assert.ErrorIs(t, err, ErrSpendOwnContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpend_AlreadyUnlocked(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSpendService(db)

	mock.ExpectQuery("SELECT (.+) FROM `posts`").
		WillReturnRows(postRows(7, 500))

	// 已有解锁流水，直接幂等返回，不再扣费
	mock.ExpectQuery("SELECT (.+) FROM `token_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "transaction_no", "user_id", "post_id", "media_id",
			"tokens_spent", "balance_before", "balance_after",
		}).AddRow(1, "TTX175600000000000001", 42, 10, nil, 500, 1000, 500))

	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "username", "tokens_balance", "version",
		}).AddRow(1, 42, "alice", 500, 3))

	result, err := svc.Spend(context.Background(), 42, int64Ptr(10), nil)
	require.NoError(t, err)

	assert.True(t, result.AlreadyUnlocked)
	assert.Equal(t, "TTX175600000000000001", result.TransactionNo)
	assert.Equal(t, int64(500), result.TokensSpent)
	assert.Equal(t, int64(500), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func spendProfileRows(balance int64, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "username", "tokens_balance", "version",
	}).AddRow(1, 42, "alice", balance, version)
}

func TestExecuteSpend_RetriesOnVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSpendService(db)

	// 第一轮：条件更新不命中，回查发现余额够、版本号变了，判定为并发冲突
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(spendProfileRows(1000, 3))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `profiles`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(spendProfileRows(1000, 4))
	mock.ExpectRollback()

	// 第二轮：重读余额后用新版本号扣减成功
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(spendProfileRows(1000, 4))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `profiles`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `token_transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `outbox_message`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.executeSpend(context.Background(), 42, 7, 500, "TTX1", int64Ptr(10), nil)
	require.NoError(t, err)

	assert.Equal(t, "TTX1", result.TransactionNo)
	assert.Equal(t, int64(500), result.TokensSpent)
	assert.Equal(t, int64(500), result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSpend_ConflictExhaustsRetries(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSpendService(db)

	// 每一轮都撞上版本号冲突，重试用完后放弃
	for version := 3; version < 5; version++ {
		mock.ExpectQuery("SELECT (.+) FROM `profiles`").
			WillReturnRows(spendProfileRows(1000, version))
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `profiles`").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM `profiles`").
			WillReturnRows(spendProfileRows(1000, version+1))
		mock.ExpectRollback()
	}

	_, err := svc.executeSpend(context.Background(), 42, 7, 500, "TTX1", int64Ptr(10), nil)
	assert.ErrorIs(t, err, ErrSpendBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsufficientBalanceError(t *testing.T) {
	err := &InsufficientBalanceError{Required: 1000, Balance: 500}
	assert.Equal(t, "代币余额不足: 需要 10.00，当前 5.00", err.Error())
}
