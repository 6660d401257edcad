package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mock
}

func profileRows(balance int64, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "username", "display_name", "bio", "avatar_url",
		"tokens_balance", "version",
	}).AddRow(1, 42, "alice", "Alice", "", "", balance, version)
}

func TestProfileRepository_Deduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	// 条件命中，扣减成功
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Deduct(context.Background(), nil, 42, 500, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Deduct_BalanceNotEnough(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	// 条件不命中，回查发现余额确实不够
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(profileRows(100, 3))

	err := repo.Deduct(context.Background(), nil, 42, 500, 3)
	assert.ErrorIs(t, err, ErrBalanceNotEnough)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Deduct_OptimisticLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	// 条件不命中，但余额够，说明是版本号并发冲突
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(profileRows(1000, 4))

	err := repo.Deduct(context.Background(), nil, 42, 500, 3)
	assert.ErrorIs(t, err, ErrOptimisticLock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Credit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Credit(context.Background(), nil, 42, 1000))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Credit_ProfileMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `profiles`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Credit(context.Background(), nil, 404, 1000)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM `profiles`").
		WillReturnRows(profileRows(0, 0))

	profiles, err := repo.Search(context.Background(), "ali", 20)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "alice", profiles[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
