package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"fanstream/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestOutboxMessageHasSentAtColumn(t *testing.T) {
	// MarkAsSent 更新 sent_at，模型里必须有对应字段，
	// 否则投递成功的消息永远停在 PENDING 被反复重发
	s, err := schema.Parse(&model.OutboxMessage{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	_, ok := s.FieldsByDBName["sent_at"]
	assert.True(t, ok)
}

func TestOutboxRepository_MarkAsSent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `outbox_message`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkAsSent(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkAsFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	// 未达重试上限：只加计数，不置 FAILED
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `outbox_message`").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "message_key", "topic", "payload", "status", "retry_count",
		}).AddRow(1, "TTX1", "fanstream.token_event", "{}", model.OutboxStatusPending, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `outbox_message`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkAsFailed(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
