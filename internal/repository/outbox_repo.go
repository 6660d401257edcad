package repository

import (
	"context"
	"time"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Create 写本地消息表，必须和业务操作在同一个事务里
func (r *OutboxRepository) Create(ctx context.Context, tx *gorm.DB, message *model.OutboxMessage) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(message).Error
}

// GetPendingMessages 查待发送消息，供后台任务投递
func (r *OutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	var messages []*model.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *OutboxRepository) MarkAsSent(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  model.OutboxStatusSent,
			"sent_at": &now,
		}).Error
}

// MarkAsFailed 发送失败，重试次数 +1，超过上限后置为 FAILED 不再重试
func (r *OutboxRepository) MarkAsFailed(ctx context.Context, id int64, maxRetry int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var message model.OutboxMessage
		if err := tx.Where("id = ?", id).First(&message).Error; err != nil {
			return err
		}

		message.RetryCount++
		updates := map[string]interface{}{
			"retry_count": message.RetryCount,
		}
		if message.RetryCount >= maxRetry {
			updates["status"] = model.OutboxStatusFailed
		}

		return tx.Model(&model.OutboxMessage{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}
