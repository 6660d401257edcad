package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, tx *gorm.DB, notification *model.Notification) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true).Error
}

// GetSettings 查通知偏好，没有记录时返回全开的默认值
func (r *NotificationRepository) GetSettings(ctx context.Context, userID int64) (*model.NotificationSetting, error) {
	var setting model.NotificationSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.NotificationSetting{
				UserID:        userID,
				Likes:         true,
				Comments:      true,
				Messages:      true,
				Subscriptions: true,
			}, nil
		}
		return nil, err
	}
	return &setting, nil
}

// SaveSettings 写通知偏好，按 user_id 幂等覆盖
func (r *NotificationRepository) SaveSettings(ctx context.Context, setting *model.NotificationSetting) error {
	var existing model.NotificationSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", setting.UserID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(setting).Error
		}
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.NotificationSetting{}).
		Where("user_id = ?", setting.UserID).
		Updates(map[string]interface{}{
			"likes":         setting.Likes,
			"comments":      setting.Comments,
			"messages":      setting.Messages,
			"subscriptions": setting.Subscriptions,
		}).Error
}
