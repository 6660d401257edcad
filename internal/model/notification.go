package model

import (
	"time"
)

// 通知类型
const (
	NotificationTypeLike         = "LIKE"
	NotificationTypeComment      = "COMMENT"
	NotificationTypeSubscription = "SUBSCRIPTION"
	NotificationTypeMessage      = "MESSAGE"
	NotificationTypeUnlock       = "UNLOCK"
)

// Notification 通知表
type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"` // 接收者
	ActorID   int64     `gorm:"not null" json:"actor_id"`      // 触发者
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	PostID    *int64    `json:"post_id,omitempty"`
	MediaID   *int64    `json:"media_id,omitempty"`
	Content   string    `gorm:"type:varchar(512)" json:"content"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationSetting 通知开关表，缺省全开
type NotificationSetting struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Likes         bool      `gorm:"not null;default:true" json:"likes"`
	Comments      bool      `gorm:"not null;default:true" json:"comments"`
	Messages      bool      `gorm:"not null;default:true" json:"messages"`
	Subscriptions bool      `gorm:"not null;default:true" json:"subscriptions"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NotificationSetting) TableName() string {
	return "notification_settings"
}

// Enabled 按通知类型查开关
func (s *NotificationSetting) Enabled(notificationType string) bool {
	switch notificationType {
	case NotificationTypeLike:
		return s.Likes
	case NotificationTypeComment:
		return s.Comments
	case NotificationTypeMessage:
		return s.Messages
	case NotificationTypeSubscription:
		return s.Subscriptions
	}
	return true
}
