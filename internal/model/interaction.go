package model

import (
	"time"
)

// Comment 评论表（帖子或媒体二选一）
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	PostID    *int64    `gorm:"index" json:"post_id,omitempty"`
	MediaID   *int64    `gorm:"index" json:"media_id,omitempty"`
	Content   string    `gorm:"type:varchar(1024);not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// Like 点赞表
// (user_id, post_id) / (user_id, media_id) 唯一，重复点赞直接报冲突
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_like_post;uniqueIndex:uk_like_media" json:"user_id"`
	PostID    *int64    `gorm:"uniqueIndex:uk_like_post" json:"post_id,omitempty"`
	MediaID   *int64    `gorm:"uniqueIndex:uk_like_media" json:"media_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// Subscription 订阅关系表
type Subscription struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriberID int64     `gorm:"not null;uniqueIndex:uk_sub_pair" json:"subscriber_id"`
	CreatorID    int64     `gorm:"not null;uniqueIndex:uk_sub_pair;index" json:"creator_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
