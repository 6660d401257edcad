package model

import (
	"time"
)

const (
	MediaTypePhoto = "photo"
	MediaTypeVideo = "video"
)

// Media 媒体表
// 文件本体在对象存储里，这里只存 key 和公开 URL
type Media struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64     `gorm:"index;not null" json:"user_id"`
	Type           string    `gorm:"type:varchar(10);not null" json:"type"`
	ObjectKey      string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"-"`
	URL            string    `gorm:"type:varchar(512);not null" json:"url"`
	Description    string    `gorm:"type:varchar(512)" json:"description"`
	TokenCost      int64     `gorm:"not null;default:0" json:"token_cost"`
	ViewCondition  string    `gorm:"type:varchar(20);not null;default:none" json:"view_condition"`
	AccessPassword string    `gorm:"type:varchar(64)" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Media) TableName() string {
	return "media"
}
