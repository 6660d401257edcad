package model

import (
	"time"
)

// Profile 用户资料表
// 记录用户的代币余额，是整个解锁体系的核心数据
//
// TokensBalance 以"百分之一代币"为最小单位（250 = 2.50 代币），
// 永远不允许为负，扣减必须走条件更新（tokens_balance >= ?）
type Profile struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Username      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	DisplayName   string    `gorm:"type:varchar(128)" json:"display_name"`
	Bio           string    `gorm:"type:varchar(512)" json:"bio"`
	AvatarURL     string    `gorm:"type:varchar(512)" json:"avatar_url"`
	TokensBalance int64     `gorm:"not null;default:0" json:"tokens_balance"`
	Version       int       `gorm:"not null;default:0" json:"version"` // 乐观锁版本号
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
