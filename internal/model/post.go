package model

import (
	"time"
)

// 内容查看条件
const (
	ViewConditionNone         = "none"         // 无条件
	ViewConditionLike         = "like"         // 需要先点赞
	ViewConditionComment      = "comment"      // 需要先评论
	ViewConditionSubscription = "subscription" // 需要订阅作者
)

func IsValidViewCondition(c string) bool {
	switch c {
	case ViewConditionNone, ViewConditionLike, ViewConditionComment, ViewConditionSubscription:
		return true
	}
	return false
}

// Post 帖子表
// TokenCost > 0 时内容需要付费解锁，AccessPassword 非空时需要口令
type Post struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64     `gorm:"index;not null" json:"user_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	TokenCost      int64     `gorm:"not null;default:0" json:"token_cost"`
	ViewCondition  string    `gorm:"type:varchar(20);not null;default:none" json:"view_condition"`
	AccessPassword string    `gorm:"type:varchar(64)" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
