package model

import (
	"time"
)

// TokenTransaction 解锁流水表
// 记录某个用户为某个内容付过费，是防止重复扣费的幂等依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— (user_id, post_id) / (user_id, media_id) 唯一
// 2. 记录交易前后余额 —— 便于对账
type TokenTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"`
	UserID        int64     `gorm:"not null;uniqueIndex:uk_unlock_post;uniqueIndex:uk_unlock_media" json:"user_id"`
	PostID        *int64    `gorm:"uniqueIndex:uk_unlock_post" json:"post_id,omitempty"`
	MediaID       *int64    `gorm:"uniqueIndex:uk_unlock_media" json:"media_id,omitempty"`
	TokensSpent   int64     `gorm:"not null" json:"tokens_spent"`
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}
