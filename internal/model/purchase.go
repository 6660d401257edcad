package model

import (
	"time"
)

const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusCompleted = "COMPLETED"
	PurchaseStatusExpired   = "EXPIRED"
)

var ValidPurchaseTransitions = map[string][]string{
	PurchaseStatusPending: {PurchaseStatusCompleted, PurchaseStatusExpired},
}

func CanTransitionPurchase(currentStatus, targetStatus string) bool {
	allowed, exists := ValidPurchaseTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// TokenPurchase 代币购买单表
//
// PaymentID 是支付服务商分配的发票号，结算以它为幂等键：
// PENDING -> COMPLETED 只允许发生一次，代币也只入账一次
type TokenPurchase struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseNo   string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"purchase_no"`
	UserID       int64      `gorm:"index;not null" json:"user_id"`
	AmountCents  int64      `gorm:"not null" json:"amount_cents"`  // 法币金额（美分）
	TokensAmount int64      `gorm:"not null" json:"tokens_amount"` // 代币数量（百分之一代币）
	PaymentID    string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_id"`
	Status       string     `gorm:"type:varchar(20);index;not null" json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenPurchase) TableName() string {
	return "token_purchases"
}
