package repository

import (
	"context"
	"errors"
	"time"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound = errors.New("充值订单不存在")
	ErrPurchaseSettled  = errors.New("充值订单已处理")
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *model.TokenPurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *PurchaseRepository) GetByPurchaseNo(ctx context.Context, purchaseNo string) (*model.TokenPurchase, error) {
	var purchase model.TokenPurchase
	err := r.db.WithContext(ctx).Where("purchase_no = ?", purchaseNo).First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.TokenPurchase, error) {
	var purchase model.TokenPurchase
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// MarkCompleted 把 PENDING 订单置为 COMPLETED
//
// 【关键点】条件更新 + RowsAffected 判断：
// 只有从 PENDING 出发的那一次更新会生效，
// 轮询任务和 webhook 并发到账时也只会入账一次
func (r *PurchaseRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, purchaseID int64) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&model.TokenPurchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":       model.PurchaseStatusCompleted,
			"completed_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseSettled
	}
	return nil
}

// MarkExpired 把超时未支付的 PENDING 订单置为 EXPIRED
func (r *PurchaseRepository) MarkExpired(ctx context.Context, purchaseID int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.TokenPurchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Update("status", model.PurchaseStatusExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseSettled
	}
	return nil
}

// GetPendingList 查待结算订单，供轮询任务使用
func (r *PurchaseRepository) GetPendingList(ctx context.Context, limit int) ([]*model.TokenPurchase, error) {
	var purchases []*model.TokenPurchase
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PurchaseStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.TokenPurchase, error) {
	var purchases []*model.TokenPurchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&purchases).Error
	return purchases, err
}
