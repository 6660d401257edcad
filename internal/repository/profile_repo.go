package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("用户资料不存在")
	ErrBalanceNotEnough = errors.New("代币余额不足")
	ErrOptimisticLock   = errors.New("乐观锁冲突，请重试")
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, tx *gorm.DB, profile *model.Profile) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(profile).Error
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Search 按用户名或昵称模糊搜索
func (r *ProfileRepository) Search(ctx context.Context, keyword string, limit int) ([]*model.Profile, error) {
	var profiles []*model.Profile
	pattern := "%" + keyword + "%"
	err := r.db.WithContext(ctx).
		Where("username LIKE ? OR display_name LIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) UpdateFields(ctx context.Context, userID int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Deduct 条件扣减余额
//
// 【关键点】扣减条件里带上 tokens_balance >= amount，
// 并发扣减时数据库保证余额不会变成负数；
// version 作为乐观锁，区分"余额不足"和"并发冲突"两种失败
func (r *ProfileRepository) Deduct(ctx context.Context, tx *gorm.DB, userID int64, amount int64, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ? AND tokens_balance >= ? AND version = ?", userID, amount, version).
		Updates(map[string]interface{}{
			"tokens_balance": gorm.Expr("tokens_balance - ?", amount),
			"version":        gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		profile, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if profile.TokensBalance < amount {
			return ErrBalanceNotEnough
		}
		return ErrOptimisticLock
	}

	return nil
}

// Credit 入账
func (r *ProfileRepository) Credit(ctx context.Context, tx *gorm.DB, userID int64, amount int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"tokens_balance": gorm.Expr("tokens_balance + ?", amount),
			"version":        gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
