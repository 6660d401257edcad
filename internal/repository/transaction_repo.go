package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("消费记录不存在")
	ErrAlreadyUnlocked     = errors.New("已经解锁过该内容")
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create 写消费记录
// (user_id, post_id) / (user_id, media_id) 上有唯一索引，
// 并发重复解锁会撞唯一键，转成 ErrAlreadyUnlocked
func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, transaction *model.TokenTransaction) error {
	if tx == nil {
		tx = r.db
	}
	err := tx.WithContext(ctx).Create(transaction).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyUnlocked
	}
	return err
}

func (r *TransactionRepository) GetByUserAndPost(ctx context.Context, userID, postID int64) (*model.TokenTransaction, error) {
	var transaction model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) GetByUserAndMedia(ctx context.Context, userID, mediaID int64) (*model.TokenTransaction, error) {
	var transaction model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.TokenTransaction, error) {
	var transactions []*model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error
	return transactions, err
}
