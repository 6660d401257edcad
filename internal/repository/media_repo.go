package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var ErrMediaNotFound = errors.New("媒体不存在")

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(ctx context.Context, media *model.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *MediaRepository) GetByID(ctx context.Context, id int64) (*model.Media, error) {
	var media model.Media
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&media).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

func (r *MediaRepository) ListByUserID(ctx context.Context, userID int64, mediaType string, page, pageSize int) ([]*model.Media, int64, error) {
	var items []*model.Media
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Media{}).Where("user_id = ?", userID)
	if mediaType != "" {
		query = query.Where("type = ?", mediaType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *MediaRepository) DeleteOwn(ctx context.Context, id, userID int64) (*model.Media, error) {
	media, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if media.UserID != userID {
		return nil, ErrMediaNotFound
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Media{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrMediaNotFound
	}
	return media, nil
}
