package repository

import (
	"context"
	"errors"
	"time"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrStreamNotFound = errors.New("直播不存在")
	ErrStreamLive     = errors.New("已有正在进行的直播")
)

type LiveStreamRepository struct {
	db *gorm.DB
}

func NewLiveStreamRepository(db *gorm.DB) *LiveStreamRepository {
	return &LiveStreamRepository{db: db}
}

func (r *LiveStreamRepository) Create(ctx context.Context, stream *model.LiveStream) error {
	// 同一主播同时只能开一场直播
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LiveStream{}).
		Where("user_id = ? AND status = ?", stream.UserID, model.StreamStatusLive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrStreamLive
	}
	return r.db.WithContext(ctx).Create(stream).Error
}

func (r *LiveStreamRepository) GetByID(ctx context.Context, id int64) (*model.LiveStream, error) {
	var stream model.LiveStream
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stream).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	return &stream, nil
}

// End 结束直播，条件更新保证只有 LIVE 状态才能结束
func (r *LiveStreamRepository) End(ctx context.Context, id, userID int64) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.LiveStream{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.StreamStatusLive).
		Updates(map[string]interface{}{
			"status":   model.StreamStatusEnded,
			"ended_at": &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

func (r *LiveStreamRepository) ListLive(ctx context.Context) ([]*model.LiveStream, error) {
	var streams []*model.LiveStream
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StreamStatusLive).
		Order("started_at DESC").
		Find(&streams).Error
	return streams, err
}
