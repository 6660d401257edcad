package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAlreadyLiked      = errors.New("已经点过赞")
	ErrAlreadySubscribed = errors.New("已经订阅过该作者")
	ErrLikeNotFound      = errors.New("点赞记录不存在")
	ErrSubNotFound       = errors.New("订阅记录不存在")
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// ---------------------------------------------------------------------------
// 评论
// ---------------------------------------------------------------------------

func (r *InteractionRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *InteractionRepository) ListCommentsByPost(ctx context.Context, postID int64, page, pageSize int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	return comments, err
}

func (r *InteractionRepository) ListCommentsByMedia(ctx context.Context, mediaID int64, page, pageSize int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	return comments, err
}

func (r *InteractionRepository) HasCommentedPost(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *InteractionRepository) HasCommentedMedia(ctx context.Context, userID, mediaID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Count(&count).Error
	return count > 0, err
}

// ---------------------------------------------------------------------------
// 点赞
// ---------------------------------------------------------------------------

func (r *InteractionRepository) CreateLike(ctx context.Context, like *model.Like) error {
	err := r.db.WithContext(ctx).Create(like).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyLiked
	}
	return err
}

func (r *InteractionRepository) DeleteLikePost(ctx context.Context, userID, postID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

func (r *InteractionRepository) DeleteLikeMedia(ctx context.Context, userID, mediaID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Delete(&model.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

func (r *InteractionRepository) HasLikedPost(ctx context.Context, userID, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *InteractionRepository) HasLikedMedia(ctx context.Context, userID, mediaID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Count(&count).Error
	return count > 0, err
}

func (r *InteractionRepository) CountLikesByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// ---------------------------------------------------------------------------
// 订阅
// ---------------------------------------------------------------------------

func (r *InteractionRepository) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadySubscribed
	}
	return err
}

func (r *InteractionRepository) DeleteSubscription(ctx context.Context, subscriberID, creatorID int64) error {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND creator_id = ?", subscriberID, creatorID).
		Delete(&model.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubNotFound
	}
	return nil
}

func (r *InteractionRepository) IsSubscribed(ctx context.Context, subscriberID, creatorID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("subscriber_id = ? AND creator_id = ?", subscriberID, creatorID).
		Count(&count).Error
	return count > 0, err
}

func (r *InteractionRepository) ListSubscriptions(ctx context.Context, subscriberID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ?", subscriberID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// ListSubscriberIDs 查作者的全部订阅者 ID
func (r *InteractionRepository) ListSubscriberIDs(ctx context.Context, creatorID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("creator_id = ?", creatorID).
		Pluck("subscriber_id", &ids).Error
	return ids, err
}

func (r *InteractionRepository) CountSubscribers(ctx context.Context, creatorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("creator_id = ?", creatorID).
		Count(&count).Error
	return count, err
}
