package service

import (
	"context"
	"errors"

	"fanstream/internal/model"
	"fanstream/internal/repository"
)

var (
	ErrCommentBadTarget = errors.New("必须且只能指定一个评论目标")
	ErrLikeBadTarget    = errors.New("必须且只能指定一个点赞目标")
	ErrSubscribeSelf    = errors.New("不能订阅自己")
)

// SocialService 评论 / 点赞 / 订阅
type SocialService struct {
	interactionRepo *repository.InteractionRepository
	postRepo        *repository.PostRepository
	mediaRepo       *repository.MediaRepository
	profileRepo     *repository.ProfileRepository
	notification    *NotificationService
}

func NewSocialService(
	interactionRepo *repository.InteractionRepository,
	postRepo *repository.PostRepository,
	mediaRepo *repository.MediaRepository,
	profileRepo *repository.ProfileRepository,
	notification *NotificationService,
) *SocialService {
	return &SocialService{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		mediaRepo:       mediaRepo,
		profileRepo:     profileRepo,
		notification:    notification,
	}
}

// resolveOwner 查评论/点赞目标的作者，顺带校验目标存在
func (s *SocialService) resolveOwner(ctx context.Context, postID, mediaID *int64) (int64, error) {
	if postID != nil {
		post, err := s.postRepo.GetByID(ctx, *postID)
		if err != nil {
			return 0, err
		}
		return post.UserID, nil
	}
	media, err := s.mediaRepo.GetByID(ctx, *mediaID)
	if err != nil {
		return 0, err
	}
	return media.UserID, nil
}

// ---------------------------------------------------------------------------
// 评论
// ---------------------------------------------------------------------------

func (s *SocialService) Comment(ctx context.Context, userID int64, postID, mediaID *int64, content string) (*model.Comment, error) {
	if (postID == nil) == (mediaID == nil) {
		return nil, ErrCommentBadTarget
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	ownerID, err := s.resolveOwner(ctx, postID, mediaID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		UserID:  userID,
		PostID:  postID,
		MediaID: mediaID,
		Content: content,
	}
	if err := s.interactionRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.notification.NotifyAsync(ownerID, userID, model.NotificationTypeComment, postID, mediaID, content)
	return comment, nil
}

func (s *SocialService) ListComments(ctx context.Context, postID int64, page, pageSize int) ([]*model.Comment, error) {
	return s.interactionRepo.ListCommentsByPost(ctx, postID, page, pageSize)
}

func (s *SocialService) ListMediaComments(ctx context.Context, mediaID int64, page, pageSize int) ([]*model.Comment, error) {
	return s.interactionRepo.ListCommentsByMedia(ctx, mediaID, page, pageSize)
}

// ---------------------------------------------------------------------------
// 点赞
// ---------------------------------------------------------------------------

// Like 点赞，重复点赞幂等返回成功
func (s *SocialService) Like(ctx context.Context, userID int64, postID, mediaID *int64) error {
	if (postID == nil) == (mediaID == nil) {
		return ErrLikeBadTarget
	}

	ownerID, err := s.resolveOwner(ctx, postID, mediaID)
	if err != nil {
		return err
	}

	like := &model.Like{
		UserID:  userID,
		PostID:  postID,
		MediaID: mediaID,
	}
	if err := s.interactionRepo.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repository.ErrAlreadyLiked) {
			return nil
		}
		return err
	}

	s.notification.NotifyAsync(ownerID, userID, model.NotificationTypeLike, postID, mediaID, "")
	return nil
}

func (s *SocialService) Unlike(ctx context.Context, userID, postID int64) error {
	err := s.interactionRepo.DeleteLikePost(ctx, userID, postID)
	if errors.Is(err, repository.ErrLikeNotFound) {
		return nil
	}
	return err
}

func (s *SocialService) UnlikeMedia(ctx context.Context, userID, mediaID int64) error {
	err := s.interactionRepo.DeleteLikeMedia(ctx, userID, mediaID)
	if errors.Is(err, repository.ErrLikeNotFound) {
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// 订阅
// ---------------------------------------------------------------------------

// Subscribe 订阅作者，重复订阅幂等返回成功
func (s *SocialService) Subscribe(ctx context.Context, subscriberID, creatorID int64) error {
	if subscriberID == creatorID {
		return ErrSubscribeSelf
	}

	// 确认被订阅的作者存在
	if _, err := s.profileRepo.GetByUserID(ctx, creatorID); err != nil {
		return err
	}

	sub := &model.Subscription{
		SubscriberID: subscriberID,
		CreatorID:    creatorID,
	}
	if err := s.interactionRepo.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			return nil
		}
		return err
	}

	s.notification.NotifyAsync(creatorID, subscriberID, model.NotificationTypeSubscription, nil, nil, "")
	return nil
}

func (s *SocialService) Unsubscribe(ctx context.Context, subscriberID, creatorID int64) error {
	err := s.interactionRepo.DeleteSubscription(ctx, subscriberID, creatorID)
	if errors.Is(err, repository.ErrSubNotFound) {
		return nil
	}
	return err
}

func (s *SocialService) ListSubscriptions(ctx context.Context, subscriberID int64) ([]*model.Subscription, error) {
	return s.interactionRepo.ListSubscriptions(ctx, subscriberID)
}
