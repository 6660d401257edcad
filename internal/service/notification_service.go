package service

import (
	"context"
	"log"

	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
)

// NotificationService 站内通知
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	hub              *realtime.Hub
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	hub *realtime.Hub,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
	}
}

// Notify 给用户发通知
// 先查接收者的通知开关，关掉的类型直接跳过；
// 自己触发的事件不通知自己
func (s *NotificationService) Notify(ctx context.Context, recipientID, actorID int64, notificationType string, postID, mediaID *int64, content string) error {
	if recipientID == actorID {
		return nil
	}

	settings, err := s.notificationRepo.GetSettings(ctx, recipientID)
	if err != nil {
		return err
	}
	if !settings.Enabled(notificationType) {
		return nil
	}

	notification := &model.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Type:    notificationType,
		PostID:  postID,
		MediaID: mediaID,
		Content: content,
	}
	if err := s.notificationRepo.Create(ctx, nil, notification); err != nil {
		return err
	}

	s.hub.PublishToUser(recipientID, "notification", notification)
	return nil
}

// NotifyAsync 异步发通知，失败只记日志
// 用在不希望通知失败影响主流程的地方
func (s *NotificationService) NotifyAsync(recipientID, actorID int64, notificationType string, postID, mediaID *int64, content string) {
	go func() {
		ctx := context.Background()
		if err := s.Notify(ctx, recipientID, actorID, notificationType, postID, mediaID, content); err != nil {
			log.Printf("通知发送失败: type=%s recipient=%d err=%v", notificationType, recipientID, err)
		}
	}()
}

func (s *NotificationService) List(ctx context.Context, userID int64, page, pageSize int) ([]*model.Notification, error) {
	return s.notificationRepo.ListByUserID(ctx, userID, page, pageSize)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) GetSettings(ctx context.Context, userID int64) (*model.NotificationSetting, error) {
	return s.notificationRepo.GetSettings(ctx, userID)
}

func (s *NotificationService) UpdateSettings(ctx context.Context, setting *model.NotificationSetting) error {
	return s.notificationRepo.SaveSettings(ctx, setting)
}
