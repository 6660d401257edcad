package service

import (
	"context"
	"errors"
	"time"

	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
)

var ErrEmptyStreamTitle = errors.New("直播标题不能为空")

// LiveStreamService 直播生命周期管理
// 音视频信令走 websocket 直播间频道中转，这里只管开播 / 下播
type LiveStreamService struct {
	streamRepo      *repository.LiveStreamRepository
	interactionRepo *repository.InteractionRepository
	hub             *realtime.Hub
}

func NewLiveStreamService(
	streamRepo *repository.LiveStreamRepository,
	interactionRepo *repository.InteractionRepository,
	hub *realtime.Hub,
) *LiveStreamService {
	return &LiveStreamService{
		streamRepo:      streamRepo,
		interactionRepo: interactionRepo,
		hub:             hub,
	}
}

// Start 开播，并向订阅者推开播事件
func (s *LiveStreamService) Start(ctx context.Context, userID int64, title string) (*model.LiveStream, error) {
	if title == "" {
		return nil, ErrEmptyStreamTitle
	}

	stream := &model.LiveStream{
		UserID:    userID,
		Title:     title,
		Status:    model.StreamStatusLive,
		StartedAt: time.Now(),
	}
	if err := s.streamRepo.Create(ctx, stream); err != nil {
		return nil, err
	}

	// 给在线订阅者推开播提醒，查失败不影响开播
	if subscriberIDs, err := s.interactionRepo.ListSubscriberIDs(ctx, userID); err == nil {
		for _, subscriberID := range subscriberIDs {
			s.hub.PublishToUser(subscriberID, "stream_started", stream)
		}
	}

	return stream, nil
}

// End 下播，并通知直播间里的观众
func (s *LiveStreamService) End(ctx context.Context, userID, streamID int64) error {
	if err := s.streamRepo.End(ctx, streamID, userID); err != nil {
		return err
	}

	s.hub.Publish(realtime.StreamTopic(streamID), "stream_ended", map[string]interface{}{
		"stream_id": streamID,
	})
	return nil
}

func (s *LiveStreamService) Get(ctx context.Context, streamID int64) (*model.LiveStream, error) {
	return s.streamRepo.GetByID(ctx, streamID)
}

func (s *LiveStreamService) ListLive(ctx context.Context) ([]*model.LiveStream, error) {
	return s.streamRepo.ListLive(ctx)
}
