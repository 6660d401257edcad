package service

import (
	"context"
	"errors"

	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
)

var (
	ErrMessageSelf     = errors.New("不能给自己发私信")
	ErrEmptyGroupName  = errors.New("群聊名称不能为空")
	ErrNotGroupCreator = errors.New("只有群主可以拉人")
)

// MessageService 私信与群聊
type MessageService struct {
	messageRepo  *repository.MessageRepository
	userRepo     *repository.UserRepository
	notification *NotificationService
	hub          *realtime.Hub
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	notification *NotificationService,
	hub *realtime.Hub,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		notification: notification,
		hub:          hub,
	}
}

// Send 发私信
func (s *MessageService) Send(ctx context.Context, senderID, recipientID int64, content string) (*model.Message, error) {
	if senderID == recipientID {
		return nil, ErrMessageSelf
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	message := &model.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messageRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	// 实时推给对方，外加一条站内通知
	s.hub.PublishToUser(recipientID, "message", message)
	s.notification.NotifyAsync(recipientID, senderID, model.NotificationTypeMessage, nil, nil, content)

	return message, nil
}

// GetConversation 拉会话并把对方的消息标记已读
func (s *MessageService) GetConversation(ctx context.Context, userID, peerID int64, page, pageSize int) ([]*model.Message, error) {
	messages, err := s.messageRepo.ListConversation(ctx, userID, peerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.MarkConversationRead(ctx, userID, peerID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

// ---------------------------------------------------------------------------
// 群聊
// ---------------------------------------------------------------------------

func (s *MessageService) CreateGroup(ctx context.Context, ownerID int64, name string) (*model.GroupChat, error) {
	if name == "" {
		return nil, ErrEmptyGroupName
	}
	group := &model.GroupChat{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.messageRepo.CreateGroup(ctx, group, ownerID); err != nil {
		return nil, err
	}
	return group, nil
}

// AddGroupMember 群主拉人入群
func (s *MessageService) AddGroupMember(ctx context.Context, operatorID, groupID, userID int64) error {
	group, err := s.messageRepo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != operatorID {
		return ErrNotGroupCreator
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.messageRepo.AddGroupMember(ctx, &model.GroupMember{
		GroupID: groupID,
		UserID:  userID,
	})
}

// SendGroupMessage 发群消息，只有群成员可以发
func (s *MessageService) SendGroupMessage(ctx context.Context, senderID, groupID int64, content string) (*model.GroupMessage, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	isMember, err := s.messageRepo.IsGroupMember(ctx, groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, repository.ErrNotGroupMember
	}

	message := &model.GroupMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.CreateGroupMessage(ctx, message); err != nil {
		return nil, err
	}

	// 推给除发送者外的所有在线群成员
	members, err := s.messageRepo.ListGroupMembers(ctx, groupID)
	if err == nil {
		for _, member := range members {
			if member.UserID != senderID {
				s.hub.PublishToUser(member.UserID, "group_message", message)
			}
		}
	}

	return message, nil
}

func (s *MessageService) ListGroupMessages(ctx context.Context, userID, groupID int64, page, pageSize int) ([]*model.GroupMessage, error) {
	isMember, err := s.messageRepo.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, repository.ErrNotGroupMember
	}
	return s.messageRepo.ListGroupMessages(ctx, groupID, page, pageSize)
}
