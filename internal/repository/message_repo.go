package repository

import (
	"context"
	"errors"

	"fanstream/internal/model"

	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("群聊不存在")
	ErrNotGroupMember = errors.New("不是群聊成员")
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListConversation 查两个用户之间的双向消息，按时间正序
func (r *MessageRepository) ListConversation(ctx context.Context, userID, peerID int64, page, pageSize int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead 把对方发来的未读消息全部标记已读
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, peerID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND `read` = ?", peerID, userID, false).
		Update("read", true).Error
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}

// ---------------------------------------------------------------------------
// 群聊
// ---------------------------------------------------------------------------

func (r *MessageRepository) CreateGroup(ctx context.Context, group *model.GroupChat, ownerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := &model.GroupMember{
			GroupID: group.ID,
			UserID:  ownerID,
		}
		return tx.Create(member).Error
	})
}

func (r *MessageRepository) GetGroup(ctx context.Context, groupID int64) (*model.GroupChat, error) {
	var group model.GroupChat
	err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *MessageRepository) AddGroupMember(ctx context.Context, member *model.GroupMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// 重复入群按成功处理
		return nil
	}
	return err
}

func (r *MessageRepository) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *MessageRepository) ListGroupMembers(ctx context.Context, groupID int64) ([]*model.GroupMember, error) {
	var members []*model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&members).Error
	return members, err
}

func (r *MessageRepository) CreateGroupMessage(ctx context.Context, msg *model.GroupMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) ListGroupMessages(ctx context.Context, groupID int64, page, pageSize int) ([]*model.GroupMessage, error) {
	var messages []*model.GroupMessage
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	return messages, err
}
