package model

import (
	"time"
)

// Message 私信表
type Message struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    int64     `gorm:"index;not null" json:"sender_id"`
	RecipientID int64     `gorm:"index;not null" json:"recipient_id"`
	Content     string    `gorm:"type:varchar(2048);not null" json:"content"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// GroupChat 群聊表
type GroupChat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	OwnerID   int64     `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GroupChat) TableName() string {
	return "group_chats"
}

// GroupMember 群成员表
type GroupMember struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID   int64     `gorm:"not null;uniqueIndex:uk_group_member" json:"group_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_group_member;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMessage 群消息表
type GroupMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID   int64     `gorm:"index;not null" json:"group_id"`
	SenderID  int64     `gorm:"index;not null" json:"sender_id"`
	Content   string    `gorm:"type:varchar(2048);not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (GroupMessage) TableName() string {
	return "group_messages"
}
