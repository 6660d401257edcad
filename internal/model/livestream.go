package model

import (
	"time"
)

const (
	StreamStatusLive  = "LIVE"
	StreamStatusEnded = "ENDED"
)

// LiveStream 直播表
// 信令本身走 websocket，不落库，这里只记录直播的生命周期
type LiveStream struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"index;not null" json:"user_id"`
	Title     string     `gorm:"type:varchar(256);not null" json:"title"`
	Status    string     `gorm:"type:varchar(10);index;not null" json:"status"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func (LiveStream) TableName() string {
	return "live_streams"
}
