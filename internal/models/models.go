package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. PasswordHash and RefreshToken never leave the
// process through a response body; projections live in internal/transport.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	FullName     string    `gorm:"index;not null"           json:"fullName"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Avatar       string    `gorm:"not null"                 json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subscription is a directed follow edge: Subscriber follows Channel.
// The composite unique index rejects duplicate edges at the store level.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sub_channel"    json:"subscriberId"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sub_channel"    json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Video is owned by another subsystem; only existence and owner linkage
// matter here, the rest is carried for the watch-history projection.
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"ownerId"`
	Title       string    `gorm:"not null"              json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	VideoFile   string    `json:"videoFile"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WatchEvent records one watched video. The autoincrement id preserves
// insertion order; history reads sort by it and never resort.
type WatchEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null"       json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}
