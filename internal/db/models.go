package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:8;uniqueIndex;not null"`
	MaxRounds int       `gorm:"not null"`
	MaxScore  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Events    []Event
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	Type      string         `gorm:"size:64;not null"`
	PlayerID  string         `gorm:"size:40"`
	Round     int            `gorm:"not null;default:0"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
}

type PromptLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:280;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type SoundAsset struct {
	ID        uint      `gorm:"primaryKey"`
	SoundID   string    `gorm:"size:64;not null;uniqueIndex"`
	Label     string    `gorm:"size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
