package models

import "time"

// OutboxEventModel holds order events until the relay hands them to Kafka.
type OutboxEventModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	EventID   string `gorm:"size:36;not null;uniqueIndex"`
	Topic     string `gorm:"size:128;not null"`
	Key       string `gorm:"size:64;not null"`
	Payload   []byte `gorm:"not null"`
	CreatedAt time.Time
	SentAt    *time.Time `gorm:"index"`
}

func (OutboxEventModel) TableName() string {
	return "outbox_events"
}
