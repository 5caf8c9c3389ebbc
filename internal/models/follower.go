package models

import (
	"time"

	"github.com/google/uuid"
)

// Follower - подписка пользователя на уведомления по запросу данных.
// Пара (datarequest_id, user_id) уникальна на уровне БД.
type Follower struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DataRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"datarequest_id"`
	UserID        string    `gorm:"type:text;not null" json:"user_id"`
	Time          time.Time `gorm:"not null;default:now()" json:"time"`
}
