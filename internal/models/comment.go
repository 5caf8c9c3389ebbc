package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DataRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"datarequest_id"`
	UserID        string    `gorm:"type:text;not null" json:"user_id"`
	Time          time.Time `gorm:"not null;default:now()" json:"time"`
	Comment       string    `gorm:"type:varchar(1000);not null" json:"comment"`
}
