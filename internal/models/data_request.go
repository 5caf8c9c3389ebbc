package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Видимость запроса данных
const (
	VisibilityHidden  = 0
	VisibilityVisible = 1
)

// Статус по умолчанию для нового запроса
const DefaultStatus = "Open"

type DataRequest struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID            string         `gorm:"type:text;not null;index" json:"user_id"`
	Title             string         `gorm:"type:varchar(100);not null" json:"title"`
	Description       string         `gorm:"type:varchar(1000);not null;default:''" json:"description"`
	OrganizationID    *string        `gorm:"type:text;index" json:"organization_id,omitempty"`
	OpenTime          time.Time      `gorm:"not null;default:now()" json:"open_time"`
	AcceptedDatasetID *string        `gorm:"type:text" json:"accepted_dataset_id,omitempty"`
	CloseTime         *time.Time     `json:"close_time,omitempty"`
	Closed            bool           `gorm:"not null;default:false" json:"closed"`
	Extras            datatypes.JSON `gorm:"type:jsonb" json:"extras,omitempty"`
	Visibility        int            `gorm:"not null;default:0" json:"visibility"`
	Status            string         `gorm:"type:varchar(128);not null;default:'Open'" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"-"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"-"`
}

// DataRequestDetail - запрос вместе со счетчиками для детальной страницы
type DataRequestDetail struct {
	DataRequest
	CommentsCount  int64 `json:"comments_count"`
	FollowersCount int64 `json:"followers_count"`
}

// FacetCount - количество запросов по одному значению фасета
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// DataRequestPage - страница результатов листинга
type DataRequestPage struct {
	Result            []DataRequest `json:"result"`
	Count             int64         `json:"count"`
	Page              int           `json:"page"`
	PerPage           int           `json:"per_page"`
	StateFacet        []FacetCount  `json:"state_facet"`
	OrganizationFacet []FacetCount  `json:"organization_facet,omitempty"`
}

// DataRequestStats - агрегированные счетчики для /system/stats
type DataRequestStats struct {
	Total     int64 `json:"total"`
	Open      int64 `json:"open"`
	Closed    int64 `json:"closed"`
	Comments  int64 `json:"comments"`
	Followers int64 `json:"followers"`
}
