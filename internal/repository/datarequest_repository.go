package repository

import (
	"context"

	"andromeda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataRequestFilters - фильтры листинга. Closed == nil означает "все состояния".
type DataRequestFilters struct {
	UserID         string
	OrganizationID string
	Closed         *bool
	Query          string
	Sort           string // "asc" | "desc" по open_time
	Offset         int
	Limit          int
}

type DataRequestRepository interface {
	Create(ctx context.Context, dr *models.DataRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DataRequest, error)
	Update(ctx context.Context, dr *models.DataRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f DataRequestFilters) ([]models.DataRequest, int64, error)
	ExistsByTitle(ctx context.Context, title string, excludeID uuid.UUID) (bool, error)
	CountByState(ctx context.Context, f DataRequestFilters) (open int64, closed int64, err error)
	OrganizationFacet(ctx context.Context, f DataRequestFilters) ([]models.FacetCount, error)
	Count(ctx context.Context) (int64, error)
}

type dataRequestRepository struct {
	db *gorm.DB
}

func NewDataRequestRepository(db *gorm.DB) DataRequestRepository {
	return &dataRequestRepository{db: db}
}

func (r *dataRequestRepository) Create(ctx context.Context, dr *models.DataRequest) error {
	return r.db.WithContext(ctx).Create(dr).Error
}

func (r *dataRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DataRequest, error) {
	var dr models.DataRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&dr).
		Error
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

func (r *dataRequestRepository) Update(ctx context.Context, dr *models.DataRequest) error {
	return r.db.WithContext(ctx).Save(dr).Error
}

// Delete удаляет запрос вместе с комментариями и подписчиками одной транзакцией
func (r *dataRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("data_request_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("data_request_id = ?", id).Delete(&models.Follower{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.DataRequest{}).Error
	})
}

// applyFilters навешивает общие условия листинга (кроме пагинации и сортировки)
func applyFilters(query *gorm.DB, f DataRequestFilters) *gorm.DB {
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.OrganizationID != "" {
		query = query.Where("organization_id = ?", f.OrganizationID)
	}
	if f.Closed != nil {
		query = query.Where("closed = ?", *f.Closed)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

func (r *dataRequestRepository) List(ctx context.Context, f DataRequestFilters) ([]models.DataRequest, int64, error) {
	query := applyFilters(r.db.WithContext(ctx).Model(&models.DataRequest{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "open_time DESC"
	if f.Sort == "asc" {
		order = "open_time ASC"
	}

	var requests []models.DataRequest
	err := query.
		Order(order).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&requests).
		Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ExistsByTitle проверяет занятость заголовка без учета регистра.
// excludeID позволяет не учитывать саму обновляемую запись.
func (r *dataRequestRepository) ExistsByTitle(ctx context.Context, title string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DataRequest{}).
		Where("LOWER(title) = LOWER(?)", title)

	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByState считает открытые и закрытые запросы под текущими фильтрами,
// игнорируя фильтр состояния (фасет должен показывать обе цифры)
func (r *dataRequestRepository) CountByState(ctx context.Context, f DataRequestFilters) (int64, int64, error) {
	f.Closed = nil
	base := applyFilters(r.db.WithContext(ctx).Model(&models.DataRequest{}), f)

	var open int64
	if err := base.Session(&gorm.Session{}).Where("closed = ?", false).Count(&open).Error; err != nil {
		return 0, 0, err
	}

	var closed int64
	if err := base.Session(&gorm.Session{}).Where("closed = ?", true).Count(&closed).Error; err != nil {
		return 0, 0, err
	}

	return open, closed, nil
}

func (r *dataRequestRepository) OrganizationFacet(ctx context.Context, f DataRequestFilters) ([]models.FacetCount, error) {
	f.OrganizationID = ""
	query := applyFilters(r.db.WithContext(ctx).Model(&models.DataRequest{}), f)

	var facets []models.FacetCount
	err := query.
		Select("organization_id AS value, COUNT(*) AS count").
		Where("organization_id IS NOT NULL").
		Group("organization_id").
		Order("count DESC").
		Scan(&facets).
		Error
	return facets, err
}

func (r *dataRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DataRequest{}).
		Count(&count).
		Error
	return count, err
}
