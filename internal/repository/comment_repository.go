package repository

import (
	"context"

	"andromeda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRequest(ctx context.Context, dataRequestID uuid.UUID, desc bool) ([]models.Comment, error)
	CountByRequest(ctx context.Context, dataRequestID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&comment).
		Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Comment{}).
		Error
}

func (r *commentRepository) ListByRequest(ctx context.Context, dataRequestID uuid.UUID, desc bool) ([]models.Comment, error) {
	order := "time ASC"
	if desc {
		order = "time DESC"
	}

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("data_request_id = ?", dataRequestID).
		Order(order).
		Find(&comments).
		Error
	return comments, err
}

func (r *commentRepository) CountByRequest(ctx context.Context, dataRequestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("data_request_id = ?", dataRequestID).
		Count(&count).
		Error
	return count, err
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Count(&count).
		Error
	return count, err
}
