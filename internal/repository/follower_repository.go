package repository

import (
	"context"

	"andromeda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowerRepository interface {
	Create(ctx context.Context, follower *models.Follower) error
	GetByRequestAndUser(ctx context.Context, dataRequestID uuid.UUID, userID string) (*models.Follower, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByRequest(ctx context.Context, dataRequestID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type followerRepository struct {
	db *gorm.DB
}

func NewFollowerRepository(db *gorm.DB) FollowerRepository {
	return &followerRepository{db: db}
}

func (r *followerRepository) Create(ctx context.Context, follower *models.Follower) error {
	return r.db.WithContext(ctx).Create(follower).Error
}

func (r *followerRepository) GetByRequestAndUser(ctx context.Context, dataRequestID uuid.UUID, userID string) (*models.Follower, error) {
	var follower models.Follower
	err := r.db.WithContext(ctx).
		Where("data_request_id = ? AND user_id = ?", dataRequestID, userID).
		First(&follower).
		Error
	if err != nil {
		return nil, err
	}
	return &follower, nil
}

func (r *followerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Follower{}).
		Error
}

func (r *followerRepository) CountByRequest(ctx context.Context, dataRequestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follower{}).
		Where("data_request_id = ?", dataRequestID).
		Count(&count).
		Error
	return count, err
}

func (r *followerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follower{}).
		Count(&count).
		Error
	return count, err
}
