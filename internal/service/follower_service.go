package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"andromeda/internal/models"
	"andromeda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowerService interface {
	Follow(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID) (*models.Follower, error)
	Unfollow(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID) error
}

type followerService struct {
	repo   repository.FollowerRepository
	drRepo repository.DataRequestRepository
}

func NewFollowerService(repo repository.FollowerRepository, drRepo repository.DataRequestRepository) FollowerService {
	return &followerService{
		repo:   repo,
		drRepo: drRepo,
	}
}

func (s *followerService) Follow(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID) (*models.Follower, error) {
	if !ident.IsAuthenticated() {
		return nil, ErrNotAuthorized
	}

	if _, err := s.drRepo.GetByID(ctx, dataRequestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	// Повторная подписка не ошибка, возвращаем существующую
	existing, err := s.repo.GetByRequestAndUser(ctx, dataRequestID, ident.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check follower: %w", err)
	}

	follower := &models.Follower{
		DataRequestID: dataRequestID,
		UserID:        ident.UserID,
		Time:          time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, follower); err != nil {
		// Гонку двух параллельных подписок решает уникальный индекс пары
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.GetByRequestAndUser(ctx, dataRequestID, ident.UserID)
		}
		return nil, fmt.Errorf("failed to create follower: %w", err)
	}

	return follower, nil
}

func (s *followerService) Unfollow(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID) error {
	if !ident.IsAuthenticated() {
		return ErrNotAuthorized
	}

	follower, err := s.repo.GetByRequestAndUser(ctx, dataRequestID, ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get follower: %w", err)
	}

	if err := s.repo.Delete(ctx, follower.ID); err != nil {
		return fmt.Errorf("failed to delete follower: %w", err)
	}

	return nil
}
