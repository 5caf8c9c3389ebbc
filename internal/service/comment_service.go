package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"andromeda/internal/models"
	"andromeda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService interface {
	Create(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID, text string) (*models.Comment, error)
	Update(ctx context.Context, ident models.Identity, commentID uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, ident models.Identity, commentID uuid.UUID) error
	List(ctx context.Context, dataRequestID uuid.UUID, desc bool) ([]models.Comment, error)
}

type commentService struct {
	repo    repository.CommentRepository
	drRepo  repository.DataRequestRepository
	textMax int
}

func NewCommentService(repo repository.CommentRepository, drRepo repository.DataRequestRepository, textMax int) CommentService {
	return &commentService{
		repo:    repo,
		drRepo:  drRepo,
		textMax: textMax,
	}
}

func (s *commentService) Create(ctx context.Context, ident models.Identity, dataRequestID uuid.UUID, text string) (*models.Comment, error) {
	if !ident.IsAuthenticated() {
		return nil, ErrNotAuthorized
	}

	// Родительский запрос обязан существовать
	if _, err := s.drRepo.GetByID(ctx, dataRequestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	if err := s.validateText(text); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		DataRequestID: dataRequestID,
		UserID:        ident.UserID,
		Time:          time.Now().UTC(),
		Comment:       text,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// Update меняет только текст, id/время/автор остаются прежними
func (s *commentService) Update(ctx context.Context, ident models.Identity, commentID uuid.UUID, text string) (*models.Comment, error) {
	comment, err := s.getOwned(ctx, ident, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.validateText(text); err != nil {
		return nil, err
	}

	comment.Comment = text
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, ident models.Identity, commentID uuid.UUID) error {
	comment, err := s.getOwned(ctx, ident, commentID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (s *commentService) List(ctx context.Context, dataRequestID uuid.UUID, desc bool) ([]models.Comment, error) {
	if _, err := s.drRepo.GetByID(ctx, dataRequestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	comments, err := s.repo.ListByRequest(ctx, dataRequestID, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) validateText(text string) error {
	if text == "" {
		return newValidationError("comment", "Comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > s.textMax {
		return newValidationError("comment", fmt.Sprintf("Comment must be a maximum of %d characters long", s.textMax))
	}
	return nil
}

// Редактировать и удалять комментарий может автор или сисадмин
func (s *commentService) getOwned(ctx context.Context, ident models.Identity, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if !ident.IsAuthenticated() || (comment.UserID != ident.UserID && !ident.IsSysadmin()) {
		return nil, ErrNotAuthorized
	}

	return comment, nil
}
