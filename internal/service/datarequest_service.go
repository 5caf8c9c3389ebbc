package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"andromeda/internal/clients"
	"andromeda/internal/models"
	"andromeda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	listCachePattern = "datarequests:list:*"
	listCacheTTL     = 60 * time.Second
	statsCacheKey    = "datarequests:stats"
	statsCacheTTL    = 5 * time.Minute
)

// Параметры листинга на уровне сервиса. Page начинается с 1.
type ListParams struct {
	OrganizationID           string
	UserID                   string
	State                    string // "open" | "closed" | ""
	Query                    string
	Sort                     string
	Page                     int
	IncludeOrganizationFacet bool
}

type DataRequestService interface {
	Create(ctx context.Context, ident models.Identity, payload DataRequestPayload) (*models.DataRequest, error)
	Show(ctx context.Context, id uuid.UUID) (*models.DataRequestDetail, error)
	Update(ctx context.Context, ident models.Identity, id uuid.UUID, payload DataRequestPayload) (*models.DataRequest, error)
	Delete(ctx context.Context, ident models.Identity, id uuid.UUID) (*models.DataRequest, error)
	Close(ctx context.Context, ident models.Identity, id uuid.UUID, acceptedDatasetID string) (*models.DataRequest, error)
	CloseCandidates(ctx context.Context, id uuid.UUID) ([]clients.Dataset, error)
	List(ctx context.Context, params ListParams) (*models.DataRequestPage, error)
	Stats(ctx context.Context) (*models.DataRequestStats, error)
}

type dataRequestService struct {
	repo         repository.DataRequestRepository
	commentRepo  repository.CommentRepository
	followerRepo repository.FollowerRepository
	cacheRepo    repository.CacheRepository
	catalog      clients.CatalogClient
	validator    *dataRequestValidator
	perPage      int
	searchRows   int
}

type DataRequestConfig struct {
	TitleMaxLength       int
	DescriptionMaxLength int
	PerPage              int
	SearchRows           int
}

func NewDataRequestService(
	repo repository.DataRequestRepository,
	commentRepo repository.CommentRepository,
	followerRepo repository.FollowerRepository,
	cacheRepo repository.CacheRepository,
	catalog clients.CatalogClient,
	config DataRequestConfig,
) DataRequestService {
	return &dataRequestService{
		repo:         repo,
		commentRepo:  commentRepo,
		followerRepo: followerRepo,
		cacheRepo:    cacheRepo,
		catalog:      catalog,
		validator: &dataRequestValidator{
			repo:     repo,
			catalog:  catalog,
			titleMax: config.TitleMaxLength,
			descMax:  config.DescriptionMaxLength,
		},
		perPage:    config.PerPage,
		searchRows: config.SearchRows,
	}
}

func (s *dataRequestService) Create(ctx context.Context, ident models.Identity, payload DataRequestPayload) (*models.DataRequest, error) {
	if !ident.IsAuthenticated() {
		return nil, ErrNotAuthorized
	}

	if err := s.validator.validate(ctx, payload, uuid.Nil); err != nil {
		return nil, err
	}

	dr := &models.DataRequest{
		UserID:      ident.UserID,
		Title:       payload.Title,
		Description: payload.Description,
		OpenTime:    time.Now().UTC(),
		Closed:      false,
		Visibility:  models.VisibilityHidden,
		Status:      models.DefaultStatus,
	}
	if payload.OrganizationID != "" {
		dr.OrganizationID = &payload.OrganizationID
	}

	if err := s.repo.Create(ctx, dr); err != nil {
		// Предварительная проверка заголовка не атомарна, гонку ловит
		// уникальный индекс. Наружу уходит та же ошибка валидации.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("title", "That title is already in use")
		}
		return nil, fmt.Errorf("failed to create data request: %w", err)
	}

	s.invalidateCaches(ctx)
	log.Printf("Data request %s created by user %s", dr.ID, ident.UserID)
	return dr, nil
}

func (s *dataRequestService) Show(ctx context.Context, id uuid.UUID) (*models.DataRequestDetail, error) {
	dr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	comments, err := s.commentRepo.CountByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	followers, err := s.followerRepo.CountByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	return &models.DataRequestDetail{
		DataRequest:    *dr,
		CommentsCount:  comments,
		FollowersCount: followers,
	}, nil
}

func (s *dataRequestService) Update(ctx context.Context, ident models.Identity, id uuid.UUID, payload DataRequestPayload) (*models.DataRequest, error) {
	dr, err := s.getOwned(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	// Закрытый запрос менять нельзя
	if dr.Closed {
		return nil, ErrAlreadyClosed
	}

	if err := s.validator.validate(ctx, payload, id); err != nil {
		return nil, err
	}

	dr.Title = payload.Title
	dr.Description = payload.Description
	dr.OrganizationID = nil
	if payload.OrganizationID != "" {
		dr.OrganizationID = &payload.OrganizationID
	}

	if err := s.repo.Update(ctx, dr); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("title", "That title is already in use")
		}
		return nil, fmt.Errorf("failed to update data request: %w", err)
	}

	s.invalidateCaches(ctx)
	return dr, nil
}

func (s *dataRequestService) Delete(ctx context.Context, ident models.Identity, id uuid.UUID) (*models.DataRequest, error) {
	dr, err := s.getOwned(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete data request: %w", err)
	}

	s.invalidateCaches(ctx)
	log.Printf("Data request %s (%q) deleted by user %s", dr.ID, dr.Title, ident.UserID)
	return dr, nil
}

func (s *dataRequestService) Close(ctx context.Context, ident models.Identity, id uuid.UUID, acceptedDatasetID string) (*models.DataRequest, error) {
	dr, err := s.getOwned(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	// Переход только в одну сторону, пути назад нет
	if dr.Closed {
		return nil, ErrAlreadyClosed
	}

	if acceptedDatasetID != "" {
		valid, err := s.datasetAcceptable(ctx, dr, acceptedDatasetID)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, newValidationError("accepted_dataset_id", "Accepted dataset is not valid")
		}
		dr.AcceptedDatasetID = &acceptedDatasetID
	}

	now := time.Now().UTC()
	dr.Closed = true
	dr.CloseTime = &now

	if err := s.repo.Update(ctx, dr); err != nil {
		return nil, fmt.Errorf("failed to close data request: %w", err)
	}

	s.invalidateCaches(ctx)
	log.Printf("Data request %s closed by user %s", dr.ID, ident.UserID)
	return dr, nil
}

// CloseCandidates отдает датасеты, которыми можно закрыть запрос:
// датасеты организации запроса либо последние по времени из каталога
func (s *dataRequestService) CloseCandidates(ctx context.Context, id uuid.UUID) ([]clients.Dataset, error) {
	dr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	if dr.OrganizationID != nil {
		return s.catalog.OrganizationDatasets(ctx, *dr.OrganizationID)
	}
	return s.catalog.RecentDatasets(ctx, s.searchRows)
}

func (s *dataRequestService) datasetAcceptable(ctx context.Context, dr *models.DataRequest, datasetID string) (bool, error) {
	var candidates []clients.Dataset
	var err error

	if dr.OrganizationID != nil {
		candidates, err = s.catalog.OrganizationDatasets(ctx, *dr.OrganizationID)
	} else {
		candidates, err = s.catalog.RecentDatasets(ctx, s.searchRows)
	}
	if err != nil {
		return false, fmt.Errorf("failed to load candidate datasets: %w", err)
	}

	for _, dataset := range candidates {
		if dataset.ID == datasetID || dataset.Name == datasetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *dataRequestService) List(ctx context.Context, params ListParams) (*models.DataRequestPage, error) {
	sort := params.Sort
	if sort != "asc" && sort != "desc" {
		sort = "desc"
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("datarequests:list:org=%s:user=%s:state=%s:q=%s:sort=%s:page=%d:orgfacet=%t",
		params.OrganizationID, params.UserID, params.State, params.Query, sort, page, params.IncludeOrganizationFacet)

	var cached models.DataRequestPage
	if err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	filters := repository.DataRequestFilters{
		UserID:         params.UserID,
		OrganizationID: params.OrganizationID,
		Query:          params.Query,
		Sort:           sort,
		Offset:         (page - 1) * s.perPage,
		Limit:          s.perPage,
	}
	if params.State != "" {
		closed := params.State == "closed"
		filters.Closed = &closed
	}

	requests, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list data requests: %w", err)
	}

	open, closed, err := s.repo.CountByState(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count data requests by state: %w", err)
	}

	result := &models.DataRequestPage{
		Result:  requests,
		Count:   total,
		Page:    page,
		PerPage: s.perPage,
		StateFacet: []models.FacetCount{
			{Value: "open", Count: open},
			{Value: "closed", Count: closed},
		},
	}

	// Фасет организаций не показывается, когда листинг уже ограничен одной
	if params.IncludeOrganizationFacet && params.OrganizationID == "" {
		orgFacet, err := s.repo.OrganizationFacet(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to build organization facet: %w", err)
		}
		result.OrganizationFacet = orgFacet
	}

	if err := s.cacheRepo.SetJSON(ctx, cacheKey, result, listCacheTTL); err != nil {
		log.Printf("Failed to cache data request listing: %v", err)
	}

	return result, nil
}

func (s *dataRequestService) Stats(ctx context.Context) (*models.DataRequestStats, error) {
	var cached models.DataRequestStats
	if err := s.cacheRepo.GetJSON(ctx, statsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	open, closed, err := s.repo.CountByState(ctx, repository.DataRequestFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to count data requests: %w", err)
	}

	comments, err := s.commentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	followers, err := s.followerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	stats := &models.DataRequestStats{
		Total:     open + closed,
		Open:      open,
		Closed:    closed,
		Comments:  comments,
		Followers: followers,
	}

	if err := s.cacheRepo.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		log.Printf("Failed to cache data request stats: %v", err)
	}

	return stats, nil
}

// getOwned достает запрос и проверяет право на его изменение:
// либо автор, либо сисадмин
func (s *dataRequestService) getOwned(ctx context.Context, ident models.Identity, id uuid.UUID) (*models.DataRequest, error) {
	dr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get data request: %w", err)
	}

	if !ident.IsAuthenticated() || (dr.UserID != ident.UserID && !ident.IsSysadmin()) {
		return nil, ErrNotAuthorized
	}

	return dr, nil
}

func (s *dataRequestService) invalidateCaches(ctx context.Context) {
	if err := s.cacheRepo.DeleteByPattern(ctx, listCachePattern); err != nil {
		log.Printf("Failed to invalidate listing cache: %v", err)
	}
	if err := s.cacheRepo.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("Failed to invalidate stats cache: %v", err)
	}
}
