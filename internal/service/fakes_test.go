package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"andromeda/internal/clients"
	"andromeda/internal/models"
	"andromeda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory реализации репозиториев для тестов сервисного слоя

type fakeDataRequestRepo struct {
	items map[uuid.UUID]*models.DataRequest
}

func newFakeDataRequestRepo() *fakeDataRequestRepo {
	return &fakeDataRequestRepo{items: make(map[uuid.UUID]*models.DataRequest)}
}

func (r *fakeDataRequestRepo) Create(_ context.Context, dr *models.DataRequest) error {
	// Уникальный индекс по LOWER(title) эмулируется здесь
	for _, existing := range r.items {
		if strings.EqualFold(existing.Title, dr.Title) {
			return gorm.ErrDuplicatedKey
		}
	}
	if dr.ID == uuid.Nil {
		dr.ID = uuid.New()
	}
	stored := *dr
	r.items[dr.ID] = &stored
	return nil
}

func (r *fakeDataRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*models.DataRequest, error) {
	dr, found := r.items[id]
	if !found {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *dr
	return &copy, nil
}

func (r *fakeDataRequestRepo) Update(_ context.Context, dr *models.DataRequest) error {
	for id, existing := range r.items {
		if id != dr.ID && strings.EqualFold(existing.Title, dr.Title) {
			return gorm.ErrDuplicatedKey
		}
	}
	stored := *dr
	r.items[dr.ID] = &stored
	return nil
}

func (r *fakeDataRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeDataRequestRepo) matches(dr *models.DataRequest, f repository.DataRequestFilters) bool {
	if f.UserID != "" && dr.UserID != f.UserID {
		return false
	}
	if f.OrganizationID != "" && (dr.OrganizationID == nil || *dr.OrganizationID != f.OrganizationID) {
		return false
	}
	if f.Closed != nil && dr.Closed != *f.Closed {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(dr.Title), q) &&
			!strings.Contains(strings.ToLower(dr.Description), q) {
			return false
		}
	}
	return true
}

func (r *fakeDataRequestRepo) List(_ context.Context, f repository.DataRequestFilters) ([]models.DataRequest, int64, error) {
	var all []models.DataRequest
	for _, dr := range r.items {
		if r.matches(dr, f) {
			all = append(all, *dr)
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if f.Sort == "asc" {
			return all[i].OpenTime.Before(all[j].OpenTime)
		}
		return all[i].OpenTime.After(all[j].OpenTime)
	})

	total := int64(len(all))
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *fakeDataRequestRepo) ExistsByTitle(_ context.Context, title string, excludeID uuid.UUID) (bool, error) {
	for id, dr := range r.items {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(dr.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDataRequestRepo) CountByState(_ context.Context, f repository.DataRequestFilters) (int64, int64, error) {
	f.Closed = nil
	var open, closed int64
	for _, dr := range r.items {
		if !r.matches(dr, f) {
			continue
		}
		if dr.Closed {
			closed++
		} else {
			open++
		}
	}
	return open, closed, nil
}

func (r *fakeDataRequestRepo) OrganizationFacet(_ context.Context, f repository.DataRequestFilters) ([]models.FacetCount, error) {
	f.OrganizationID = ""
	counts := make(map[string]int64)
	for _, dr := range r.items {
		if dr.OrganizationID != nil && r.matches(dr, f) {
			counts[*dr.OrganizationID]++
		}
	}

	var facets []models.FacetCount
	for value, count := range counts {
		facets = append(facets, models.FacetCount{Value: value, Count: count})
	}
	sort.Slice(facets, func(i, j int) bool { return facets[i].Count > facets[j].Count })
	return facets, nil
}

func (r *fakeDataRequestRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

type fakeCommentRepo struct {
	items map[uuid.UUID]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{items: make(map[uuid.UUID]*models.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	stored := *comment
	r.items[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, found := r.items[id]
	if !found {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *comment
	return &copy, nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment *models.Comment) error {
	stored := *comment
	r.items[comment.ID] = &stored
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeCommentRepo) ListByRequest(_ context.Context, dataRequestID uuid.UUID, desc bool) ([]models.Comment, error) {
	var comments []models.Comment
	for _, comment := range r.items {
		if comment.DataRequestID == dataRequestID {
			comments = append(comments, *comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if desc {
			return comments[i].Time.After(comments[j].Time)
		}
		return comments[i].Time.Before(comments[j].Time)
	})
	return comments, nil
}

func (r *fakeCommentRepo) CountByRequest(_ context.Context, dataRequestID uuid.UUID) (int64, error) {
	var count int64
	for _, comment := range r.items {
		if comment.DataRequestID == dataRequestID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCommentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

type fakeFollowerRepo struct {
	items map[uuid.UUID]*models.Follower
}

func newFakeFollowerRepo() *fakeFollowerRepo {
	return &fakeFollowerRepo{items: make(map[uuid.UUID]*models.Follower)}
}

func (r *fakeFollowerRepo) Create(_ context.Context, follower *models.Follower) error {
	for _, existing := range r.items {
		if existing.DataRequestID == follower.DataRequestID && existing.UserID == follower.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if follower.ID == uuid.Nil {
		follower.ID = uuid.New()
	}
	stored := *follower
	r.items[follower.ID] = &stored
	return nil
}

func (r *fakeFollowerRepo) GetByRequestAndUser(_ context.Context, dataRequestID uuid.UUID, userID string) (*models.Follower, error) {
	for _, follower := range r.items {
		if follower.DataRequestID == dataRequestID && follower.UserID == userID {
			copy := *follower
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFollowerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeFollowerRepo) CountByRequest(_ context.Context, dataRequestID uuid.UUID) (int64, error) {
	var count int64
	for _, follower := range r.items {
		if follower.DataRequestID == dataRequestID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.items)), nil
}

// fakeCacheRepo всегда промахивается, сервисы должны работать и без кэша
type fakeCacheRepo struct{}

var _ repository.CacheRepository = fakeCacheRepo{}

func (fakeCacheRepo) Delete(context.Context, string) error          { return nil }
func (fakeCacheRepo) DeleteByPattern(context.Context, string) error { return nil }
func (fakeCacheRepo) GetJSON(context.Context, string, interface{}) error {
	return repository.ErrCacheMiss
}
func (fakeCacheRepo) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}

type fakeCatalog struct {
	orgs        map[string]bool
	orgDatasets map[string][]clients.Dataset
	recent      []clients.Dataset
	orgErr      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		orgs:        make(map[string]bool),
		orgDatasets: make(map[string][]clients.Dataset),
	}
}

func (c *fakeCatalog) OrganizationExists(_ context.Context, id string) (bool, error) {
	if c.orgErr != nil {
		return false, c.orgErr
	}
	return c.orgs[id], nil
}

func (c *fakeCatalog) OrganizationDatasets(_ context.Context, id string) ([]clients.Dataset, error) {
	return c.orgDatasets[id], nil
}

func (c *fakeCatalog) RecentDatasets(_ context.Context, _ int) ([]clients.Dataset, error) {
	return c.recent, nil
}
