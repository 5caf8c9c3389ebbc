package service

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"andromeda/internal/clients"
	"andromeda/internal/repository"

	"github.com/google/uuid"
)

// DataRequestPayload - данные формы создания/обновления запроса
type DataRequestPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	OrganizationID string `json:"organization_id"`
}

// dataRequestValidator собирает все ошибки полей в одну карту.
// Уникальность заголовка проверяется только когда сам заголовок корректен.
type dataRequestValidator struct {
	repo     repository.DataRequestRepository
	catalog  clients.CatalogClient
	titleMax int
	descMax  int
}

func (v *dataRequestValidator) validate(ctx context.Context, payload DataRequestPayload, excludeID uuid.UUID) error {
	errs := map[string][]string{}

	// Заголовок: ограничение длины, потом пустота. Пустой слишком длинный
	// заголовок показывает только сообщение о пустоте.
	if utf8.RuneCountInString(payload.Title) > v.titleMax {
		errs["title"] = []string{fmt.Sprintf("Title must be a maximum of %d characters long", v.titleMax)}
	}

	if payload.Title == "" {
		errs["title"] = []string{"Title cannot be empty"}
	}

	// Занятость заголовка смотрим в БД только когда он сам по себе корректен
	if _, found := errs["title"]; !found {
		exists, err := v.repo.ExistsByTitle(ctx, payload.Title, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			errs["title"] = []string{"That title is already in use"}
		}
	}

	if utf8.RuneCountInString(payload.Description) > v.descMax {
		errs["description"] = []string{fmt.Sprintf("Description must be a maximum of %d characters long", v.descMax)}
	}

	// Организация опциональна, но указанная должна существовать в каталоге.
	// Детали ошибки каталога пользователю не показываем.
	if payload.OrganizationID != "" {
		exists, err := v.catalog.OrganizationExists(ctx, payload.OrganizationID)
		if err != nil || !exists {
			if err != nil {
				log.Printf("Organization check failed for %s: %v", payload.OrganizationID, err)
			}
			errs["organization_id"] = []string{"Organization is not valid"}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	return nil
}
