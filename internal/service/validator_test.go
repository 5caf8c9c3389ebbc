package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"andromeda/internal/models"
)

func testEnv() (*fakeDataRequestRepo, *fakeCommentRepo, *fakeFollowerRepo, *fakeCatalog, DataRequestService) {
	repo := newFakeDataRequestRepo()
	commentRepo := newFakeCommentRepo()
	followerRepo := newFakeFollowerRepo()
	catalog := newFakeCatalog()
	catalog.orgs["org-1"] = true

	svc := NewDataRequestService(repo, commentRepo, followerRepo, fakeCacheRepo{}, catalog, DataRequestConfig{
		TitleMaxLength:       100,
		DescriptionMaxLength: 1000,
		PerPage:              10,
		SearchRows:           500,
	})
	return repo, commentRepo, followerRepo, catalog, svc
}

func requester() models.Identity {
	return models.Identity{UserID: "user-1"}
}

func fieldMessages(t *testing.T, err error, field string) []string {
	t.Helper()

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return validationErr.Fields[field]
}

func TestCreateRejectsTooLongTitle(t *testing.T) {
	repo, _, _, _, svc := testEnv()

	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{
		Title: strings.Repeat("x", 101),
	})

	messages := fieldMessages(t, err, "title")
	if len(messages) != 1 || !strings.Contains(messages[0], "maximum of 100") {
		t.Fatalf("unexpected title errors: %v", messages)
	}
	if len(repo.items) != 0 {
		t.Fatal("nothing should be persisted when validation fails")
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	repo, _, _, _, svc := testEnv()

	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{Title: ""})

	messages := fieldMessages(t, err, "title")
	if len(messages) != 1 || messages[0] != "Title cannot be empty" {
		t.Fatalf("unexpected title errors: %v", messages)
	}
	if len(repo.items) != 0 {
		t.Fatal("nothing should be persisted when validation fails")
	}
}

func TestCreateTitleUniquenessIsCaseInsensitive(t *testing.T) {
	_, _, _, _, svc := testEnv()

	orig := DataRequestPayload{Title: "Open water data", Description: "river levels", OrganizationID: "org-1"}
	if _, err := svc.Create(context.Background(), requester(), orig); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{Title: "open water data"})
	messages := fieldMessages(t, err, "title")
	if len(messages) != 1 || messages[0] != "That title is already in use" {
		t.Fatalf("unexpected title errors: %v", messages)
	}
}

func TestUniquenessNotCheckedWhenTitleInvalid(t *testing.T) {
	_, _, _, _, svc := testEnv()

	if _, err := svc.Create(context.Background(), requester(), DataRequestPayload{Title: "Taken"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Пустой заголовок: про занятость сообщать не нужно
	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{Title: ""})
	messages := fieldMessages(t, err, "title")
	if len(messages) != 1 || messages[0] != "Title cannot be empty" {
		t.Fatalf("unexpected title errors: %v", messages)
	}
}

func TestCreateAccumulatesErrorsAcrossFields(t *testing.T) {
	_, _, _, catalog, svc := testEnv()
	catalog.orgs["org-1"] = false

	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{
		Title:          "",
		Description:    strings.Repeat("d", 1001),
		OrganizationID: "org-1",
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	for _, field := range []string{"title", "description", "organization_id"} {
		if len(validationErr.Fields[field]) == 0 {
			t.Errorf("expected error for field %q, got %v", field, validationErr.Fields)
		}
	}
}

func TestCreateOrganizationCheckFailureBecomesFieldError(t *testing.T) {
	_, _, _, catalog, svc := testEnv()
	catalog.orgErr = errors.New("catalog is down")

	_, err := svc.Create(context.Background(), requester(), DataRequestPayload{
		Title:          "Air quality",
		OrganizationID: "org-1",
	})

	messages := fieldMessages(t, err, "organization_id")
	if len(messages) != 1 || messages[0] != "Organization is not valid" {
		t.Fatalf("unexpected organization errors: %v", messages)
	}
}
