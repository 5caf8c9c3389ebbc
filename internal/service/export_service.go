package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"andromeda/internal/models"
	"andromeda/internal/repository"
	"andromeda/internal/utils"
)

// Верхняя граница выгрузки, чтобы не вычитывать таблицу целиком без лимита
const exportMaxRows = 10000

type ExportService interface {
	Export(ctx context.Context, format string, filters repository.DataRequestFilters) (string, error)
}

type exportService struct {
	repo      repository.DataRequestRepository
	outputDir string
}

func NewExportService(repo repository.DataRequestRepository, outputDir string) ExportService {
	if outputDir == "" {
		outputDir = "./data/exports"
	}

	// Создаем директорию если не существует
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Failed to create export directory: %v", err)
	}

	return &exportService{
		repo:      repo,
		outputDir: outputDir,
	}
}

// Export выгружает отфильтрованный листинг в csv или xlsx и
// возвращает путь к готовому файлу
func (s *exportService) Export(ctx context.Context, format string, filters repository.DataRequestFilters) (string, error) {
	filters.Offset = 0
	filters.Limit = exportMaxRows

	requests, _, err := s.repo.List(ctx, filters)
	if err != nil {
		return "", fmt.Errorf("failed to load data requests for export: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case "xlsx":
		path := filepath.Join(s.outputDir, fmt.Sprintf("data_requests_%s.xlsx", timestamp))
		if err := utils.CreateExcelFile(path, requests); err != nil {
			return "", fmt.Errorf("failed to save Excel: %w", err)
		}
		log.Printf("Exported %d data requests to %s", len(requests), path)
		return path, nil
	case "", "csv":
		path := filepath.Join(s.outputDir, fmt.Sprintf("data_requests_%s.csv", timestamp))
		if err := s.saveToCSV(path, requests); err != nil {
			return "", fmt.Errorf("failed to save CSV: %w", err)
		}
		log.Printf("Exported %d data requests to %s", len(requests), path)
		return path, nil
	default:
		return "", newValidationError("format", "Format must be csv or xlsx")
	}
}

func (s *exportService) saveToCSV(path string, requests []models.DataRequest) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "title", "description", "organization_id", "user_id", "open_time", "closed", "close_time", "accepted_dataset_id", "status"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, dr := range requests {
		row := []string{
			dr.ID.String(),
			dr.Title,
			dr.Description,
			strOrEmpty(dr.OrganizationID),
			dr.UserID,
			dr.OpenTime.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%t", dr.Closed),
			timeOrEmpty(dr.CloseTime),
			strOrEmpty(dr.AcceptedDatasetID),
			dr.Status,
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
