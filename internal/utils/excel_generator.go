package utils

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"andromeda/internal/models"
)

const sheetName = "DataRequests"

// CreateExcelFile создает Excel файл с выгрузкой запросов данных
func CreateExcelFile(filepath string, requests []models.DataRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Устанавливаем заголовки
	headers := []string{"ID", "Title", "Description", "Organization", "Requester", "Opened At", "Closed", "Closed At", "Accepted Dataset", "Status"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, "A1", "J1", headerStyle)

	// Заполняем данные
	for rowIdx, dr := range requests {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), dr.ID.String())
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), dr.Title)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), dr.Description)
		if dr.OrganizationID != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), *dr.OrganizationID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), dr.UserID)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum),
			dr.OpenTime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), dr.Closed)
		if dr.CloseTime != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum),
				dr.CloseTime.Format("2006-01-02 15:04:05"))
		}
		if dr.AcceptedDatasetID != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowNum), *dr.AcceptedDatasetID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowNum), dr.Status)
	}

	// Авто-ширина колонок
	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	// Подсвечиваем закрытые запросы
	closedRule := []excelize.ConditionalFormatOptions{
		{
			Type:     "cell",
			Criteria: "==",
			Value:    "TRUE",
			Format:   getConditionalFormatStyle(f, "#CCFFCC"),
		},
	}
	if err := f.SetConditionalFormat(sheetName, "G2:G10001", closedRule); err != nil {
		return err
	}

	createInfoSheet(f, requests)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(filepath); err != nil {
		return err
	}

	return nil
}

func getConditionalFormatStyle(f *excelize.File, color string) *int {
	style, _ := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	return &style
}

// Информационный лист со сводкой по выгрузке
func createInfoSheet(f *excelize.File, requests []models.DataRequest) {
	const info = "Info"

	if _, err := f.NewSheet(info); err != nil {
		return
	}

	open := 0
	closed := 0
	for _, dr := range requests {
		if dr.Closed {
			closed++
		} else {
			open++
		}
	}

	f.SetCellValue(info, "A1", "Generated At")
	f.SetCellValue(info, "B1", time.Now().UTC().Format("2006-01-02 15:04:05"))
	f.SetCellValue(info, "A2", "Total Requests")
	f.SetCellValue(info, "B2", len(requests))
	f.SetCellValue(info, "A3", "Open")
	f.SetCellValue(info, "B3", open)
	f.SetCellValue(info, "A4", "Closed")
	f.SetCellValue(info, "B4", closed)

	f.SetColWidth(info, "A", "B", 20)
}
