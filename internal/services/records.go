package services

import (
	"path"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

// ImageURLPrefix - префикс URL, по которому раздаются изображения.
const ImageURLPrefix = "/uploads/"

// UpsertRecord заменяет запись с тем же VendorName или добавляет новую в конец.
// Возвращает новый список и замененную запись (если она была).
func UpsertRecord(
	records []models.MenuRecord,
	record models.MenuRecord,
) ([]models.MenuRecord, *models.MenuRecord) {
	for i := range records {
		if records[i].VendorName == record.VendorName {
			prev := records[i]
			records[i] = record
			return records, &prev
		}
	}
	return append(records, record), nil
}

// FilterByDate возвращает записи с указанной датой загрузки в исходном порядке.
func FilterByDate(records []models.MenuRecord, date string) []models.MenuRecord {
	result := make([]models.MenuRecord, 0, len(records))
	for _, r := range records {
		if r.UploadDate == date {
			result = append(result, r)
		}
	}
	return result
}

// ImageFileName извлекает имя файла из ImageURL записи.
func ImageFileName(record models.MenuRecord) string {
	if record.ImageURL == "" {
		return ""
	}
	return path.Base(record.ImageURL)
}
