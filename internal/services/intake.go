package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxUploadSize - максимальный размер изображения меню в байтах.
	MaxUploadSize = 10_000_000
	// UploadFieldName - имя поля формы с изображением, а также префикс имени файла.
	UploadFieldName = "menuImage"
)

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// CheckFileType проверяет расширение файла и заявленный тип содержимого.
// Оба признака должны указывать на допустимое изображение.
func CheckFileType(filename, contentType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return false
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	_, ok := allowedContentTypes[mediaType]
	return ok
}

// StoredFileName формирует уникальное имя файла: <поле>-<миллисекунды><расширение исходного файла>.
func StoredFileName(original string, now time.Time) string {
	return fmt.Sprintf("%s-%d%s", UploadFieldName, now.UnixMilli(), filepath.Ext(original))
}
