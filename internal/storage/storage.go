package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// FileStorage определяет интерфейс хранилища изображений меню.
// Ключ объекта - имя файла без каталогов.
type FileStorage interface {
	// EnsureReady создает каталог (или бакет), если он отсутствует. Повторный вызов безопасен.
	EnsureReady(ctx context.Context) error
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
	ListFiles(ctx context.Context) ([]string, error)
	DeleteFile(ctx context.Context, objectKey string) error
}

// ValidateKey проверяет, что ключ является простым именем файла.
func ValidateKey(objectKey string) error {
	if objectKey == "" || objectKey == "." || objectKey == ".." ||
		strings.ContainsAny(objectKey, `/\`) || filepath.Base(objectKey) != objectKey {
		return ErrInvalidKey
	}
	return nil
}

// Кастомные ошибки хранилища.
var (
	ErrObjectNotFound = errors.New("объект не найден в хранилище")
	ErrInvalidKey     = errors.New("недопустимое имя объекта")
)
