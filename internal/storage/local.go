package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	uploadsDirPerm  = 0o755
	uploadsFilePerm = 0o644
)

var _ FileStorage = (*LocalStorage)(nil)

// LocalStorage хранит изображения в каталоге на диске.
type LocalStorage struct {
	dir    string
	logger *zap.Logger
}

// NewLocalStorage создает хранилище в каталоге dir.
func NewLocalStorage(dir string, logger *zap.Logger) *LocalStorage {
	return &LocalStorage{dir: dir, logger: logger.Named("LocalStorage")}
}

// Dir возвращает каталог хранилища.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// EnsureReady создает каталог хранилища.
func (s *LocalStorage) EnsureReady(_ context.Context) error {
	if err := os.MkdirAll(s.dir, uploadsDirPerm); err != nil {
		return fmt.Errorf("ошибка создания каталога загрузок: %w", err)
	}
	return nil
}

// UploadFile записывает файл на диск. Частично записанный файл удаляется.
func (s *LocalStorage) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	_ int64,
	_ string,
) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}

	path := filepath.Join(s.dir, objectKey)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, uploadsFilePerm)
	if err != nil {
		return fmt.Errorf("ошибка создания файла '%s': %w", objectKey, err)
	}

	written, err := io.Copy(f, reader)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("Не удалось удалить частично записанный файл",
				zap.String("key", objectKey), zap.Error(rmErr))
		}
		return fmt.Errorf("ошибка записи файла '%s': %w", objectKey, err)
	}

	s.logger.Info("Файл сохранен", zap.String("key", objectKey), zap.Int64("size", written))
	return nil
}

// DownloadFile открывает файл для чтения. Файл нужно закрыть после использования.
func (s *LocalStorage) DownloadFile(_ context.Context, objectKey string) (io.ReadCloser, error) {
	if err := ValidateKey(objectKey); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, objectKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", objectKey, err)
	}
	return f, nil
}

// ListFiles возвращает имена всех обычных файлов каталога, кроме скрытых.
func (s *LocalStorage) ListFiles(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога загрузок: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// DeleteFile удаляет файл.
func (s *LocalStorage) DeleteFile(_ context.Context, objectKey string) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, objectKey)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("ошибка удаления файла '%s': %w", objectKey, err)
	}
	s.logger.Info("Файл удален", zap.String("key", objectKey))
	return nil
}
