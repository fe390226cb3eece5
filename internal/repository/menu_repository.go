package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
	// lockRetryDelay - интервал между попытками захвата файловой блокировки.
	lockRetryDelay = 50 * time.Millisecond
)

// UpdateFunc получает текущий список записей и возвращает новый список для сохранения.
// Если функция возвращает ошибку, хранилище не изменяется.
type UpdateFunc func(records []models.MenuRecord) ([]models.MenuRecord, error)

// MenuRepository определяет методы для работы с хранилищем записей меню.
type MenuRepository interface {
	Load(ctx context.Context) ([]models.MenuRecord, error)
	Save(ctx context.Context, records []models.MenuRecord) error
	// Update выполняет чтение-изменение-запись под эксклюзивной блокировкой.
	Update(ctx context.Context, fn UpdateFunc) error
}

var _ MenuRepository = (*jsonMenuRepository)(nil)

// jsonMenuRepository хранит все записи в одном JSON-файле.
type jsonMenuRepository struct {
	path   string
	mu     sync.Mutex   // Блокировка внутри процесса
	lock   *flock.Flock // Блокировка между процессами (<path>.lock)
	logger *zap.Logger
}

// NewJSONMenuRepository создает репозиторий и файл хранилища ("[]"), если он отсутствует.
func NewJSONMenuRepository(path string, logger *zap.Logger) (MenuRepository, error) {
	r := &jsonMenuRepository{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.Named("MenuRepo"),
	}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

// init создает каталог и пустой файл хранилища. Повторный вызов безопасен.
func (r *jsonMenuRepository) init() error {
	if err := os.MkdirAll(filepath.Dir(r.path), dirPerm); err != nil {
		return fmt.Errorf("ошибка создания каталога данных: %w", err)
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка проверки файла хранилища: %w", err)
	}
	if err := r.write([]models.MenuRecord{}); err != nil {
		return err
	}
	r.logger.Info("Создан пустой файл хранилища", zap.String("path", r.path))
	return nil
}

// Load читает все записи из файла хранилища.
func (r *jsonMenuRepository) Load(ctx context.Context) ([]models.MenuRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.read()
}

// Save полностью перезаписывает файл хранилища.
func (r *jsonMenuRepository) Save(ctx context.Context, records []models.MenuRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withFileLock(ctx, func() error {
		return r.write(records)
	})
}

// Update читает записи, применяет fn и сохраняет результат, удерживая блокировку
// на все время операции.
func (r *jsonMenuRepository) Update(ctx context.Context, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withFileLock(ctx, func() error {
		records, err := r.read()
		if err != nil {
			return err
		}
		updated, err := fn(records)
		if err != nil {
			return err
		}
		return r.write(updated)
	})
}

func (r *jsonMenuRepository) withFileLock(ctx context.Context, fn func() error) error {
	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("ошибка блокировки файла хранилища: %w", err)
	}
	if !locked {
		return ErrStoreLocked
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			r.logger.Warn("Ошибка снятия блокировки файла хранилища", zap.Error(unlockErr))
		}
	}()
	return fn()
}

func (r *jsonMenuRepository) read() ([]models.MenuRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла хранилища: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.MenuRecord{}, nil
	}
	var records []models.MenuRecord
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
	}
	if records == nil {
		records = []models.MenuRecord{}
	}
	return records, nil
}

// write сохраняет записи во временный файл рядом с хранилищем и переименовывает его.
func (r *jsonMenuRepository) write(records []models.MenuRecord) error {
	if records == nil {
		records = []models.MenuRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации записей: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(r.path)+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	cleanup := func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			r.logger.Warn("Не удалось удалить временный файл", zap.String("path", tmpPath), zap.Error(rmErr))
		}
	}

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("ошибка синхронизации временного файла: %w", err)
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Rename(tmpPath, r.path); err != nil {
		cleanup()
		return fmt.Errorf("ошибка замены файла хранилища: %w", err)
	}

	r.logger.Debug("Хранилище сохранено", zap.Int("records", len(records)))
	return nil
}

// Кастомные ошибки репозитория.
var (
	ErrCorruptStore = errors.New("файл хранилища поврежден")
	ErrStoreLocked  = errors.New("файл хранилища заблокирован")
)
