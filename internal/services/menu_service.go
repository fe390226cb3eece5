package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
	"github.com/VijayGit-Hub/menu-upload-system/internal/repository"
	"github.com/VijayGit-Hub/menu-upload-system/internal/storage"
)

// UploadInput описывает загружаемое изображение меню.
type UploadInput struct {
	VendorName  string
	Filename    string // Исходное имя файла у клиента
	ContentType string // Заявленный клиентом тип содержимого
	Size        int64
	Body        io.Reader
}

// UploadResult - результат успешной загрузки.
type UploadResult struct {
	FileName string
	Record   models.MenuRecord
}

// MenuService определяет интерфейс работы с меню поставщиков.
type MenuService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	ListToday(ctx context.Context) ([]models.MenuRecord, error)
}

// Option настраивает menuService.
type Option func(*menuService)

// WithClock задает источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *menuService) { s.now = now }
}

var _ MenuService = (*menuService)(nil)

type menuService struct {
	repo    repository.MenuRepository
	files   storage.FileStorage
	vendors VendorDirectory
	now     func() time.Time
	logger  *zap.Logger
}

// NewMenuService создает сервис меню.
func NewMenuService(
	repo repository.MenuRepository,
	files storage.FileStorage,
	vendors VendorDirectory,
	logger *zap.Logger,
	opts ...Option,
) MenuService {
	s := &menuService{
		repo:    repo,
		files:   files,
		vendors: vendors,
		now:     time.Now,
		logger:  logger.Named("MenuService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload проверяет файл, сохраняет его и обновляет запись поставщика.
// Запись файла, проверка поставщика и обновление хранилища выполняются под
// блокировкой хранилища, поэтому очистка не может удалить только что загруженный файл.
func (s *menuService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Body == nil {
		return nil, ErrNoFile
	}
	if in.Size > MaxUploadSize {
		s.logger.Info("Файл превышает допустимый размер",
			zap.String("filename", in.Filename), zap.Int64("size", in.Size))
		return nil, ErrFileTooLarge
	}
	if !CheckFileType(in.Filename, in.ContentType) {
		s.logger.Info("Недопустимый тип файла",
			zap.String("filename", in.Filename), zap.String("contentType", in.ContentType))
		return nil, ErrImagesOnly
	}

	now := s.now()
	fileName := StoredFileName(in.Filename, now)
	record := models.MenuRecord{
		VendorName: in.VendorName,
		ImageURL:   ImageURLPrefix + fileName,
		UploadTime: now.Format(models.TimeLayout),
		UploadDate: now.Format(models.DateLayout),
	}

	var (
		stored   bool
		previous *models.MenuRecord
	)
	err := s.repo.Update(ctx, func(records []models.MenuRecord) ([]models.MenuRecord, error) {
		if err := s.files.UploadFile(ctx, fileName, in.Body, in.Size, in.ContentType); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreFile, err)
		}
		stored = true

		vendor, ok := s.vendors.ByName(in.VendorName)
		if !ok {
			return nil, ErrUnauthorizedVendor
		}
		record.VendorID = vendor.ID

		var updated []models.MenuRecord
		updated, previous = UpsertRecord(records, record)
		return updated, nil
	})
	if err != nil {
		if stored {
			s.discardFile(ctx, fileName)
		}
		switch {
		case errors.Is(err, ErrUnauthorizedVendor):
			s.logger.Warn("Загрузка от неавторизованного поставщика", zap.String("vendor", in.VendorName))
			return nil, err
		case errors.Is(err, ErrStoreFile):
			s.logger.Error("Ошибка сохранения файла", zap.String("file", fileName), zap.Error(err))
			return nil, err
		default:
			s.logger.Error("Ошибка сохранения данных поставщика",
				zap.String("vendor", in.VendorName), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	}

	if previous != nil {
		if prevFile := ImageFileName(*previous); prevFile != "" && prevFile != fileName {
			s.discardFile(ctx, prevFile)
		}
	}

	s.logger.Info("Меню загружено",
		zap.String("vendor", record.VendorName), zap.String("file", fileName), zap.String("date", record.UploadDate))
	return &UploadResult{FileName: fileName, Record: record}, nil
}

// ListToday возвращает записи, загруженные сегодня, в порядке хранилища.
func (s *menuService) ListToday(ctx context.Context) ([]models.MenuRecord, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("Ошибка чтения хранилища меню", zap.Error(err))
		return nil, fmt.Errorf("ошибка получения меню: %w", err)
	}
	return FilterByDate(records, s.now().Format(models.DateLayout)), nil
}

// discardFile удаляет файл, который больше не нужен. Ошибка только логируется:
// оставшийся файл удалит очистка.
func (s *menuService) discardFile(ctx context.Context, fileName string) {
	if err := s.files.DeleteFile(ctx, fileName); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("Не удалось удалить файл", zap.String("file", fileName), zap.Error(err))
	}
}

// Кастомные ошибки сервиса.
var (
	ErrNoFile             = errors.New("файл не выбран")
	ErrFileTooLarge       = errors.New("файл превышает допустимый размер")
	ErrImagesOnly         = errors.New("допускаются только изображения")
	ErrUnauthorizedVendor = errors.New("поставщик не авторизован")
	ErrStoreFile          = errors.New("ошибка сохранения файла")
	ErrSaveFailed         = errors.New("ошибка сохранения данных поставщика")
)
