// Package sweeper удаляет устаревшие меню: записи не за сегодня и изображения,
// на которые не ссылается ни одна сегодняшняя запись.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/metrics"
	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
	"github.com/VijayGit-Hub/menu-upload-system/internal/repository"
	"github.com/VijayGit-Hub/menu-upload-system/internal/services"
	"github.com/VijayGit-Hub/menu-upload-system/internal/storage"
)

// Report описывает результат одного запуска очистки.
type Report struct {
	Today          string
	Kept           int
	Discarded      int
	FilesDeleted   int
	DeleteFailures int
	ListFailed     bool
}

// Sweeper выполняет очистку хранилища записей и изображений.
type Sweeper struct {
	repo    repository.MenuRepository
	files   storage.FileStorage
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option настраивает Sweeper.
type Option func(*Sweeper)

// WithClock задает источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithMetrics включает учет запусков очистки.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// New создает Sweeper.
func New(
	repo repository.MenuRepository,
	files storage.FileStorage,
	logger *zap.Logger,
	opts ...Option,
) *Sweeper {
	s := &Sweeper{
		repo:   repo,
		files:  files,
		now:    time.Now,
		logger: logger.Named("Sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Partition делит записи на сегодняшние и все остальные.
func Partition(records []models.MenuRecord, today string) (keep, discard []models.MenuRecord) {
	keep = make([]models.MenuRecord, 0, len(records))
	for _, r := range records {
		if r.UploadDate == today {
			keep = append(keep, r)
		} else {
			discard = append(discard, r)
		}
	}
	return keep, discard
}

// ReferencedFiles возвращает множество имен файлов, на которые ссылаются записи.
func ReferencedFiles(records []models.MenuRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		if name := services.ImageFileName(r); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Sweep выполняет одну очистку. Дата "сегодня" вычисляется один раз на весь запуск.
// Удаление каждого файла выполняется независимо: ошибка одного не прерывает очистку.
// Если список файлов получить не удалось, удаление пропускается, но хранилище
// все равно перезаписывается сегодняшними записями.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	if err := s.files.EnsureReady(ctx); err != nil {
		s.logger.Warn("Не удалось подготовить хранилище изображений", zap.Error(err))
	}

	report := Report{Today: s.now().Format(models.DateLayout)}

	err := s.repo.Update(ctx, func(records []models.MenuRecord) ([]models.MenuRecord, error) {
		keep, discard := Partition(records, report.Today)
		report.Kept, report.Discarded = len(keep), len(discard)

		names, err := s.files.ListFiles(ctx)
		if err != nil {
			report.ListFailed = true
			s.logger.Error("Не удалось получить список изображений, удаление пропущено", zap.Error(err))
			return keep, nil
		}

		referenced := ReferencedFiles(keep)
		for _, name := range names {
			if _, ok := referenced[name]; ok {
				continue
			}
			if delErr := s.files.DeleteFile(ctx, name); delErr != nil && !errors.Is(delErr, storage.ErrObjectNotFound) {
				report.DeleteFailures++
				s.logger.Warn("Не удалось удалить устаревшее изображение",
					zap.String("file", name), zap.Error(delErr))
				continue
			}
			report.FilesDeleted++
		}
		return keep, nil
	})
	s.metrics.SweepRun(err, report.FilesDeleted)
	if err != nil {
		s.logger.Error("Ошибка очистки хранилища", zap.Error(err))
		return report, fmt.Errorf("ошибка очистки хранилища: %w", err)
	}

	s.logger.Info("Очистка завершена",
		zap.String("today", report.Today),
		zap.Int("kept", report.Kept),
		zap.Int("discarded", report.Discarded),
		zap.Int("filesDeleted", report.FilesDeleted),
		zap.Int("deleteFailures", report.DeleteFailures),
		zap.Bool("listFailed", report.ListFailed),
	)
	return report, nil
}
