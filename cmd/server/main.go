package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/handlers"
	"github.com/VijayGit-Hub/menu-upload-system/internal/logger"
	"github.com/VijayGit-Hub/menu-upload-system/internal/metrics"
	appmiddleware "github.com/VijayGit-Hub/menu-upload-system/internal/middleware"
	"github.com/VijayGit-Hub/menu-upload-system/internal/repository"
	"github.com/VijayGit-Hub/menu-upload-system/internal/services"
	"github.com/VijayGit-Hub/menu-upload-system/internal/storage"
	"github.com/VijayGit-Hub/menu-upload-system/internal/sweeper"
	"github.com/VijayGit-Hub/menu-upload-system/internal/vendors"
	"github.com/VijayGit-Hub/menu-upload-system/web"
)

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	fileStorage  storage.FileStorage
	scheduler    *sweeper.Scheduler
	metrics      *metrics.Metrics
	pinThrottle  *appmiddleware.PinThrottle
	pinHandler   *handlers.PinHandler
	menuHandler  *handlers.MenuHandler
	imageHandler *handlers.ImageHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	l, err := logger.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	l.Info("Запуск сервера меню...",
		zap.String("mode", cfg.Mode),
		zap.String("dataFile", cfg.DataFile),
		zap.String("uploadsDir", cfg.UploadsDir),
		zap.String("storage", cfg.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(cfg, l)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}

	// Первая очистка выполняется до приема запросов
	if err = deps.scheduler.Start(ctx); err != nil {
		return err
	}
	defer deps.scheduler.Stop()

	r := setupRouter(deps)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("HTTP-сервер запущен", zap.String("addr", server.Addr))
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}
	return nil
}

// newFileStorage создает хранилище изображений выбранного типа.
var newFileStorage = func(cfg *config, l *zap.Logger) (storage.FileStorage, error) {
	if cfg.Backend == backendMinio {
		return storage.NewMinioClient(storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
		}, l)
	}
	return storage.NewLocalStorage(cfg.UploadsDir, l), nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(cfg *config, l *zap.Logger) (*dependencies, error) {
	deps := &dependencies{metrics: metrics.New()}

	// 1. Справочник поставщиков
	directory := vendors.Default()
	if cfg.VendorsFile != "" {
		var err error
		directory, err = vendors.LoadFile(cfg.VendorsFile)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки справочника поставщиков: %w", err)
		}
	}
	l.Info("Справочник поставщиков загружен", zap.Int("vendors", directory.Len()))

	// 2. Хранилище записей
	repo, err := repository.NewJSONMenuRepository(cfg.DataFile, l)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища меню: %w", err)
	}

	// 3. Хранилище изображений
	deps.fileStorage, err = newFileStorage(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации хранилища изображений: %w", err)
	}

	// 4. Сервисы и очистка
	pinService := services.NewPinService(directory)
	menuService := services.NewMenuService(repo, deps.fileStorage, directory, l)

	sw := sweeper.New(repo, deps.fileStorage, l, sweeper.WithMetrics(deps.metrics))
	deps.scheduler, err = sweeper.NewScheduler(sw, cfg.SweepInterval, l)
	if err != nil {
		return nil, err
	}

	// 5. Обработчики
	deps.pinThrottle = appmiddleware.NewPinThrottle(cfg.PinRateLimit, l)
	deps.pinHandler = handlers.NewPinHandler(pinService, deps.metrics, l)
	deps.menuHandler = handlers.NewMenuHandler(menuService, deps.metrics, l)
	deps.imageHandler = handlers.NewImageHandler(deps.fileStorage, l)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.Metrics(deps.metrics))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})
	r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())

	// Страницы
	r.Get("/", web.Page("user.html"))
	r.Get("/vendor", web.Page("index.html"))

	// API
	r.With(deps.pinThrottle.Handler).Post("/verify-pin", deps.pinHandler.VerifyPin)
	r.Post("/upload", deps.menuHandler.Upload)
	r.Get("/api/menus", deps.menuHandler.ListToday)
	r.Get("/uploads/{filename}", deps.imageHandler.Serve)

	return r
}
