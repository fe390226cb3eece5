package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/VijayGit-Hub/menu-upload-system/internal/sweeper"
)

const (
	modeProduction  = "production"
	modeDevelopment = "development"

	backendLocal = "local"
	backendMinio = "minio"

	defaultServerPort   = "3000"
	defaultMode         = modeDevelopment
	defaultLogLevel     = "info"
	defaultPinRateLimit = 10
	defaultBackend      = backendLocal

	// Пути хранения в production-режиме.
	productionDataDir = "/var/lib/menu-upload"

	// Переменные окружения.
	envServerPort    = "PORT"
	envMode          = "APP_ENV"
	envDataFile      = "DATA_FILE"
	envUploadsDir    = "UPLOADS_DIR"
	envVendorsFile   = "VENDORS_FILE"
	envSweepInterval = "SWEEP_INTERVAL"
	envPinRateLimit  = "PIN_RATE_LIMIT"
	envLogLevel      = "LOG_LEVEL"
	envBackend       = "STORAGE_BACKEND"

	envMinioEndpoint     = "MINIO_ENDPOINT"
	envMinioUser         = "MINIO_USER"
	envMinioPassword     = "MINIO_PASSWORD" //nolint:gosec // Это имя переменной окружения
	envMinioBucket       = "MINIO_BUCKET"
	envMinioUseSSL       = "MINIO_USE_SSL"
	defaultMinioEndpoint = "localhost:9000"
	defaultMinioUser     = "minioadmin"
	defaultMinioPassword = "minioadmin"
	defaultMinioBucket   = "menu-images"
)

// config хранит конфигурацию сервера.
type config struct {
	Port          string
	Mode          string
	DataFile      string
	UploadsDir    string
	VendorsFile   string
	SweepInterval time.Duration
	PinRateLimit  int
	LogLevel      string
	Backend       string

	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	MinioUseSSL   bool
}

// Production сообщает, запущен ли сервер в production-режиме.
func (c *config) Production() bool {
	return c.Mode == modeProduction
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Приоритет: флаг, затем переменная окружения (в том числе из .env), затем значение по умолчанию.
func parseFlags() (*config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &config{}
	var sweepInterval string
	var pinRateLimit string

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.Mode, "env", "",
		fmt.Sprintf("Режим работы: %s или %s (env: %s)", modeProduction, modeDevelopment, envMode))
	flag.StringVar(&cfg.DataFile, "data-file", "",
		fmt.Sprintf("Путь к JSON-файлу с меню (env: %s)", envDataFile))
	flag.StringVar(&cfg.UploadsDir, "uploads-dir", "",
		fmt.Sprintf("Каталог для изображений меню (env: %s)", envUploadsDir))
	flag.StringVar(&cfg.VendorsFile, "vendors-file", "",
		fmt.Sprintf("YAML-файл со списком поставщиков (env: %s)", envVendorsFile))
	flag.StringVar(&sweepInterval, "sweep-interval", "",
		fmt.Sprintf("Интервал очистки устаревших меню (env: %s, default: %s)", envSweepInterval, sweeper.DefaultInterval))
	flag.StringVar(&pinRateLimit, "pin-rate-limit", "",
		fmt.Sprintf("Попыток проверки PIN в минуту с одного адреса, 0 - без ограничения (env: %s, default: %d)",
			envPinRateLimit, defaultPinRateLimit))
	flag.StringVar(&cfg.LogLevel, "log-level", "",
		fmt.Sprintf("Уровень логирования (env: %s, default: %s)", envLogLevel, defaultLogLevel))
	flag.StringVar(&cfg.Backend, "storage", "",
		fmt.Sprintf("Хранилище изображений: %s или %s (env: %s)", backendLocal, backendMinio, envBackend))

	flag.Parse()

	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.Mode, envMode, defaultMode)
	applyEnv(&cfg.LogLevel, envLogLevel, defaultLogLevel)
	applyEnv(&cfg.Backend, envBackend, defaultBackend)
	applyEnv(&cfg.VendorsFile, envVendorsFile, "")
	applyEnv(&sweepInterval, envSweepInterval, sweeper.DefaultInterval.String())
	applyEnv(&pinRateLimit, envPinRateLimit, strconv.Itoa(defaultPinRateLimit))

	if cfg.Mode != modeProduction && cfg.Mode != modeDevelopment {
		return nil, fmt.Errorf("неизвестный режим работы %q", cfg.Mode)
	}
	if cfg.Backend != backendLocal && cfg.Backend != backendMinio {
		return nil, fmt.Errorf("неизвестное хранилище изображений %q", cfg.Backend)
	}

	baseDir := "."
	if cfg.Production() {
		baseDir = productionDataDir
	}
	applyEnv(&cfg.DataFile, envDataFile, filepath.Join(baseDir, "data", "vendors.json"))
	applyEnv(&cfg.UploadsDir, envUploadsDir, filepath.Join(baseDir, "uploads"))

	interval, err := time.ParseDuration(sweepInterval)
	if err != nil {
		return nil, fmt.Errorf("некорректный интервал очистки %q: %w", sweepInterval, err)
	}
	if interval <= 0 {
		return nil, errors.New("интервал очистки должен быть положительным")
	}
	cfg.SweepInterval = interval

	cfg.PinRateLimit, err = strconv.Atoi(pinRateLimit)
	if err != nil || cfg.PinRateLimit < 0 {
		return nil, fmt.Errorf("некорректный лимит попыток проверки PIN %q", pinRateLimit)
	}

	cfg.MinioEndpoint = getEnv(envMinioEndpoint, defaultMinioEndpoint)
	cfg.MinioUser = getEnv(envMinioUser, defaultMinioUser)
	cfg.MinioPassword = getEnv(envMinioPassword, defaultMinioPassword)
	cfg.MinioBucket = getEnv(envMinioBucket, defaultMinioBucket)
	if useSSL := getEnv(envMinioUseSSL, "false"); useSSL != "" {
		cfg.MinioUseSSL, err = strconv.ParseBool(useSSL)
		if err != nil {
			return nil, fmt.Errorf("некорректное значение %s: %w", envMinioUseSSL, err)
		}
	}

	return cfg, nil
}

// applyEnv заполняет пустое значение из переменной окружения или значением по умолчанию.
func applyEnv(target *string, key, fallback string) {
	if *target != "" {
		return
	}
	*target = getEnv(key, fallback)
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
