package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const minioNoSuchKey = "NoSuchKey"

var _ FileStorage = (*MinioClient)(nil)

// MinioClient реализует FileStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
	region     string
	logger     *zap.Logger
}

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string // Логин
	SecretAccessKey string // Пароль
	UseSSL          bool   // Использовать SSL (обычно false для локальной разработки)
	BucketName      string // Имя бакета для изображений меню
	Region          string // Регион (не обязательно для MinIO)
}

// NewMinioClient создает новый клиент MinIO.
// Соединение не проверяется: бакет создается при первом вызове EnsureReady.
func NewMinioClient(cfg MinioConfig, logger *zap.Logger) (*MinioClient, error) {
	logger = logger.Named("Minio")
	logger.Info("Инициализация клиента MinIO", zap.String("endpoint", cfg.Endpoint))

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
		region:     cfg.Region,
		logger:     logger,
	}, nil
}

// EnsureReady проверяет существование бакета и создает его при необходимости.
func (c *MinioClient) EnsureReady(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucketName)
	if err != nil {
		return fmt.Errorf("ошибка проверки существования бакета '%s': %w", c.bucketName, err)
	}
	if exists {
		return nil
	}
	c.logger.Info("Бакет не найден, попытка создания...", zap.String("bucket", c.bucketName))
	if err = c.client.MakeBucket(ctx, c.bucketName, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return fmt.Errorf("ошибка создания бакета '%s': %w", c.bucketName, err)
	}
	c.logger.Info("Бакет успешно создан", zap.String("bucket", c.bucketName))
	return nil
}

// UploadFile загружает файл в MinIO.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	uploadInfo, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, opts)
	if err != nil {
		c.logger.Error("Ошибка загрузки файла", zap.String("key", objectKey), zap.Error(err))
		return fmt.Errorf("ошибка загрузки файла в MinIO: %w", err)
	}

	c.logger.Info("Файл успешно загружен",
		zap.String("key", objectKey), zap.Int64("size", uploadInfo.Size), zap.String("etag", uploadInfo.ETag))
	return nil
}

// DownloadFile скачивает файл из MinIO.
// Возвращает io.ReadCloser, который нужно закрыть после использования.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if err := ValidateKey(objectKey); err != nil {
		return nil, err
	}

	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.mapError(objectKey, err)
	}
	// GetObject не обращается к серверу, отсутствие объекта видно только после Stat.
	if _, err = object.Stat(); err != nil {
		_ = object.Close()
		return nil, c.mapError(objectKey, err)
	}
	return object, nil
}

// ListFiles возвращает ключи всех объектов бакета.
func (c *MinioClient) ListFiles(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range c.client.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("ошибка получения списка объектов MinIO: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// DeleteFile удаляет объект из бакета.
func (c *MinioClient) DeleteFile(ctx context.Context, objectKey string) error {
	if err := ValidateKey(objectKey); err != nil {
		return err
	}
	if err := c.client.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return c.mapError(objectKey, err)
	}
	c.logger.Info("Файл удален", zap.String("key", objectKey))
	return nil
}

func (c *MinioClient) mapError(objectKey string, err error) error {
	if minio.ToErrorResponse(err).Code == minioNoSuchKey {
		c.logger.Debug("Файл не найден в бакете", zap.String("key", objectKey))
		return ErrObjectNotFound
	}
	c.logger.Error("Ошибка операции с файлом", zap.String("key", objectKey), zap.Error(err))
	return fmt.Errorf("ошибка операции MinIO с '%s': %w", objectKey, err)
}
