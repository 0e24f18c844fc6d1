package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStorage определяет интерфейс объектного хранилища для изображений QR-кодов.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectInfo, error)
	DeleteFile(ctx context.Context, objectKey string) error
}

// ObjectInfo - метаданные объекта, нужные для отдачи клиенту.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// MinioClient реализует FileStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// Убедимся, что MinioClient удовлетворяет интерфейсу FileStorage.
var _ FileStorage = (*MinioClient)(nil)

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string // Бакет для изображений QR-кодов
	Region          string
}

// NewMinioClient создает клиент MinIO и при необходимости создаёт бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	log.Printf("Инициализация клиента MinIO для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		log.Printf("Бакет '%s' не найден, попытка создания...", cfg.BucketName)
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
		log.Printf("Бакет '%s' успешно создан.", cfg.BucketName)
	}

	log.Printf("Клиент MinIO успешно инициализирован для бакета '%s'.", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
	}, nil
}

// UploadFile загружает изображение в MinIO.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	uploadInfo, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		log.Printf("[Minio] Ошибка загрузки объекта '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка загрузки файла в MinIO: %w", err)
	}

	log.Printf("[Minio] Объект '%s' загружен, размер: %d, ETag: %s", objectKey, uploadInfo.Size, uploadInfo.ETag)
	return nil
}

// DownloadFile возвращает содержимое объекта и его метаданные.
// Возвращённый io.ReadCloser нужно закрыть после использования.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectInfo, error) {
	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, c.mapError(objectKey, err)
	}

	// GetObject ленивый: отсутствие объекта обнаруживается только при Stat/Read
	stat, err := object.Stat()
	if err != nil {
		_ = object.Close()
		return nil, nil, c.mapError(objectKey, err)
	}

	return object, &ObjectInfo{Size: stat.Size, ContentType: stat.ContentType}, nil
}

// DeleteFile удаляет объект. Удаление отсутствующего объекта не является ошибкой.
func (c *MinioClient) DeleteFile(ctx context.Context, objectKey string) error {
	if err := c.client.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("[Minio] Ошибка удаления объекта '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка удаления файла из MinIO: %w", err)
	}
	log.Printf("[Minio] Объект '%s' удалён из бакета '%s'", objectKey, c.bucketName)
	return nil
}

func (c *MinioClient) mapError(objectKey string, err error) error {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
		log.Printf("[Minio] Объект '%s' не найден в бакете '%s'", objectKey, c.bucketName)
		return ErrObjectNotFound
	}
	log.Printf("[Minio] Ошибка получения объекта '%s': %v", objectKey, err)
	return fmt.Errorf("ошибка получения файла из MinIO: %w", err)
}
