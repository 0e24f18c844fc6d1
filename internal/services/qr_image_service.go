package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/salespilots/paylock/internal/lock"
	"github.com/salespilots/paylock/internal/storage"
	"github.com/salespilots/paylock/models"
)

// MaxQRImageSize - максимальный размер изображения QR-кода в байтах.
const MaxQRImageSize = 2 << 20

// Допустимые типы изображений и расширения объектов.
var qrImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// QRImageService хранит изображения QR-кодов оплаты в объектном хранилище.
// Ссылка на изображение сохраняется в защищённой конфигурации как поле qrImageBlobRef.
type QRImageService interface {
	Upload(ctx context.Context, configName string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, configName, ref string) (io.ReadCloser, *storage.ObjectInfo, error)
	Delete(ctx context.Context, configName, ref string) error
}

// Убедимся, что qrImageService удовлетворяет интерфейсу QRImageService.
var _ QRImageService = (*qrImageService)(nil)

type qrImageService struct {
	files storage.FileStorage
}

// NewQRImageService создает сервис изображений QR-кодов.
func NewQRImageService(files storage.FileStorage) QRImageService {
	return &qrImageService{files: files}
}

// Upload сохраняет изображение и возвращает ссылку на объект.
func (s *qrImageService) Upload(
	ctx context.Context,
	configName string,
	r io.Reader,
	size int64,
	contentType string,
) (string, error) {
	ext, ok := qrImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if size <= 0 || size > MaxQRImageSize {
		return "", ErrImageTooLarge
	}

	ref := lock.QRImageRefPrefix(configName) + uuid.NewString() + ext
	if err := s.files.UploadFile(ctx, ref, io.LimitReader(r, size), size, contentType); err != nil {
		return "", fmt.Errorf("ошибка загрузки изображения QR-кода: %w", err)
	}

	log.Printf("[QRImageService] Изображение для '%s' сохранено как '%s'", configName, ref)
	return ref, nil
}

// Open открывает изображение конфигурации configName по ссылке.
// Ссылка на объект другой конфигурации считается отсутствующей.
func (s *qrImageService) Open(ctx context.Context, configName, ref string) (io.ReadCloser, *storage.ObjectInfo, error) {
	if !lock.OwnsQRImageRef(configName, ref) {
		return nil, nil, ErrImageNotFound
	}
	body, info, err := s.files.DownloadFile(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrImageNotFound
		}
		return nil, nil, fmt.Errorf("ошибка получения изображения QR-кода: %w", err)
	}
	return body, info, nil
}

// Delete удаляет изображение конфигурации configName; чужие ссылки пропускаются.
func (s *qrImageService) Delete(ctx context.Context, configName, ref string) error {
	if !lock.OwnsQRImageRef(configName, ref) {
		log.Printf("[QRImageService] Ссылка '%s' не принадлежит '%s', удаление пропущено", ref, configName)
		return nil
	}
	return s.files.DeleteFile(ctx, ref)
}

// ResetCleanup возвращает обработчик сброса, удаляющий изображение сброшенной конфигурации.
// Ошибка удаления только логируется: запись уже удалена, а объект без ссылки безвреден.
func ResetCleanup(images QRImageService) lock.ResetHook {
	return func(ctx context.Context, removed *models.ConfigurationRecord) {
		ref, ok := removed.Fields.Get(lock.FieldQRImageBlob)
		if !ok || ref == "" {
			return
		}
		if err := images.Delete(ctx, removed.Name, ref); err != nil {
			log.Printf("[QRImageService] Не удалось удалить изображение '%s' после сброса '%s': %v",
				ref, removed.Name, err)
		}
	}
}

// Кастомные ошибки сервиса изображений.
var (
	ErrUnsupportedImage = errors.New("поддерживаются только изображения PNG, JPEG и WebP")
	ErrImageTooLarge    = errors.New("недопустимый размер изображения")
	ErrImageNotFound    = errors.New("изображение не найдено")
)
