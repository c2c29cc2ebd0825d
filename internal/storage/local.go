package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// LocalStorage хранит изображения на диске. Ключ вида "<userID>/<file>".
type LocalStorage struct {
	rootPath       string
	publicPrefix   string
	maxUploadBytes int64
}

// NewLocalStorage создаёт файловое хранилище. publicPrefix это URL-путь,
// по которому роутер раздаёт rootPath.
func NewLocalStorage(rootPath, publicPrefix string, maxUploadMB int64) (*LocalStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &LocalStorage{
		rootPath:       rootPath,
		publicPrefix:   strings.TrimRight(publicPrefix, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root каталог с файлами.
func (s *LocalStorage) Root() string { return s.rootPath }

// Save сохраняет файл через временный файл и rename.
func (s *LocalStorage) Save(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	fileName := objectName(originalName, contentType)
	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, tooLarge(s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(userID.String(), fileName), written, nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл не ошибка.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return s.publicPrefix + "/" + strings.TrimLeft(key, "/")
}

// resolve не даёт ключу выйти за пределы rootPath.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("storage: недопустимый ключ %q", key)
	}
	return filepath.Join(s.rootPath, clean), nil
}

// objectName "<unixnano>_<имя>" с расширением по типу содержимого.
func objectName(originalName, contentType string) string {
	safe := sanitizeFilename(originalName)
	base := strings.TrimSuffix(safe, filepath.Ext(safe))
	ext := extensionFor(contentType, filepath.Ext(safe))
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "_" {
		name = "image"
	}
	return name
}

func tooLarge(limit int64) error {
	return apperror.Validation(fmt.Sprintf("File exceeds the %d MB limit", limit/(1024*1024)))
}

var _ repository.ImageStorage = (*LocalStorage)(nil)
