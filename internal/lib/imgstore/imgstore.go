package imgstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore хранит изображения товаров в каталоге на диске.
type DiskStore struct {
	dir string
}

func New(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save записывает файл под заданным именем, перезаписывая существующий.
func (s *DiskStore) Save(filename string, data io.Reader) error {
	// имя генерируется сервисом (uuid + расширение), путь наружу не выходит
	path := filepath.Join(s.dir, filepath.Base(filename))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// Remove удаляет файл; отсутствие файла не считается ошибкой.
func (s *DiskStore) Remove(filename string) error {
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}
