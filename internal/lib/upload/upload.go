// Package upload сохраняет загруженные документы заявителя на диск.
// Файлы получают случайные имена, чтобы исключить коллизии и не доверять
// именам из запроса.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Saver сохраняет файлы в заданный каталог.
type Saver struct {
	dir string
}

// New создает каталог для загрузок, если его нет, и возвращает Saver.
func New(dir string) (*Saver, error) {
	const op = "upload.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Saver{dir: dir}, nil
}

// Save записывает файл из multipart-формы на диск и возвращает путь
// к сохранённому файлу. Расширение берётся из исходного имени.
func (s *Saver) Save(fh *multipart.FileHeader) (string, error) {
	const op = "upload.Save"

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = src.Close()
	}()

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}
