// Package persistence writes and reads the files kept next to the database:
// uploaded documents and generated ontologies.
package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phuslu/log"
)

// SaveFile creates (or truncates) filePath and streams its content through
// write. It creates necessary directories if they don't exist. The write is
// not atomic; a failure can leave a truncated file behind.
func SaveFile(filePath string, write func(w io.Writer) error) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(filePath) // #nosec G304 -- filePath is built from configured directories
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", filePath).Msg("failed to close file")
		}
	}()

	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush file %s: %w", filePath, err)
	}
	return nil
}

// SaveBytes writes data to filePath, replacing any previous content.
func SaveBytes(filePath string, data []byte) error {
	return SaveFile(filePath, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadBytes reads the whole file at filePath. If the file does not exist, it
// returns os.ErrNotExist so callers can tell a missing file from a broken one.
func LoadBytes(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is built from configured directories
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// Exists reports whether a regular file exists at filePath.
func Exists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.Mode().IsRegular()
}
