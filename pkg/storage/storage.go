package storage

import (
	"fmt"
	"os"
)

type Storage struct{}

// SaveFile replaces the whole content of filePath in one write.
// The parent directory must already exist.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file %s: %w", filePath, err)
	}

	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	return data, nil
}
