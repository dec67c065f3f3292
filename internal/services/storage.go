package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/utils"
)

// DocumentStorage persists generated document binaries under relative
// keys. The filesystem implementation is the default; the interface
// exists so an object-store backend can slot in behind the same
// orchestration.
type DocumentStorage interface {
	Write(key string, data []byte) error
	Read(key string) ([]byte, error)
	Delete(key string) error
	AbsolutePath(key string) string
}

type localDocumentStorage struct {
	root string
	log  *logger.Logger
}

func NewLocalDocumentStorage(baseLog *logger.Logger) (DocumentStorage, error) {
	serviceLog := baseLog.With("service", "DocumentStorage")
	root := utils.GetEnv("DOCUMENT_STORAGE_ROOT", "./storage/documents", serviceLog)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", root, err)
	}
	return &localDocumentStorage{root: root, log: serviceLog}, nil
}

// resolve joins the key under the root and rejects traversal outside it.
func (ls *localDocumentStorage) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage key %q escapes storage root", key)
	}
	return filepath.Join(ls.root, cleaned), nil
}

func (ls *localDocumentStorage) Write(key string, data []byte) error {
	path, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating storage directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", key, err)
	}
	ls.log.Debug("document written", "key", key, "bytes", len(data))
	return nil
}

func (ls *localDocumentStorage) Read(key string) ([]byte, error) {
	path, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", key, err)
	}
	return data, nil
}

func (ls *localDocumentStorage) Delete(key string) error {
	path, err := ls.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting document %s: %w", key, err)
	}
	return nil
}

func (ls *localDocumentStorage) AbsolutePath(key string) string {
	path, err := ls.resolve(key)
	if err != nil {
		return ""
	}
	return path
}
