package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore keeps processed images on local disk under rootPath. Files are
// served back at baseURL/<publicID>.jpg.
type MediaStore struct {
	rootPath string
	baseURL  string
}

// NewMediaStore creates the root directory if needed.
func NewMediaStore(rootPath, baseURL string) (*MediaStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create media root %s: %w", rootPath, err)
	}
	return &MediaStore{rootPath: rootPath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory files are written to.
func (s *MediaStore) Root() string {
	return s.rootPath
}

// Save writes data as <publicID>.jpg and returns its public URL. Writes go
// through a temp file so readers never see a partial image.
func (s *MediaStore) Save(ctx context.Context, publicID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := fileName(publicID)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.rootPath, name)
	tmp, err := os.CreateTemp(s.rootPath, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage: chmod file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("storage: rename file: %w", err)
	}
	return s.URL(publicID), nil
}

// URL returns the public address of publicID.
func (s *MediaStore) URL(publicID string) string {
	return s.baseURL + "/" + publicID + ".jpg"
}

// PublicID returns the id of an image URL issued by this store. URLs that
// point elsewhere report false.
func (s *MediaStore) PublicID(imageURL string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(imageURL, prefix) || !strings.HasSuffix(imageURL, ".jpg") {
		return "", false
	}
	publicID := strings.TrimSuffix(strings.TrimPrefix(imageURL, prefix), ".jpg")
	if _, err := fileName(publicID); err != nil {
		return "", false
	}
	return publicID, true
}

// Delete removes the file for publicID; a missing file is not an error.
func (s *MediaStore) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := fileName(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.rootPath, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

func fileName(publicID string) (string, error) {
	if publicID == "" || strings.ContainsAny(publicID, `/\`) || strings.Contains(publicID, "..") {
		return "", errors.New("storage: invalid public id")
	}
	return publicID + ".jpg", nil
}
