// Package storage is the file sink for uploaded clipboard content.
// Bytes live on disk; the database only stores the returned path.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// DiskStorage writes uploads under root/uploads/<roomID>/ and hands
// back paths relative to root, which is the form clipboard items store.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) *DiskStorage {
	if root == "" {
		panic("storage root cannot be empty for DiskStorage")
	}
	return &DiskStorage{root: root}
}

// Save streams the file to disk under a fresh random name, keeping only
// the original extension, and returns the storage-relative path.
func (s *DiskStorage) Save(roomID uint, originalName string, r io.Reader) (string, error) {
	roomDir := strconv.FormatUint(uint64(roomID), 10)
	dir := filepath.Join(s.root, "uploads", roomDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create upload dir %q: %w", dir, err)
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file %q: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: write file %q: %w", name, err)
	}
	return "/uploads/" + roomDir + "/" + name, nil
}

// RemoveRoomFiles deletes everything a room ever uploaded. Called by
// the cleanup worker after a room is deleted.
func (s *DiskStorage) RemoveRoomFiles(roomID uint) error {
	dir := filepath.Join(s.root, "uploads", strconv.FormatUint(uint64(roomID), 10))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("storage: remove upload dir %q: %w", dir, err)
	}
	return nil
}
