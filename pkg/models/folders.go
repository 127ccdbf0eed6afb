package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRoot is the ComfyUI models tree used on RunPod images.
const DefaultRoot = "/workspace/ComfyUI/models"

// ErrUnknownFolder is returned when a folder key is not part of the map.
var ErrUnknownFolder = errors.New("unknown folder key")

var defaultKeys = []string{
	"checkpoints",
	"loras",
	"vae",
	"controlnet",
	"ipadapter",
	"clip_vision",
	"text_encoders",
	"diffusion_models",
	"unet",
}

// FolderMap maps folder keys to destination directories under a models root.
type FolderMap struct {
	keys []string
	dirs map[string]string
}

// NewFolderMap builds the standard ComfyUI folder map rooted at root.
// Directories are created lazily by Resolve, not here.
func NewFolderMap(root string) *FolderMap {
	m := &FolderMap{
		keys: append([]string(nil), defaultKeys...),
		dirs: make(map[string]string, len(defaultKeys)),
	}
	for _, key := range defaultKeys {
		m.dirs[key] = filepath.Join(root, key)
	}
	return m
}

// Has reports whether key is a known folder key.
func (m *FolderMap) Has(key string) bool {
	_, ok := m.dirs[key]
	return ok
}

// Keys returns the folder keys in declaration order.
func (m *FolderMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Dir returns the directory mapped to key without creating it.
func (m *FolderMap) Dir(key string) string {
	return m.dirs[key]
}

// Resolve returns the directory for key, creating it if needed.
func (m *FolderMap) Resolve(key string) (string, error) {
	dir, ok := m.dirs[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFolder, key)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", dir, err)
	}
	return dir, nil
}
