package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

const fileMode = 0o600

// IdentityFile remembers the signed-in identity in a YAML file.
type IdentityFile struct {
	path string
}

// NewIdentityFile returns a store backed by path. The file and its parent
// directory are created on the first Save.
func NewIdentityFile(path string) *IdentityFile {
	return &IdentityFile{path: path}
}

// DefaultPath is ~/.dailyskills/session.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".dailyskills", "session.yaml"), nil
}

func (f *IdentityFile) Path() string { return f.path }

// Load returns (nil, nil) when nothing has been saved.
func (f *IdentityFile) Load(ctx context.Context) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	var identity domain.Identity
	if err := yaml.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if identity.ID == "" {
		return nil, nil
	}
	return &identity, nil
}

// Save writes identity to the file, readable by the owner only.
func (f *IdentityFile) Save(ctx context.Context, identity *domain.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if identity == nil {
		return f.Clear(ctx)
	}

	data, err := yaml.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// Clear forgets the saved identity. Clearing an absent file is not an error.
func (f *IdentityFile) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", f.path, err)
	}
	return nil
}
