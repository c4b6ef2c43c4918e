package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fjod/storefront/internal/domain"
)

// FileStore keeps the cart as a pretty-printed JSON document on disk.
// Writes go to a temp file in the same directory which is then renamed over
// the old one, so a reader sees either the old or the new record.
type FileStore struct {
	path string
	mu   sync.Mutex // serializes writers; readers rely on rename
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("cart file path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("load cart", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, unavailable("read cart file", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, unavailable("decode cart file", err)
	}
	return normalize(&cart), nil
}

func (s *FileStore) Save(ctx context.Context, cart *domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return unavailable("save cart", err)
	}

	data, err := json.MarshalIndent(normalize(cart.Clone()), "", "  ")
	if err != nil {
		return unavailable("encode cart", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*.tmp")
	if err != nil {
		return unavailable("create temp file", err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmpName)
		return unavailable("write cart file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return unavailable("replace cart file", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
