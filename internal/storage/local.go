package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images under dir and serves them at prefix.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &LocalStore{dir: dir, prefix: "/" + strings.Trim(prefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Prefix() string {
	return s.prefix
}

func (s *LocalStore) Save(_ context.Context, data []byte) (string, bool, error) {
	name := ObjectName(data)
	ref := s.prefix + "/" + name
	dst := filepath.Join(s.dir, name)

	if _, err := os.Stat(dst); err == nil {
		return ref, false, nil
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", false, fmt.Errorf("create temp image failed: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", false, fmt.Errorf("write image failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", false, fmt.Errorf("close image failed: %w", err)
	}

	// Link fails if a concurrent request already published the same object.
	if err := os.Link(tmpName, dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ref, false, nil
		}
		return "", false, fmt.Errorf("publish image failed: %w", err)
	}
	return ref, true, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, s.prefix+"/")
	if name == ref || name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image failed: %w", err)
	}
	return nil
}
