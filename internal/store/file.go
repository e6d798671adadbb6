package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

// File keeps the document in a single local JSON file. Writes go through a
// temp file plus rename so a crash mid-write never leaves a torn document.
type File struct {
	path string
	log  logx.Logger
}

func NewFile(path string, log logx.Logger) *File {
	return &File{path: path, log: log}
}

func (f *File) Load(ctx context.Context) (registry.Document, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		doc := registry.NewDocument()
		if serr := f.Save(ctx, doc); serr != nil {
			return registry.Document{}, serr
		}
		f.log.Info("created empty registry file", logx.String("path", f.path))
		return doc, nil
	}
	if err != nil {
		return registry.Document{}, fmt.Errorf("store: read %s: %w", f.path, err)
	}

	var doc registry.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return registry.Document{}, fmt.Errorf("store: decode %s: %w", f.path, err)
	}
	if doc.Users == nil {
		doc.Users = map[string]registry.Operator{}
	}
	return doc, nil
}

func (f *File) Save(ctx context.Context, doc registry.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode registry: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
