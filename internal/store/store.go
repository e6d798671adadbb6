// Package store provides registry persistence drivers. Every driver moves
// the whole operator document at once; there is no partial update path.
package store

import (
	"errors"
	"fmt"
	"strings"

	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

// ErrUnavailable marks transient backend failures (network, locked database).
// Callers treat the in-memory document as authoritative and retry on the
// next write.
var ErrUnavailable = errors.New("store: backend unavailable")

// Open builds the backend selected by cfg.Driver. Unknown drivers fail fast
// at startup rather than at the first save.
func Open(cfg config.StorageConfig, log logx.Logger) (registry.Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "file":
		path := cfg.Path
		if path == "" {
			path = "data.json"
		}
		return NewFile(path, log), nil
	case "bin":
		return NewBin(cfg.Bin, log)
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("store: sqlite driver requires storage.path")
		}
		return NewSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
