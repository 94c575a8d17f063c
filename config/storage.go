package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageBackend selects where the session is persisted between runs.
type StorageBackend string

const (
	// StorageBackendFile stores the session in a local JSON file (default).
	StorageBackendFile StorageBackend = "file"
	// StorageBackendRedis stores the session in Redis.
	StorageBackendRedis StorageBackend = "redis"
	// StorageBackendPostgres stores the session in a Postgres table.
	StorageBackendPostgres StorageBackend = "postgres"
	// StorageBackendMemory keeps the session in process memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := StorageBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StorageBackendFile, StorageBackendRedis, StorageBackendPostgres, StorageBackendMemory:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: file, redis, postgres, memory)", string(text))
	}
}

// StorageConfig controls session persistence.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"file"`

	// FilePath is the session file used by the file backend.
	// Defaults to <user config dir>/catalog-admin/session.json.
	FilePath string `env:"FILE_PATH"`

	// KeyPrefix namespaces keys in the redis and postgres backends,
	// so several profiles can share one server.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"catalog-admin:"`
}

// Sanitize fills in the default session file location.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendFile
	}
	s.FilePath = strings.TrimSpace(s.FilePath)
	if s.FilePath == "" {
		s.FilePath = defaultSessionFile()
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".catalog-admin", "session.json")
	}
	return filepath.Join(dir, "catalog-admin", "session.json")
}
