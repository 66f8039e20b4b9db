package file

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure EnvStore implements the interface.
var _ driven.ConfigStore = (*EnvStore)(nil)

// EnvBindings maps config keys to the environment variables that override them.
var EnvBindings = map[string]string{
	"data_dir":                  "FOLIO_DATA_DIR",
	"embedding.provider":        "FOLIO_EMBEDDING_PROVIDER",
	"embedding.api_key":         "GOOGLE_API_KEY",
	"llm.provider":              "FOLIO_LLM_PROVIDER",
	"llm.base_url":              "FOLIO_LLM_BASE_URL",
	"llm.model":                 "FOLIO_LLM_MODEL",
	"llm.api_key":               "GOOGLE_API_KEY",
	"storage.provider":          "FOLIO_STORAGE_PROVIDER",
	"storage.dir":               "FOLIO_STORAGE_DIR",
	"storage.connection_string": "AZURE_STORAGE_CONNECTION_STRING",
	"storage.container":         "AZURE_CONTAINER_NAME",
	"auth.secret_key":           "SECRET_KEY",
	"auth.algorithm":            "ALGORITHM",
	"auth.token_expire_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
	"cache.verify_freshness":    "FOLIO_VERIFY_FRESHNESS",
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		logger.Debug("loaded environment from %s", p)
	}
	return nil
}

// EnvStore overlays environment variables on a base config store.
// Reads consult the environment first; writes go to the base store only,
// so secrets supplied through the environment are never persisted.
type EnvStore struct {
	base     driven.ConfigStore
	lookup   func(string) (string, bool)
	bindings map[string]string
}

// NewEnvStore wraps base with the process environment.
func NewEnvStore(base driven.ConfigStore) *EnvStore {
	return NewEnvStoreWithLookup(base, os.LookupEnv)
}

// NewEnvStoreWithLookup wraps base with a custom variable lookup.
func NewEnvStoreWithLookup(base driven.ConfigStore, lookup func(string) (string, bool)) *EnvStore {
	return &EnvStore{base: base, lookup: lookup, bindings: EnvBindings}
}

func (s *EnvStore) env(key string) (string, bool) {
	name, ok := s.bindings[key]
	if !ok {
		return "", false
	}
	val, ok := s.lookup(name)
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return strings.TrimSpace(val), true
}

// Get returns the environment value if bound and set, else the base value.
func (s *EnvStore) Get(key string) (any, bool) {
	if val, ok := s.env(key); ok {
		return val, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *EnvStore) GetString(key string) string {
	if val, ok := s.env(key); ok {
		return val
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
// Unparseable environment values fall back to the base store.
func (s *EnvStore) GetInt(key string) int {
	if val, ok := s.env(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		logger.Warn("ignoring non-integer %s=%q", s.bindings[key], val)
	}
	return s.base.GetInt(key)
}

// GetBool retrieves a boolean configuration value.
func (s *EnvStore) GetBool(key string) bool {
	if val, ok := s.env(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
		logger.Warn("ignoring non-boolean %s=%q", s.bindings[key], val)
	}
	return s.base.GetBool(key)
}

// Set writes to the base store.
func (s *EnvStore) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Path returns the base store path.
func (s *EnvStore) Path() string {
	return s.base.Path()
}
