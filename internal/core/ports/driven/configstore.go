package driven

// ConfigStore holds Folio settings under dotted keys such as
// "llm.provider" or "storage.container". Typed getters return the zero
// value for missing or mistyped keys; SettingsService applies defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set persists value under key. A nil value removes the key.
	Set(key string, value any) error

	// Path is the backing file.
	Path() string
}
