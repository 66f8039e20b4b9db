package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider names a backend for embeddings or answer generation.
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOllama AIProvider = "ollama"
	AIProviderOpenAI AIProvider = "openai"
)

// providerTraits describes what each provider needs and can do.
var providerTraits = map[AIProvider]struct {
	description string
	needsKey    bool
	local       bool
	embeds      bool
}{
	AIProviderGemini: {"Google Gemini (cloud)", true, false, true},
	AIProviderOllama: {"Ollama (local)", false, true, true},
	// OpenAI-compatible embeddings lack document/query task modes.
	AIProviderOpenAI: {"OpenAI-compatible (cloud)", true, false, false},
}

// IsValid reports whether p is a known provider.
func (p AIProvider) IsValid() bool {
	_, ok := providerTraits[p]
	return ok
}

// RequiresAPIKey reports whether p authenticates with an API key.
func (p AIProvider) RequiresAPIKey() bool { return providerTraits[p].needsKey }

// IsLocal reports whether p runs on this machine.
func (p AIProvider) IsLocal() bool { return providerTraits[p].local }

// SupportsEmbeddings reports whether p can serve as the embedding gateway.
func (p AIProvider) SupportsEmbeddings() bool { return providerTraits[p].embeds }

func (p AIProvider) String() string { return string(p) }

// Description is the label shown by 'folio config show'.
func (p AIProvider) Description() string {
	if t, ok := providerTraits[p]; ok {
		return t.description
	}
	return unknownDescription
}

// StorageProvider identifies the durable blob backend.
type StorageProvider string

// Available storage providers.
const (
	// StorageProviderAzure is Azure Blob Storage.
	StorageProviderAzure StorageProvider = "azure"

	// StorageProviderFilesystem is a local directory standing in for blob storage.
	StorageProviderFilesystem StorageProvider = "filesystem"
)

// IsValid returns true if the storage provider is recognised.
func (p StorageProvider) IsValid() bool {
	return p == StorageProviderAzure || p == StorageProviderFilesystem
}

// String returns the string representation.
func (p StorageProvider) String() string {
	return string(p)
}

// EmbeddingSettings configures the embedding gateway. BaseURL applies
// to Ollama and APIKey to Gemini.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether the gateway can be built from e.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.SupportsEmbeddings() && (!e.Provider.RequiresAPIKey() || e.APIKey != "")
}

// LLMSettings configures answer generation.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured reports whether a generator can be built from l.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && (!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// StorageSettings holds durable storage configuration.
type StorageSettings struct {
	// Provider selects the blob backend.
	Provider StorageProvider

	// ConnectionString is the Azure storage connection string.
	ConnectionString string

	// Container is the Azure container name.
	Container string

	// Dir is the root directory for the filesystem provider.
	Dir string
}

// IsConfigured returns true if the storage provider is set up.
func (s StorageSettings) IsConfigured() bool {
	switch s.Provider {
	case StorageProviderAzure:
		return s.ConnectionString != "" && s.Container != ""
	case StorageProviderFilesystem:
		return s.Dir != ""
	default:
		return false
	}
}

// AuthSettings holds token signing configuration.
type AuthSettings struct {
	// SecretKey signs caller tokens.
	SecretKey string

	// Algorithm is the HMAC signing method (HS256, HS384, HS512).
	Algorithm string

	// TokenExpiry is how long an issued token stays valid.
	TokenExpiry time.Duration
}

// CacheSettings holds local knowledge base cache configuration.
type CacheSettings struct {
	// VerifyFreshness compares manifests with durable storage on every load.
	VerifyFreshness bool
}

// Settings holds all application settings.
type Settings struct {
	// DataDir is the root for the database, caches and working directories.
	DataDir string

	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Auth      AuthSettings
	Cache     CacheSettings
}

// Defaults for provider models.
const (
	DefaultGeminiEmbeddingModel = "models/gemini-embedding-001"
	DefaultGeminiLLMModel       = "gemini-2.5-flash"
	DefaultGeminiOpenAIBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultOllamaBaseURL        = "http://localhost:11434"
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
	DefaultOllamaLLMModel       = "llama3.2"
	DefaultContainerName        = "assistants"
	DefaultAlgorithm            = "HS256"
	DefaultTokenExpiry          = 30 * time.Minute
)

// DefaultSettings returns settings with sensible defaults.
// API keys and connection strings are left empty.
func DefaultSettings(dataDir string) Settings {
	return Settings{
		DataDir: dataDir,
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultGeminiEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultGeminiLLMModel,
			BaseURL:  DefaultGeminiOpenAIBaseURL,
		},
		Storage: StorageSettings{
			Provider:  StorageProviderFilesystem,
			Container: DefaultContainerName,
		},
		Auth: AuthSettings{
			Algorithm:   DefaultAlgorithm,
			TokenExpiry: DefaultTokenExpiry,
		},
	}
}
