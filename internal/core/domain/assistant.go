package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Assistant defaults applied when a create request leaves a field unset.
const (
	DefaultTemperature  = 0.5
	DefaultTopK         = 5
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50

	// MaxAssistantsPerOwner limits how many assistants one user may own.
	MaxAssistantsPerOwner = 3

	// MaxTemperature is the upper bound accepted by the language model.
	MaxTemperature = 2.0
)

// Assistant is a knowledge base built from one PDF plus its answer settings.
type Assistant struct {
	// ID is assigned by the assistant store. It doubles as the knowledge base id.
	ID int64 `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// FileName is the base name of the uploaded PDF.
	FileName string `json:"file_name"`

	// OwnerID is the id of the creating user.
	OwnerID int64 `json:"owner_id"`

	// Temperature is passed to the language model.
	Temperature float64 `json:"temperature"`

	// TopK is the number of chunks retrieved per query.
	TopK int `json:"top_k"`

	// ChunkSize and ChunkOverlap configure the chunker, in characters.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// QueryCount is the number of answered queries.
	QueryCount int64 `json:"query_count"`

	// CreatedAt is when the row was created.
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeBaseID returns the id namespacing this assistant's artifacts.
func (a *Assistant) KnowledgeBaseID() KnowledgeBaseID {
	return KnowledgeBaseIDFor(a.ID)
}

// AssistantSpec holds the user-supplied settings of a new assistant.
// Zero values are replaced by defaults in ApplyDefaults.
type AssistantSpec struct {
	Name         string
	FileName     string
	Temperature  *float64
	TopK         int
	ChunkSize    int
	ChunkOverlap *int
}

// ApplyDefaults returns an Assistant for owner with defaults filled in.
func (s AssistantSpec) ApplyDefaults(ownerID int64) Assistant {
	a := Assistant{
		Name:         strings.TrimSpace(s.Name),
		FileName:     filepath.Base(s.FileName),
		OwnerID:      ownerID,
		Temperature:  DefaultTemperature,
		TopK:         s.TopK,
		ChunkSize:    s.ChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
	if s.Temperature != nil {
		a.Temperature = *s.Temperature
	}
	if a.TopK == 0 {
		a.TopK = DefaultTopK
	}
	if a.ChunkSize == 0 {
		a.ChunkSize = DefaultChunkSize
	}
	if s.ChunkOverlap != nil {
		a.ChunkOverlap = *s.ChunkOverlap
	}
	return a
}

// Validate checks the assistant settings.
func (a *Assistant) Validate() error {
	if a.Name == "" {
		return NewValidationError("name", "is required")
	}
	if !IsPDFFileName(a.FileName) {
		return ErrUnsupportedType
	}
	if a.Temperature < 0 || a.Temperature > MaxTemperature {
		return NewValidationError("temperature", "must be between 0 and 2")
	}
	if a.TopK < 1 {
		return NewValidationError("top_k", "must be at least 1")
	}
	return ValidateChunking(a.ChunkSize, a.ChunkOverlap)
}

// ValidateChunking checks chunk size and overlap.
// Overlap must be strictly smaller than size.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return NewValidationError("chunk_size", "must be positive")
	}
	if overlap < 0 {
		return NewValidationError("chunk_overlap", "must not be negative")
	}
	if overlap >= size {
		return NewValidationError("chunk_overlap", "must be smaller than chunk_size")
	}
	return nil
}

// IsPDFFileName reports whether name has a .pdf extension.
func IsPDFFileName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Role is the privilege level of a caller.
type Role string

// Available roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Caller is the verified identity performing an operation.
type Caller struct {
	ID   int64
	Role Role
}

// IsAdmin returns true if the caller has admin privileges.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanManage reports whether the caller may modify a's lifecycle.
// Owners and admins may.
func (c Caller) CanManage(a *Assistant) bool {
	return c.IsAdmin() || a.OwnerID == c.ID
}

// Answer is a grounded response with the pages it drew on.
type Answer struct {
	// Response is the model output after math-markup normalisation.
	Response string `json:"response"`

	// Sources are the distinct page numbers of the retrieved chunks, ascending.
	Sources []int `json:"sources"`
}
