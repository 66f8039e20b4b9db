// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Extracts page text from a PDF
//   - EmbeddingService: Embeds chunks (document mode) and questions (query mode)
//   - VectorIndexStore: Creates, saves and loads vector indexes
//   - ObjectStore: Flat blob storage primitives
//   - DurableStore: Knowledge-base scoped upload, download and delete
//   - AssistantStore: Assistant persistence
//   - LLMService: Answer generation
//   - ConfigStore, PromptStore: Configuration and prompt templates
//
// # Optional Interfaces
//
//   - IdentityProvider: Token issue and verification for outer surfaces
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
