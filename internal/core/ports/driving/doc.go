// Package driving declares what the CLI, the chat view and the MCP server
// may ask of Folio:
//
//   - AssistantService: create, list, inspect and delete assistants
//   - Ingestor: build a knowledge base from a PDF with a progress stream
//   - Responder: answer a question from an assistant's knowledge base
//   - KnowledgeBaseCache: load and evict local knowledge base copies
//   - SettingsService: resolve, save and check configuration
//
// internal/core/services implements every interface here.
package driving
