// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.folio/config.toml
//   - EnvStore: environment overrides (including .env files) on top of a ConfigStore
//   - PromptStore: user-editable prompt templates at ~/.folio/prompts
package file
