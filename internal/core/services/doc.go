// Package services implements the driving port interfaces.
// Services contain the knowledge base lifecycle: ingestion, durable
// upload, cache materialisation and retrieval-augmented answers.
// They orchestrate calls to driven ports (adapters).
package services
