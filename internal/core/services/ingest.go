package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/postprocessors"
)

// Ensure IndexBuilder implements the interface.
var _ driving.Ingestor = (*IndexBuilder)(nil)

// IndexBuilder turns a PDF into a vector index plus chunk artifacts
// in a local working directory.
type IndexBuilder struct {
	loader     driven.DocumentLoader
	registry   *postprocessors.Registry
	processors []string
	embedder   driven.EmbeddingService
	indexes    driven.VectorIndexStore
	workRoot   string
	now        func() time.Time
}

// NewIndexBuilder creates an index builder writing under workRoot.
// The registry must provide the processors named in postprocessors.IngestProcessors.
func NewIndexBuilder(
	loader driven.DocumentLoader,
	registry *postprocessors.Registry,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexStore,
	workRoot string,
) *IndexBuilder {
	return &IndexBuilder{
		loader:     loader,
		registry:   registry,
		processors: postprocessors.IngestProcessors,
		embedder:   embedder,
		indexes:    indexes,
		workRoot:   workRoot,
		now:        time.Now,
	}
}

// Ingest starts a run and returns its progress stream.
// Consumers read until the channel is closed; cancelling ctx shortens the run.
func (b *IndexBuilder) Ingest(ctx context.Context, req driving.IngestRequest) <-chan domain.ProgressEvent {
	out := make(chan domain.ProgressEvent, 1)

	go func() {
		defer close(out)

		emit := func(ev domain.ProgressEvent) error {
			select {
			case out <- ev:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("ingestion cancelled: %w", ctx.Err())
			}
		}

		dir, err := b.build(ctx, req, emit)
		if err != nil {
			logger.Error("ingestion of %s failed: %v", req.KnowledgeBaseID, err)
			out <- domain.ErrorEvent(err)
			return
		}
		out <- domain.ProgressEvent{Status: domain.StatusIngestionComplete, OutputDir: dir}
	}()

	return out
}

func (b *IndexBuilder) build(ctx context.Context, req driving.IngestRequest, emit func(domain.ProgressEvent) error) (string, error) {
	id, err := domain.ParseKnowledgeBaseID(req.KnowledgeBaseID.String())
	if err != nil {
		return "", err
	}
	if err := domain.ValidateChunking(req.ChunkSize, req.ChunkOverlap); err != nil {
		return "", err
	}

	dir := filepath.Join(b.workRoot, id.String())
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("reset working directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}

	if err := emit(domain.StartingEvent()); err != nil {
		return "", err
	}

	logger.Section("Ingesting " + filepath.Base(req.FilePath))

	doc, err := b.loader.Load(ctx, req.FilePath)
	if err != nil {
		return "", fmt.Errorf("load pdf: %w", err)
	}
	if len(doc.NonEmptyPages()) == 0 {
		return "", fmt.Errorf("no text found in PDF: %w", domain.ErrEmptyDocument)
	}
	logger.Debug("loaded %d pages from %s", len(doc.Pages), doc.Source)

	pipeline, err := b.registry.BuildPipeline(b.processors, postprocessors.ChunkingConfig(req.ChunkSize, req.ChunkOverlap))
	if err != nil {
		return "", fmt.Errorf("build pipeline: %w", err)
	}
	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("no text found in PDF: %w", domain.ErrEmptyDocument)
	}
	logger.Info("split %s into %d chunks", doc.Source, len(chunks))

	index, err := b.embed(ctx, chunks, emit)
	if err != nil {
		return "", err
	}
	defer index.Close()

	if err := b.persist(id, dir, index, chunks); err != nil {
		return "", err
	}
	return dir, nil
}

// embed embeds chunks in sequential batches, reporting progress before each one.
func (b *IndexBuilder) embed(ctx context.Context, chunks []domain.Chunk, emit func(domain.ProgressEvent) error) (driven.VectorIndex, error) {
	index := b.indexes.New(b.embedder)
	total := len(chunks)

	for start := 0; start < total; start += domain.EmbeddingBatchSize {
		if err := ctx.Err(); err != nil {
			index.Close()
			return nil, fmt.Errorf("ingestion cancelled: %w", err)
		}

		end := min(start+domain.EmbeddingBatchSize, total)
		if err := emit(domain.ProcessingEvent(domain.ProgressPercent(end, total))); err != nil {
			index.Close()
			return nil, err
		}

		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			index.Close()
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start+1, end, err)
		}
		if err := index.Add(ctx, batch, vectors); err != nil {
			index.Close()
			return nil, fmt.Errorf("index chunks %d-%d: %w", start+1, end, err)
		}
		logger.Debug("embedded %d/%d chunks", end, total)
	}
	return index, nil
}

// persist writes the index, chunk artifacts and manifest into dir.
func (b *IndexBuilder) persist(id domain.KnowledgeBaseID, dir string, index driven.VectorIndex, chunks []domain.Chunk) error {
	if err := index.Save(filepath.Join(dir, domain.IndexDirName)); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	texts := make([]string, len(chunks))
	metadata := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
		metadata[i] = c.Metadata
	}
	if err := writeJSON(filepath.Join(dir, domain.ChunksFileName), texts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, domain.MetadataFileName), metadata); err != nil {
		return err
	}

	hash, err := ContentHash(dir)
	if err != nil {
		return err
	}
	manifest := domain.Manifest{
		KnowledgeBaseID: id,
		Chunks:          len(chunks),
		Dimensions:      index.Dimensions(),
		EmbeddingModel:  b.embedder.ModelName(),
		ContentHash:     hash,
		BuiltAt:         b.now().UTC(),
	}
	return writeJSON(filepath.Join(dir, domain.ManifestFileName), manifest)
}

// ContentHash returns a hex SHA-256 over every artifact under dir except
// the manifest. Paths are hashed along with contents, in lexical order.
func ContentHash(dir string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == domain.ManifestFileName {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, _ = io.WriteString(h, rel)
		_, _ = h.Write([]byte{0})
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("hash artifacts: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadManifest reads the manifest stored in dir.
func ReadManifest(dir string) (*domain.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, domain.ManifestFileName))
	if err != nil {
		return nil, err
	}
	return decodeManifest(data)
}

func decodeManifest(data []byte) (*domain.Manifest, error) {
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
