package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// AssistantService manages the assistant lifecycle: admission, ingestion,
// durable upload and deletion.
type AssistantService struct {
	assistants driven.AssistantStore
	builder    driving.Ingestor
	durable    driven.DurableStore
	cache      driving.KnowledgeBaseCache
	workspace  *Workspace
	uploadDir  string
}

// NewAssistantService creates a new assistant service.
// The workspace root must be the builder's working root.
func NewAssistantService(
	assistants driven.AssistantStore,
	builder driving.Ingestor,
	durable driven.DurableStore,
	cache driving.KnowledgeBaseCache,
	workspace *Workspace,
	uploadDir string,
) *AssistantService {
	return &AssistantService{
		assistants: assistants,
		builder:    builder,
		durable:    durable,
		cache:      cache,
		workspace:  workspace,
		uploadDir:  uploadDir,
	}
}

// Create admits a new assistant and starts building its knowledge base.
func (s *AssistantService) Create(
	ctx context.Context,
	caller domain.Caller,
	req driving.CreateAssistantRequest,
) (<-chan domain.ProgressEvent, error) {
	count, err := s.assistants.CountByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("count assistants: %w", err)
	}
	if count >= domain.MaxAssistantsPerOwner {
		return nil, fmt.Errorf("%w: you can only create %d assistants", domain.ErrQuotaExceeded, domain.MaxAssistantsPerOwner)
	}

	assistant := req.Spec.ApplyDefaults(caller.ID)
	if err := assistant.Validate(); err != nil {
		return nil, err
	}
	if req.File == nil {
		return nil, domain.NewValidationError("file", "is required")
	}

	upload, err := s.saveUpload(req.File)
	if err != nil {
		return nil, err
	}

	if err := s.assistants.Create(ctx, &assistant); err != nil {
		removeFile(upload)
		return nil, fmt.Errorf("create assistant: %w", err)
	}

	lease, err := s.workspace.Acquire(assistant.KnowledgeBaseID())
	if err != nil {
		removeFile(upload)
		s.rollback(ctx, &assistant, false)
		return nil, err
	}

	logger.Info("creating assistant %d (%s) for user %d", assistant.ID, assistant.FileName, caller.ID)

	out := make(chan domain.ProgressEvent, 1)
	go s.run(ctx, &assistant, upload, lease, out)
	return out, nil
}

// run drives one ingestion and always ends with exactly one terminal event.
// Cleanup happens before the terminal event is sent.
func (s *AssistantService) run(
	ctx context.Context,
	assistant *domain.Assistant,
	upload string,
	lease *Lease,
	out chan<- domain.ProgressEvent,
) {
	defer close(out)

	emit := func(ev domain.ProgressEvent) error {
		select {
		case out <- ev:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("ingestion cancelled: %w", ctx.Err())
		}
	}

	outputDir, uploaded, err := s.build(ctx, assistant, upload, emit)

	lease.Release()
	if outputDir != "" && outputDir != lease.Dir() {
		if rmErr := os.RemoveAll(outputDir); rmErr != nil {
			logger.Warn("failed to remove %s: %v", outputDir, rmErr)
		}
	}
	removeFile(upload)

	if err != nil {
		logger.Error("assistant %d failed: %v", assistant.ID, err)
		s.rollback(ctx, assistant, uploaded)
		out <- domain.ErrorEvent(err)
		return
	}

	logger.Info("assistant %d ready", assistant.ID)
	out <- domain.ProgressEvent{
		Status:      domain.StatusComplete,
		Message:     domain.MessageComplete,
		AssistantID: assistant.ID,
	}
}

// build forwards builder progress, then uploads the artifacts.
// uploaded reports whether durable storage may hold partial artifacts.
func (s *AssistantService) build(
	ctx context.Context,
	assistant *domain.Assistant,
	upload string,
	emit func(domain.ProgressEvent) error,
) (outputDir string, uploaded bool, err error) {
	events := s.builder.Ingest(ctx, driving.IngestRequest{
		FilePath:        upload,
		KnowledgeBaseID: assistant.KnowledgeBaseID(),
		ChunkSize:       assistant.ChunkSize,
		ChunkOverlap:    assistant.ChunkOverlap,
	})

	// The builder stream is drained to the end even after a failure.
	for ev := range events {
		switch ev.Status {
		case domain.StatusIngestionComplete:
			outputDir = ev.OutputDir
		case domain.StatusError:
			if err == nil {
				err = errors.New(ev.Message)
			}
		default:
			if err != nil {
				continue
			}
			if emitErr := emit(ev); emitErr != nil {
				err = emitErr
			}
		}
	}
	if err != nil {
		return outputDir, false, err
	}
	if outputDir == "" {
		return "", false, errors.New("ingestion failed to produce output")
	}

	if err := emit(domain.ProgressEvent{Status: domain.StatusUploading, Message: domain.MessageUploading}); err != nil {
		return outputDir, false, err
	}
	if err := s.durable.Upload(ctx, assistant.KnowledgeBaseID(), outputDir); err != nil {
		return outputDir, true, fmt.Errorf("upload knowledge base: %w", err)
	}
	return outputDir, true, nil
}

// rollback removes a failed assistant so it does not count against the quota.
func (s *AssistantService) rollback(ctx context.Context, assistant *domain.Assistant, uploaded bool) {
	ctx = context.WithoutCancel(ctx)
	if uploaded {
		s.durable.DeleteAll(ctx, assistant.KnowledgeBaseID())
	}
	if err := s.assistants.Delete(ctx, assistant.ID); err != nil {
		logger.Warn("failed to remove assistant %d: %v", assistant.ID, err)
	}
}

// List returns the caller's assistants.
func (s *AssistantService) List(ctx context.Context, caller domain.Caller) ([]domain.Assistant, error) {
	return s.assistants.ListByOwner(ctx, caller.ID)
}

// Get returns one of the caller's assistants.
func (s *AssistantService) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.Assistant, error) {
	return s.assistants.GetOwned(ctx, id, caller.ID)
}

// Delete removes an assistant, its durable artifacts and local copies.
// Durable deletion is best-effort.
func (s *AssistantService) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	assistant, err := s.assistants.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("assistant %d: %w", id, err)
	}
	if !caller.CanManage(assistant) {
		return fmt.Errorf("%w: not authorized to delete assistant %d", domain.ErrUnauthorized, id)
	}

	kbID := assistant.KnowledgeBaseID()
	if s.workspace.InFlight(kbID) {
		return fmt.Errorf("%w: assistant %d", domain.ErrIngestionInProgress, id)
	}

	if !s.durable.DeleteAll(ctx, kbID) {
		logger.Warn("durable artifacts of assistant %d may remain", id)
	}
	if err := s.cache.Evict(kbID); err != nil {
		logger.Warn("failed to evict assistant %d: %v", id, err)
	}
	if err := os.RemoveAll(s.workspace.Dir(kbID)); err != nil {
		logger.Warn("failed to remove working directory of assistant %d: %v", id, err)
	}

	if err := s.assistants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assistant %d: %w", id, err)
	}
	logger.Info("deleted assistant %d", id)
	return nil
}

// saveUpload copies the PDF into the upload directory under a unique name.
func (s *AssistantService) saveUpload(r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o700); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+".pdf")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		removeFile(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		removeFile(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove %s: %v", path, err)
	}
}
