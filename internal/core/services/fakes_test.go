package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// fakeLoader returns fixed pages for any path.
type fakeLoader struct {
	pages []domain.Page
	err   error
}

func (l *fakeLoader) Load(_ context.Context, path string) (*domain.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	pages := make([]domain.Page, len(l.pages))
	copy(pages, l.pages)
	return &domain.Document{Source: "book.pdf", Pages: pages}, nil
}

func (l *fakeLoader) CheckAvailable() error { return nil }

func numberedPages(n int) []domain.Page {
	pages := make([]domain.Page, n)
	for i := range pages {
		pages[i] = domain.Page{Number: i + 1, Text: fmt.Sprintf("Page %d text", i+1)}
	}
	return pages
}

// fakeEmbedder maps keywords onto vector axes.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failOn    int
	onCall    func(call int)
	docCalls  int
	queryMode []string
}

var embedAxes = []string{"alpha", "beta", "gamma"}

func keywordVector(text string) []float32 {
	vec := make([]float32, len(embedAxes))
	lower := strings.ToLower(text)
	for i, kw := range embedAxes {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec
}

func (e *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.docCalls++
	call := e.calls
	e.mu.Unlock()

	if e.onCall != nil {
		e.onCall(call)
	}
	if e.failOn == call {
		return nil, fmt.Errorf("%w: quota", domain.ErrEmbeddingProvider)
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = keywordVector(t)
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.queryMode = append(e.queryMode, text)
	e.mu.Unlock()
	return keywordVector(text), nil
}

func (e *fakeEmbedder) Dimensions() int            { return len(embedAxes) }
func (e *fakeEmbedder) ModelName() string          { return "fake-embed" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error               { return nil }

// fakeLLM records prompts and replies with a fixed answer.
type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	temps   []float64
}

func (l *fakeLLM) Generate(_ context.Context, req driven.GenerationRequest) (string, error) {
	l.prompts = append(l.prompts, req.Prompt)
	l.temps = append(l.temps, req.Temperature)
	return l.reply, l.err
}

func (l *fakeLLM) ModelName() string          { return "fake-llm" }
func (l *fakeLLM) Ping(context.Context) error { return nil }
func (l *fakeLLM) Close() error               { return nil }

// fakePrompts serves one template.
type fakePrompts struct {
	template string
}

func (p *fakePrompts) Load(string) (string, error) { return p.template, nil }

// countingDurable wraps a durable store and counts calls.
type countingDurable struct {
	driven.DurableStore

	mu        sync.Mutex
	uploads   int
	downloads int
	fetches   int
	deletes   int
	uploadErr error
}

func (d *countingDurable) Upload(ctx context.Context, id domain.KnowledgeBaseID, dir string) error {
	d.mu.Lock()
	d.uploads++
	d.mu.Unlock()
	if d.uploadErr != nil {
		return d.uploadErr
	}
	return d.DurableStore.Upload(ctx, id, dir)
}

func (d *countingDurable) Download(ctx context.Context, id domain.KnowledgeBaseID, dir string) error {
	d.mu.Lock()
	d.downloads++
	d.mu.Unlock()
	return d.DurableStore.Download(ctx, id, dir)
}

func (d *countingDurable) Fetch(ctx context.Context, id domain.KnowledgeBaseID, name string) ([]byte, error) {
	d.mu.Lock()
	d.fetches++
	d.mu.Unlock()
	return d.DurableStore.Fetch(ctx, id, name)
}

func (d *countingDurable) DeleteAll(ctx context.Context, id domain.KnowledgeBaseID) bool {
	d.mu.Lock()
	d.deletes++
	d.mu.Unlock()
	return d.DurableStore.DeleteAll(ctx, id)
}

func (d *countingDurable) downloadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.downloads
}

// collect drains a progress stream.
func collect(ch <-chan domain.ProgressEvent) []domain.ProgressEvent {
	var events []domain.ProgressEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func statuses(events []domain.ProgressEvent) []domain.ProgressStatus {
	out := make([]domain.ProgressStatus, len(events))
	for i, ev := range events {
		out[i] = ev.Status
	}
	return out
}

var errBoom = errors.New("boom")
