// Package pdf extracts page text from PDF files using poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// ToolName is the external binary used for extraction.
const ToolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// pageBreak separates pages in pdftotext output.
const pageBreak = "\f"

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Loader reads PDFs page by page.
type Loader struct {
	runner     CommandRunner
	lookPath   func(string) (string, error)
	keepLayout bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// WithLayout toggles pdftotext's -layout mode (default on).
func WithLayout(keep bool) Option {
	return func(l *Loader) {
		l.keepLayout = keep
	}
}

// New creates a loader that shells out to pdftotext.
func New(opts ...Option) *Loader {
	l := &Loader{
		runner:     execRunner{},
		lookPath:   exec.LookPath,
		keepLayout: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAvailable reports whether pdftotext can be found.
func (l *Loader) CheckAvailable() error {
	if _, err := l.lookPath(ToolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to read PDF files.

Install poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// Load extracts one page per form feed. Blank pages are kept so that
// page numbers match the physical document.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if err := l.CheckAvailable(); err != nil {
		return nil, err
	}

	args := []string{"-enc", "UTF-8"}
	if l.keepLayout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	out, err := l.runner.Run(ctx, ToolName, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	doc := &domain.Document{
		Source: filepath.Base(path),
		Pages:  splitPages(string(out)),
	}
	logger.Debug("loaded %s: %d pages", doc.Source, len(doc.Pages))
	return doc, nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with a form feed, so a trailing empty segment is dropped.
func splitPages(text string) []domain.Page {
	parts := strings.Split(text, pageBreak)
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}

	pages := make([]domain.Page, len(parts))
	for i, p := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: p}
	}
	return pages
}
