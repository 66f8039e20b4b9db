// Package cleaner normalises extracted PDF page text before chunking.
package cleaner

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	hyphenBreak   = regexp.MustCompile(`(\p{L})-\n(\p{Ll})`)
)

// Processor cleans page text and drops blank pages.
// It implements the PostProcessor interface. It rewrites doc.Pages and
// passes chunks through unchanged.
type Processor struct {
	joinHyphenated bool
}

// Option configures the cleaner.
type Option func(*Processor)

// WithJoinHyphenated controls whether words hyphenated across a line break
// are rejoined. Enabled by default.
func WithJoinHyphenated(join bool) Option {
	return func(p *Processor) {
		p.joinHyphenated = join
	}
}

// New creates a cleaner.
func New(opts ...Option) *Processor {
	p := &Processor{joinHyphenated: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "cleaner"
}

// Process cleans every page and keeps only those with visible text.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	pages := make([]domain.Page, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		page.Text = p.Clean(page.Text)
		if !page.IsBlank() {
			pages = append(pages, page)
		}
	}
	doc.Pages = pages
	return chunks, nil
}

// Clean normalises line endings, removes control characters and trailing
// spaces, and optionally rejoins hyphenated words.
func (p *Processor) Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, text)
	text = trailingSpace.ReplaceAllString(text, "\n")
	if p.joinHyphenated {
		text = hyphenBreak.ReplaceAllString(text, "$1$2")
	}
	return text
}
