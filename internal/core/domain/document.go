package domain

import "strings"

// Metadata keys carried by every chunk.
const (
	// MetaPage is the 1-based page number the chunk was cut from.
	MetaPage = "page"

	// MetaSource is the base name of the uploaded file.
	MetaSource = "source"
)

// Page is the extracted text of one PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}

// IsBlank reports whether the page holds no visible text.
func (p Page) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// Document is a loaded PDF before chunking.
type Document struct {
	// Source is the base name of the file the pages came from.
	Source string

	// Pages are the extracted pages in order.
	Pages []Page
}

// NonEmptyPages returns the pages that contain visible text.
func (d *Document) NonEmptyPages() []Page {
	pages := make([]Page, 0, len(d.Pages))
	for _, p := range d.Pages {
		if !p.IsBlank() {
			pages = append(pages, p)
		}
	}
	return pages
}

// Chunk is a contiguous piece of one page's text.
// Chunks are the unit of embedding and retrieval.
type Chunk struct {
	// Content is the chunk text. Never empty after trimming.
	Content string

	// Metadata always carries MetaPage and MetaSource.
	Metadata map[string]any
}

// Page returns the page number recorded in the chunk metadata.
// Numeric types produced by JSON decoding are accepted.
func (c Chunk) Page() (int, bool) {
	return PageFromMetadata(c.Metadata)
}

// PageFromMetadata extracts the page number from chunk metadata.
func PageFromMetadata(meta map[string]any) (int, bool) {
	switch v := meta[MetaPage].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
