package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// runeLen measures text in characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// splitText recursively splits text, falling through to finer separators
// only for pieces that are still too long.
func (p *Processor) splitText(text string, separators []string) []string {
	var final []string

	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, p.mergeSplits(good)...)
			good = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, p.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, p.mergeSplits(good)...)
	}
	return final
}

// splitKeepingSeparator splits text on sep and attaches each separator to the
// start of the piece that follows it. Concatenating the result yields text.
// An empty separator splits into single characters.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, runeLen(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	var pieces []string
	prev, pos := 0, 0
	for {
		i := strings.Index(text[pos:], sep)
		if i < 0 {
			break
		}
		at := pos + i
		if at > prev {
			pieces = append(pieces, text[prev:at])
		}
		prev = at
		pos = at + len(sep)
	}
	if prev < len(text) {
		pieces = append(pieces, text[prev:])
	}
	return pieces
}

// mergeSplits greedily packs pieces into chunks of at most chunkSize
// characters, carrying up to chunkOverlap trailing characters into the
// next chunk. Pieces are joined without a separator since each piece
// already carries its own.
func (p *Processor) mergeSplits(pieces []string) []string {
	var docs []string
	var current []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize {
			if total > p.chunkSize {
				logger.Warn("chunker: created a chunk of size %d, which is longer than the specified %d", total, p.chunkSize)
			}
			if len(current) > 0 {
				if doc := joinPieces(current); doc != "" {
					docs = append(docs, doc)
				}
				for total > p.overlap || (total+n > p.chunkSize && total > 0) {
					total -= runeLen(current[0])
					current = current[1:]
				}
			}
		}
		current = append(current, piece)
		total += n
	}

	if doc := joinPieces(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func joinPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}
