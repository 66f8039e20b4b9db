// Package mathmarkup normalises mathematical notation in model output so it
// renders with a single pair of delimiters: $..$ inline and $$..$$ display.
//
// Text is first classified into tagged spans, then only math spans written
// with other delimiters are rewritten. Code, plain text and spans that are
// already delimited with dollars pass through byte for byte, which makes
// Normalize idempotent.
package mathmarkup

import (
	"regexp"
	"strings"
)

// SpanKind tags a span of text.
type SpanKind int

// Span kinds.
const (
	// PlainSpan is ordinary prose.
	PlainSpan SpanKind = iota

	// MathSpan is a formula, whatever its delimiters.
	MathSpan

	// CodeSpan is inline code or a fenced block.
	CodeSpan
)

// String returns the kind name.
func (k SpanKind) String() string {
	switch k {
	case MathSpan:
		return "math"
	case CodeSpan:
		return "code"
	default:
		return "plain"
	}
}

// Delimiters recognised by the classifier.
const (
	DelimNone         = ""
	DelimDollar       = "$"
	DelimDoubleDollar = "$$"
	DelimParen        = `\(`
	DelimBracket      = `\[`
	DelimBacktick     = "`"
	DelimFence        = "```"
)

// Span is a classified piece of text.
// Concatenating Raw over all spans reproduces the input exactly.
type Span struct {
	Kind SpanKind

	// Raw is the original text including delimiters.
	Raw string

	// Body is the text between the delimiters.
	Body string

	// Delim is the opening delimiter, DelimNone for plain text.
	Delim string
}

// Display reports whether the span is display (block) math.
func (s Span) Display() bool {
	return s.Delim == DelimDoubleDollar || s.Delim == DelimBracket
}

// Classify splits text into plain, math and code spans.
func Classify(text string) []Span {
	var spans []Span
	plainStart := 0

	flush := func(end int) {
		if end > plainStart {
			spans = append(spans, Span{Kind: PlainSpan, Raw: text[plainStart:end], Body: text[plainStart:end]})
		}
	}

	i := 0
	for i < len(text) {
		span, n := scanDelimited(text, i)
		if n == 0 {
			i = skipUnmatched(text, i)
			continue
		}
		flush(i)
		spans = append(spans, span)
		i += n
		plainStart = i
	}
	flush(len(text))
	return spans
}

// skipUnmatched advances past text[i] when no span starts there. An
// unmatched backtick run is skipped whole so no later scan starts inside it,
// and a run of two or more makes the rest of its line plain text.
func skipUnmatched(text string, i int) int {
	if text[i] != '`' {
		return i + 1
	}
	end := i
	for end < len(text) && text[end] == '`' {
		end++
	}
	if end-i == 1 {
		return end
	}
	if nl := strings.IndexByte(text[end:], '\n'); nl >= 0 {
		return end + nl
	}
	return len(text)
}

// scanDelimited recognises a delimited span starting at i.
// Returns the number of bytes consumed, zero if none starts here.
func scanDelimited(text string, i int) (Span, int) {
	rest := text[i:]

	switch {
	case strings.HasPrefix(rest, `\$`):
		return Span{}, 0
	case strings.HasPrefix(rest, "$$"):
		return enclosed(rest, DelimDoubleDollar, "$$", MathSpan, false)
	case strings.HasPrefix(rest, "$"):
		if i > 0 && text[i-1] == '\\' {
			return Span{}, 0
		}
		return enclosed(rest, DelimDollar, "$", MathSpan, true)
	case strings.HasPrefix(rest, `\(`):
		return enclosed(rest, DelimParen, `\)`, MathSpan, false)
	case strings.HasPrefix(rest, `\[`):
		return enclosed(rest, DelimBracket, `\]`, MathSpan, false)
	case strings.HasPrefix(rest, "`"):
		return scanBackticks(rest)
	}
	return Span{}, 0
}

// enclosed matches open ... close. Single-line spans stop at a newline.
func enclosed(rest, open, closing string, kind SpanKind, singleLine bool) (Span, int) {
	body := rest[len(open):]
	end := strings.Index(body, closing)
	if end <= 0 {
		return Span{}, 0
	}
	if singleLine && strings.Contains(body[:end], "\n") {
		return Span{}, 0
	}
	n := len(open) + end + len(closing)
	return Span{Kind: kind, Raw: rest[:n], Body: body[:end], Delim: open}, n
}

// scanBackticks matches a run of backticks closed by a run of the same length.
// Runs of three or more are fenced code; single backticks are classified by content.
func scanBackticks(rest string) (Span, int) {
	run := 0
	for run < len(rest) && rest[run] == '`' {
		run++
	}
	fence := strings.Repeat("`", run)

	search := run
	for {
		idx := strings.Index(rest[search:], fence)
		if idx < 0 {
			return Span{}, 0
		}
		start := search + idx
		end := start + run
		if end < len(rest) && rest[end] == '`' {
			// Longer run; skip past it.
			for end < len(rest) && rest[end] == '`' {
				end++
			}
			search = end
			continue
		}
		body := rest[run:start]
		span := Span{Kind: CodeSpan, Raw: rest[:end], Body: body, Delim: DelimBacktick}
		if run >= 3 {
			span.Delim = DelimFence
		} else if run == 1 && isMathLike(body) {
			span.Kind = MathSpan
		}
		return span, end
	}
}

var (
	snakeCase      = regexp.MustCompile(`[A-Za-z]{2,}_[A-Za-z]{2,}`)
	memberAccess   = regexp.MustCompile(`[A-Za-z_)\]]\.[A-Za-z_]`)
	shellFlag      = regexp.MustCompile(`^--?[A-Za-z]`)
	markupTag      = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	namedCall      = regexp.MustCompile(`([A-Za-z]{2,})\(`)
	singleLetter   = regexp.MustCompile(`^[A-Za-z]$`)
	subscriptVar   = regexp.MustCompile(`^[A-Za-z]_(\d+|[A-Za-z]|\{[^{}]+\})$`)
	functionCall   = regexp.MustCompile(`^([A-Za-z]+)\(([^()]+)\)$`)
	spacedMinus    = regexp.MustCompile(`\s-\s`)
	codeSubstrings = []string{";", `"`, "'", "::", "->", ":=", "=>", "==", "!=", "++", "--", "+=", "-=", "&&", "||", "://", `:\`, "()", "$"}
	mathOperators  = []string{"=", "+", "^", "<", ">", "*", "/", `\`, "≤", "≥", "±", "×", "÷", "√", "∑", "∫", "≠", "≈", "∞"}
)

// mathFunctions are multi-letter names treated as math when called.
var mathFunctions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true, "tanh": true,
	"log": true, "ln": true, "exp": true, "sqrt": true, "det": true, "lim": true,
	"max": true, "min": true, "gcd": true, "lcm": true,
}

// isMathLike decides whether an inline code span holds a formula.
func isMathLike(body string) bool {
	s := strings.TrimSpace(body)
	if s == "" || looksLikeCode(s) {
		return false
	}

	hasOperator := containsAny(s, mathOperators) || spacedMinus.MatchString(s)
	if strings.ContainsAny(s, " \t\n") && !hasOperator {
		return false
	}
	if hasOperator {
		return true
	}
	if singleLetter.MatchString(s) || subscriptVar.MatchString(s) {
		return true
	}
	if m := functionCall.FindStringSubmatch(s); m != nil {
		return len(m[1]) == 1 || mathFunctions[m[1]]
	}
	return false
}

func looksLikeCode(s string) bool {
	if containsAny(s, codeSubstrings) {
		return true
	}
	if snakeCase.MatchString(s) || memberAccess.MatchString(s) || shellFlag.MatchString(s) || markupTag.MatchString(s) {
		return true
	}
	for _, m := range namedCall.FindAllStringSubmatch(s, -1) {
		if !mathFunctions[m[1]] {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Normalize rewrites \(..\) to $..$, \[..\] to $$..$$ and math-like inline
// code to $..$. Everything else is returned unchanged.
func Normalize(text string) string {
	spans := Classify(text)

	var b strings.Builder
	b.Grow(len(text))
	for i, span := range spans {
		b.WriteString(rewrite(span, adjacentDollar(spans, i)))
	}
	return b.String()
}

func rewrite(span Span, nearDollar bool) string {
	if span.Kind != MathSpan || nearDollar || strings.ContainsAny(span.Body, "$`") {
		return span.Raw
	}
	if strings.TrimSpace(span.Body) == "" {
		return span.Raw
	}
	switch span.Delim {
	case DelimParen:
		return "$" + strings.TrimSpace(span.Body) + "$"
	case DelimBracket:
		return "$$" + span.Body + "$$"
	case DelimBacktick:
		return "$" + strings.TrimSpace(span.Body) + "$"
	default:
		return span.Raw
	}
}

// adjacentDollar reports whether a neighbouring span touches span i with a
// dollar sign or another formula, which would merge delimiters after rewriting.
func adjacentDollar(spans []Span, i int) bool {
	if i > 0 && (spans[i-1].Kind == MathSpan || strings.HasSuffix(spans[i-1].Raw, "$")) {
		return true
	}
	if i+1 < len(spans) && (spans[i+1].Kind == MathSpan || strings.HasPrefix(spans[i+1].Raw, "$")) {
		return true
	}
	return false
}
