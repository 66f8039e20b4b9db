package mathmarkup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Rewrites(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inline paren", `Area is \(x^2\) units`, "Area is $x^2$ units"},
		{"inline paren trimmed", `So \( a + b \) holds`, "So $a + b$ holds"},
		{"display bracket", "\\[\na^2 + b^2 = c^2\n\\]", "$$\na^2 + b^2 = c^2\n$$"},
		{"single letter", "Let `x` be positive", "Let $x$ be positive"},
		{"subscripts", "Use `x_1` and `a_{ij}`", "Use $x_1$ and $a_{ij}$"},
		{"function calls", "Compute `sin(x)` and `f(x)`", "Compute $sin(x)$ and $f(x)$"},
		{"operators with spaces", "Then `x^2 + y^2` grows", "Then $x^2 + y^2$ grows"},
		{"spaced minus", "Take `a - b` now", "Take $a - b$ now"},
		{"latex command", "The `\\alpha` term", "The $\\alpha$ term"},
		{"escaped dollar before formula", `costs \$5 and \(x\)`, `costs \$5 and $x$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_LeavesCodeUntouched(t *testing.T) {
	inputs := []string{
		"Call `print(x)` first",
		"Set `my_var` here",
		"Import `os.path` now",
		"Pass `--verbose` flag",
		"Write `x = 5;` exactly",
		"Check `len(items) > 0` before",
		"Use `\"quoted\"` text",
		"Render `<div>` tags",
		"Run `i++` in loops",
		"See `API_KEY` variable",
		"Number `42` alone",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Normalize(in))
		})
	}
}

func TestNormalize_WhitespaceWithoutOperatorUntouched(t *testing.T) {
	for _, in := range []string{"say `hello world` twice", "call `f (x)` later", "`a b c`"} {
		assert.Equal(t, in, Normalize(in))
	}
}

func TestNormalize_FencedBlocksUntouched(t *testing.T) {
	in := "Before\n```python\nx = `y` + \\(z\\)\n```\nAfter"
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_DollarSpansUntouched(t *testing.T) {
	in := "Inline $x + 1$ and display $$\\int_0^1 f$$ stay"
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_AdjacentFormulasNotMerged(t *testing.T) {
	in := `\(a\)\(b\)`
	assert.Equal(t, in, Normalize(in))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`Area is \(x^2\) units and \[y = mx + c\]`,
		"Let `x` be `x_1` with `print(x)` and ```\ncode\n```",
		`cost $5 for \(x\) and ` + "`y`" + ` end`,
		"Mixed $a$ then `b` then \\(c\\)",
		"`a`$b$",
		"``x`and`a+b```a+b`",
		"`` stray `y` pair\nnext `z` line",
		"nothing to do here",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_UnmatchedDoubleBacktickLeavesLinePlain(t *testing.T) {
	in := "``x`and`a+b```a+b`"
	assert.Equal(t, in, Normalize(in))

	assert.Equal(t, "`` stray `y` pair\nnext $z$ line", Normalize("`` stray `y` pair\nnext `z` line"))
}

func TestClassify_NeverStartsInsideUnmatchedRun(t *testing.T) {
	spans := Classify("``x` tail")

	assert.Len(t, spans, 1)
	assert.Equal(t, PlainSpan, spans[0].Kind)
}

func TestClassify(t *testing.T) {
	in := "a `x` b ```go\nfoo()\n``` \\(y\\)"

	spans := Classify(in)

	kinds := make([]SpanKind, len(spans))
	var raw strings.Builder
	for i, s := range spans {
		kinds[i] = s.Kind
		raw.WriteString(s.Raw)
	}
	assert.Equal(t, []SpanKind{PlainSpan, MathSpan, PlainSpan, CodeSpan, PlainSpan, MathSpan}, kinds)
	assert.Equal(t, in, raw.String(), "spans must reproduce the input")
	assert.Equal(t, DelimFence, spans[3].Delim)
	assert.Equal(t, "y", spans[5].Body)
}

func TestClassify_Display(t *testing.T) {
	spans := Classify(`$$a$$ \[b\] $c$`)

	var math []Span
	for _, s := range spans {
		if s.Kind == MathSpan {
			math = append(math, s)
		}
	}
	assert.Len(t, math, 3)
	assert.True(t, math[0].Display())
	assert.True(t, math[1].Display())
	assert.False(t, math[2].Display())
}

func TestClassify_UnclosedDelimiters(t *testing.T) {
	for _, in := range []string{"price $5", "open \\( only", "stray ` tick"} {
		spans := Classify(in)
		assert.Len(t, spans, 1, in)
		assert.Equal(t, PlainSpan, spans[0].Kind, in)
	}
}

func TestSpanKind_String(t *testing.T) {
	assert.Equal(t, "plain", PlainSpan.String())
	assert.Equal(t, "math", MathSpan.String())
	assert.Equal(t, "code", CodeSpan.String())
}
