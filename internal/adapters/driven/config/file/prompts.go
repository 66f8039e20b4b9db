package file

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/tutor_answer.txt
var tutorAnswerPrompt string

var defaultPrompts = map[string]string{
	driven.PromptTutorAnswer: strings.TrimSpace(tutorAnswerPrompt),
}

const promptReadme = `# Folio prompts

tutor_answer.txt is the template used by 'folio ask' and 'folio chat'.
It must contain {context} (the retrieved passages, separated by blank
lines) and {question} (the user's question). A file missing either
placeholder is ignored and the built-in template is used instead.

Delete a file to restore the built-in template.
`

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptStore serves answer templates from ~/.folio/prompts. The directory
// is seeded with the built-in templates on first use so users have a file
// to edit. Each file is read once per process.
type PromptStore struct {
	dir  string
	seed sync.Once

	mu     sync.Mutex
	loaded map[string]string
}

// NewPromptStore returns a store rooted at dir, or ~/.folio/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		root, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(root, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the user's template for name when it is usable, otherwise
// the built-in one. Unknown names without a file are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.seedDefaults)

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.loaded[name]; ok {
		return p, nil
	}

	builtin, hasBuiltin := defaultPrompts[name]
	custom, err := s.readOverride(name)
	switch {
	case err == nil:
		s.loaded[name] = custom
		return custom, nil
	case hasBuiltin:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("using built-in %s prompt: %v", name, err)
		}
		s.loaded[name] = builtin
		return builtin, nil
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
}

// readOverride reads <dir>/<name>.txt and checks its placeholders.
func (s *PromptStore) readOverride(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("prompt file is empty")
	}
	for _, ph := range driven.RequiredPlaceholders[name] {
		if !strings.Contains(text, ph) {
			return "", fmt.Errorf("prompt file lacks %s", ph)
		}
	}
	return text, nil
}

// seedDefaults writes missing template files and the README. Failures only
// cost the user an editable copy, so they are logged.
func (s *PromptStore) seedDefaults() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		logger.Warn("create prompt directory: %v", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content + "\n"
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			logger.Warn("seed prompt %s: %v", name, err)
		}
	}
}
