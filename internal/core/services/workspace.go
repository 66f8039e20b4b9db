package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// Workspace hands out exclusive working directories per knowledge base.
// At most one lease per id is live at a time; it doubles as the
// in-flight ingestion map.
type Workspace struct {
	root string

	mu     sync.Mutex
	leases map[domain.KnowledgeBaseID]*Lease
}

// NewWorkspace creates a workspace rooted at root.
func NewWorkspace(root string) *Workspace {
	return &Workspace{
		root:   root,
		leases: make(map[domain.KnowledgeBaseID]*Lease),
	}
}

// Root returns the directory holding all working directories.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the working directory of id, leased or not.
func (w *Workspace) Dir(id domain.KnowledgeBaseID) string {
	return filepath.Join(w.root, id.String())
}

// Acquire leases the working directory of id.
// Returns domain.ErrIngestionInProgress if the id is already leased.
func (w *Workspace) Acquire(id domain.KnowledgeBaseID) (*Lease, error) {
	if _, err := domain.ParseKnowledgeBaseID(id.String()); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, busy := w.leases[id]; busy {
		return nil, fmt.Errorf("%w: knowledge base %s", domain.ErrIngestionInProgress, id)
	}
	lease := &Lease{workspace: w, id: id, dir: w.Dir(id)}
	w.leases[id] = lease
	return lease, nil
}

// InFlight reports whether id is currently leased.
func (w *Workspace) InFlight(id domain.KnowledgeBaseID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.leases[id]
	return ok
}

// Lease is exclusive use of one working directory.
type Lease struct {
	workspace *Workspace
	id        domain.KnowledgeBaseID
	dir       string
	once      sync.Once
}

// ID returns the leased knowledge base id.
func (l *Lease) ID() domain.KnowledgeBaseID {
	return l.id
}

// Dir returns the leased directory. It may not exist yet.
func (l *Lease) Dir() string {
	return l.dir
}

// Release removes the working directory and frees the id.
// Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(func() {
		if err := os.RemoveAll(l.dir); err != nil {
			logger.Warn("failed to remove working directory %s: %v", l.dir, err)
		}

		l.workspace.mu.Lock()
		delete(l.workspace.leases, l.id)
		l.workspace.mu.Unlock()
	})
}
