// Package workspace owns the scratch directory a single fetch runs in.
//
// Every successful Acquire must be paired with exactly one Release, on every
// exit path. Callers use either
//
//	ws, err := m.Acquire()
//	if err != nil { ... }
//	defer m.Release(ws)
//
// or the With helper, which does the same around a callback.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

// Workspace is an exclusively owned temporary directory
type Workspace struct {
	path string

	once       sync.Once
	releaseErr error
	removeAll  func(string) error
}

// Path returns the absolute path of the scratch directory
func (w *Workspace) Path() string {
	return w.path
}

// Release removes the directory tree. Only the first call does any work;
// later calls return the first result.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := w.removeAll(w.path); err != nil {
			w.releaseErr = fmt.Errorf("%w: remove %s: %v", domain.ErrWorkspace, w.path, err)
		}
	})
	return w.releaseErr
}

// Manager creates workspaces
type Manager struct {
	baseDir string
	prefix  string
	logger  *utils.Logger

	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(string) error
}

// ManagerOptions contains options for creating a Manager
type ManagerOptions struct {
	BaseDir string // empty = os.TempDir()
	Prefix  string
	Logger  *utils.Logger
}

// NewManager creates a new workspace manager
func NewManager(opts ManagerOptions) *Manager {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "git-get-"
	}
	return &Manager{
		baseDir:   utils.ExpandPath(opts.BaseDir),
		prefix:    prefix,
		logger:    opts.Logger,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
	}
}

// Acquire creates a new uniquely named directory
func (m *Manager) Acquire() (*Workspace, error) {
	dir, err := m.mkdirTemp(m.baseDir, m.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch directory: %v", domain.ErrWorkspace, err)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	if m.logger != nil {
		m.logger.Debug().Str("workspace", dir).Msg("Acquired scratch workspace")
	}

	return &Workspace{path: dir, removeAll: m.removeAll}, nil
}

// Release releases ws and logs, rather than returns, any removal failure.
// It is safe to defer directly.
func (m *Manager) Release(ws *Workspace) {
	if ws == nil {
		return
	}
	if err := ws.Release(); err != nil {
		if m.logger != nil {
			m.logger.Warn().Err(err).Str("workspace", ws.Path()).Msg("Failed to remove scratch workspace")
		}
		return
	}
	if m.logger != nil {
		m.logger.Debug().Str("workspace", ws.Path()).Msg("Released scratch workspace")
	}
}

// With acquires a workspace, runs fn inside it and releases it on every path,
// including a panic in fn.
func (m *Manager) With(fn func(ws *Workspace) error) error {
	ws, err := m.Acquire()
	if err != nil {
		return err
	}
	defer m.Release(ws)

	return fn(ws)
}
