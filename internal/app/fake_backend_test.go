package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quantmind-br/git-get/internal/domain"
)

// fakeBackend imitates a remote repository held in memory. Checkout writes
// every file under the configured sparse paths into the workspace.
type fakeBackend struct {
	mu       sync.Mutex
	files    map[string]string
	links    map[string]string
	branches map[string]bool
	sparse   []string
	calls    []string

	initErr error
}

func newFakeBackend(files map[string]string) *fakeBackend {
	return &fakeBackend{
		files:    files,
		branches: map[string]bool{"main": true},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Init(ctx context.Context, dir string) error {
	f.record("init")
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.initErr != nil {
		return f.initErr
	}
	return os.MkdirAll(filepath.Join(dir, domain.MetadataDirName), 0755)
}

func (f *fakeBackend) AddRemote(ctx context.Context, dir, name, url string) error {
	f.record("remote-add " + name + " " + url)
	return nil
}

func (f *fakeBackend) ConfigureSparse(ctx context.Context, dir string, paths []string) error {
	f.record("sparse-checkout " + strings.Join(paths, ","))
	f.sparse = paths
	return nil
}

func (f *fakeBackend) Fetch(ctx context.Context, dir, remote, branch string, depth int) error {
	f.record("fetch " + branch)
	if !f.branches[branch] {
		return &fakeDiagnosticError{stderr: "fatal: couldn't find remote ref " + branch}
	}
	return nil
}

func (f *fakeBackend) Checkout(ctx context.Context, dir, remote, branch string) error {
	f.record("checkout " + branch)
	for rel, content := range f.files {
		if !f.inSparse(rel) {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	for rel, target := range f.links {
		if !f.inSparse(rel) {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.Symlink(target, p); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeBackend) inSparse(rel string) bool {
	for _, p := range f.sparse {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

type fakeDiagnosticError struct {
	stderr string
}

func (e *fakeDiagnosticError) Error() string      { return "exit status 128" }
func (e *fakeDiagnosticError) Diagnostic() string { return e.stderr }
