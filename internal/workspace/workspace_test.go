package workspace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AcquireRelease(t *testing.T) {
	base := t.TempDir()
	m := NewManager(ManagerOptions{BaseDir: base, Prefix: "test-"})

	ws, err := m.Acquire()
	require.NoError(t, err)
	assert.DirExists(t, ws.Path())
	assert.Equal(t, base, filepath.Dir(ws.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Path()), "test-"))

	require.NoError(t, os.MkdirAll(filepath.Join(ws.Path(), ".git", "objects"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Path(), "file.txt"), []byte("x"), 0644))

	require.NoError(t, ws.Release())
	assert.NoDirExists(t, ws.Path())
}

func TestManager_AcquireUnique(t *testing.T) {
	m := NewManager(ManagerOptions{BaseDir: t.TempDir()})

	a, err := m.Acquire()
	require.NoError(t, err)
	defer m.Release(a)

	b, err := m.Acquire()
	require.NoError(t, err)
	defer m.Release(b)

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestManager_AcquireFailure(t *testing.T) {
	m := NewManager(ManagerOptions{BaseDir: filepath.Join(t.TempDir(), "does", "not", "exist")})

	ws, err := m.Acquire()
	assert.Nil(t, ws)
	assert.ErrorIs(t, err, domain.ErrWorkspace)
}

func TestWorkspace_ReleaseOnce(t *testing.T) {
	calls := 0
	m := NewManager(ManagerOptions{BaseDir: t.TempDir()})
	m.removeAll = func(path string) error {
		calls++
		return os.RemoveAll(path)
	}

	ws, err := m.Acquire()
	require.NoError(t, err)

	require.NoError(t, ws.Release())
	require.NoError(t, ws.Release())
	m.Release(ws)

	assert.Equal(t, 1, calls)
}

func TestWorkspace_ReleaseFailureIsSticky(t *testing.T) {
	m := NewManager(ManagerOptions{BaseDir: t.TempDir()})
	m.removeAll = func(string) error { return errors.New("device busy") }

	ws, err := m.Acquire()
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(ws.Path()) })

	err = ws.Release()
	assert.ErrorIs(t, err, domain.ErrWorkspace)
	assert.Equal(t, err, ws.Release())
}

func TestManager_ReleaseLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger(utils.LoggerOptions{Level: "warn", Format: "json", Output: &buf})

	m := NewManager(ManagerOptions{BaseDir: t.TempDir(), Logger: logger})
	m.removeAll = func(string) error { return errors.New("device busy") }

	ws, err := m.Acquire()
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(ws.Path()) })

	assert.NotPanics(t, func() { m.Release(ws) })
	assert.Contains(t, buf.String(), "Failed to remove scratch workspace")
	assert.Contains(t, buf.String(), "device busy")
}

func TestManager_ReleaseNil(t *testing.T) {
	m := NewManager(ManagerOptions{})
	assert.NotPanics(t, func() { m.Release(nil) })
}

func TestManager_With(t *testing.T) {
	t.Run("releases on success", func(t *testing.T) {
		m := NewManager(ManagerOptions{BaseDir: t.TempDir()})

		var seen string
		err := m.With(func(ws *Workspace) error {
			seen = ws.Path()
			assert.DirExists(t, seen)
			return nil
		})

		require.NoError(t, err)
		assert.NoDirExists(t, seen)
	})

	t.Run("releases on error and propagates it", func(t *testing.T) {
		m := NewManager(ManagerOptions{BaseDir: t.TempDir()})
		boom := errors.New("boom")

		var seen string
		err := m.With(func(ws *Workspace) error {
			seen = ws.Path()
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoDirExists(t, seen)
	})

	t.Run("releases on panic", func(t *testing.T) {
		m := NewManager(ManagerOptions{BaseDir: t.TempDir()})

		var seen string
		assert.Panics(t, func() {
			_ = m.With(func(ws *Workspace) error {
				seen = ws.Path()
				panic("boom")
			})
		})
		assert.NoDirExists(t, seen)
	})

	t.Run("does not run fn when acquire fails", func(t *testing.T) {
		m := NewManager(ManagerOptions{BaseDir: filepath.Join(t.TempDir(), "missing")})

		called := false
		err := m.With(func(ws *Workspace) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, domain.ErrWorkspace)
		assert.False(t, called)
	})
}
