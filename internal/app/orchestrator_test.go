package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantmind-br/git-get/internal/config"
	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/git"
	"github.com/quantmind-br/git-get/internal/manifest"
	"github.com/quantmind-br/git-get/internal/mocks"
	"github.com/quantmind-br/git-get/internal/utils"
)

var widgetsFiles = map[string]string{
	"README.md":                     "root\n",
	"examples/basic/main.go":        "package main\n",
	"examples/basic/sub/config.txt": "key=value\n",
	"examples/basic/.git":           "gitdir: elsewhere\n",
	"other/secret.txt":              "nope\n",
}

type testEnv struct {
	workDir      string
	workspaceDir string
	cfg          *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		workDir:      t.TempDir(),
		workspaceDir: t.TempDir(),
		cfg:          config.Default(),
	}
	env.cfg.Workspace.Dir = env.workspaceDir
	env.cfg.Output.Progress = false
	return env
}

func (e *testEnv) orchestrator(t *testing.T, backend git.Backend) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(OrchestratorOptions{
		Config:  e.cfg,
		Logger:  utils.NewNopLogger(),
		Backend: backend,
		WorkDir: e.workDir,
	})
	require.NoError(t, err)
	return o
}

func (e *testEnv) dest(rel string) string {
	return filepath.Join(e.workDir, rel)
}

func (e *testEnv) writeGitignore(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.workDir, ".gitignore"), []byte(content), 0644))
}

func (e *testEnv) gitignore(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.workDir, ".gitignore"))
	require.NoError(t, err)
	return string(data)
}

func (e *testEnv) assertNoWorkspaceLeft(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.workspaceDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch workspace was not removed")
}

func resolve(t *testing.T, o *Orchestrator, rawURL string) domain.FetchTarget {
	t.Helper()
	tgt, err := o.Resolve(Input{URL: rawURL})
	require.NoError(t, err)
	return tgt
}

func TestNewOrchestrator_RequiresConfig(t *testing.T) {
	_, err := NewOrchestrator(OrchestratorOptions{})
	assert.Error(t, err)
}

func TestNewOrchestrator_BuildsConfiguredBackend(t *testing.T) {
	for _, name := range []string{config.BackendExec, config.BackendGoGit, config.BackendArchive} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Fetch.Backend = name

			o, err := NewOrchestrator(OrchestratorOptions{Config: cfg, Logger: utils.NewNopLogger()})
			require.NoError(t, err)
			assert.Equal(t, name, o.fetcher.Backend())
		})
	}
}

func TestNewOrchestrator_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.Backend = "svn"

	_, err := NewOrchestrator(OrchestratorOptions{Config: cfg, Logger: utils.NewNopLogger()})
	assert.ErrorIs(t, err, domain.ErrUnknownBackend)
}

func TestRun_ExtractsSubdirectory(t *testing.T) {
	env := newTestEnv(t)
	env.writeGitignore(t, "node_modules\n")
	backend := newFakeBackend(widgetsFiles)
	o := env.orchestrator(t, backend)

	dest := env.dest("basic")
	res, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.WritableMissing, res.Decision.Kind)
	assert.Equal(t, 2, res.Copy.Files)
	assert.Equal(t, 1, res.Copy.Dirs)
	assert.True(t, res.IgnoreUpdated)
	assert.NoError(t, res.IgnoreWarning)

	data, err := os.ReadFile(filepath.Join(dest, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
	assert.FileExists(t, filepath.Join(dest, "sub", "config.txt"))
	assert.NoFileExists(t, filepath.Join(dest, ".git"))
	assert.NoFileExists(t, filepath.Join(dest, "README.md"))

	assert.Equal(t, "node_modules\n\n# Added by git-get\nbasic\n", env.gitignore(t))
	assert.Equal(t, []string{
		"init",
		"remote-add origin https://github.com/acme/widgets.git",
		"sparse-checkout examples/basic",
		"fetch main",
		"checkout main",
	}, backend.Calls())
	env.assertNoWorkspaceLeft(t)
}

func TestRun_SymlinkLeavingCheckoutFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	env := newTestEnv(t)
	secret := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(secret, []byte("PRIVATE KEY"), 0600))

	backend := newFakeBackend(widgetsFiles)
	backend.links = map[string]string{
		"examples/basic/key":  secret,
		"examples/basic/self": "main.go",
	}
	o := env.orchestrator(t, backend)

	dest := env.dest("basic")
	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSymlinkEscape)
	assert.Equal(t, domain.ExitCopy, domain.ExitCode(err))
	assert.NoFileExists(t, filepath.Join(dest, "key"))
	env.assertNoWorkspaceLeft(t)
}

func TestRun_SymlinkInsideCheckoutIsCopied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	env := newTestEnv(t)
	backend := newFakeBackend(widgetsFiles)
	backend.links = map[string]string{"examples/basic/self": "main.go"}
	o := env.orchestrator(t, backend)

	dest := env.dest("basic")
	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	require.NoError(t, err)

	info, err := os.Lstat(filepath.Join(dest, "self"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	env.assertNoWorkspaceLeft(t)
}

func TestRun_EmptyDestinationDirectory(t *testing.T) {
	env := newTestEnv(t)
	dest := env.dest("basic")
	require.NoError(t, os.MkdirAll(dest, 0755))
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	res, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WritableEmpty, res.Decision.Kind)
	assert.False(t, res.IgnoreUpdated, "no ignore file exists")
	assert.NoFileExists(t, filepath.Join(env.workDir, ".gitignore"))
}

func TestRun_RejectsNonEmptyDestination(t *testing.T) {
	env := newTestEnv(t)
	dest := env.dest("basic")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("mine"), 0644))

	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().Name().Return("mock").AnyTimes()
	o := env.orchestrator(t, backend)

	res, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrDestinationRejected)
	assert.Equal(t, domain.ExitDestinationRejected, domain.ExitCode(err))

	data, err := os.ReadFile(filepath.Join(dest, "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
	env.assertNoWorkspaceLeft(t)
}

func TestRun_RejectsFileDestination(t *testing.T) {
	env := newTestEnv(t)
	dest := env.dest("basic")
	require.NoError(t, os.WriteFile(dest, []byte("file"), 0644))

	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().Name().Return("mock").AnyTimes()
	o := env.orchestrator(t, backend)

	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: dest,
	})
	assert.ErrorIs(t, err, domain.ErrDestinationRejected)
}

func TestRun_MissingBranch(t *testing.T) {
	env := newTestEnv(t)
	env.writeGitignore(t, "")
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	dest := env.dest("basic")
	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/nope/examples/basic"),
		Destination: dest,
	})
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.StepFetch, fetchErr.Step)
	assert.Contains(t, fetchErr.Diagnostic, "couldn't find remote ref nope")
	assert.Equal(t, domain.ExitFetch, domain.ExitCode(err))

	assert.NoDirExists(t, dest)
	assert.Equal(t, "", env.gitignore(t))
	env.assertNoWorkspaceLeft(t)
}

func TestRun_PathNotFound(t *testing.T) {
	env := newTestEnv(t)
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	dest := env.dest("missing")
	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/does/not/exist"),
		Destination: dest,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
	assert.NoDirExists(t, dest)
	env.assertNoWorkspaceLeft(t)
}

func TestRun_IgnoreUpdateFailureIsWarning(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Mkdir(filepath.Join(env.workDir, ".gitignore"), 0755))
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	res, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})
	require.NoError(t, err)
	assert.Error(t, res.IgnoreWarning)
	assert.False(t, res.IgnoreUpdated)
	assert.FileExists(t, filepath.Join(env.dest("basic"), "main.go"))
}

func TestRun_IgnoreUpdateDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Output.UpdateGitignore = false
	env.writeGitignore(t, "node_modules\n")
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	res, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})
	require.NoError(t, err)
	assert.False(t, res.IgnoreUpdated)
	assert.Equal(t, "node_modules\n", env.gitignore(t))
}

func TestRun_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	o := env.orchestrator(t, newFakeBackend(widgetsFiles))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, env.dest("basic"))
	env.assertNoWorkspaceLeft(t)
}

func TestRun_WorkspaceFailure(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Workspace.Dir = filepath.Join(env.workDir, "no", "such", "dir")

	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	backend.EXPECT().Name().Return("mock").AnyTimes()
	o := env.orchestrator(t, backend)

	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkspace)
	assert.Equal(t, domain.ExitWorkspace, domain.ExitCode(err))
}

func TestRun_CopyProgress(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Output.Progress = true

	var buf bytes.Buffer
	o, err := NewOrchestrator(OrchestratorOptions{
		Config:   env.cfg,
		Logger:   utils.NewNopLogger(),
		Backend:  newFakeBackend(widgetsFiles),
		WorkDir:  env.workDir,
		Progress: &buf,
	})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), utils.DescCopying)
}

func TestRun_InitFailureCleansUp(t *testing.T) {
	env := newTestEnv(t)
	backend := newFakeBackend(widgetsFiles)
	backend.initErr = errors.New("disk full")
	o := env.orchestrator(t, backend)

	_, err := o.Run(context.Background(), Request{
		Target:      resolve(t, o, "https://github.com/acme/widgets/tree/main/examples/basic"),
		Destination: env.dest("basic"),
	})

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, domain.StepInit, fetchErr.Step)
	env.assertNoWorkspaceLeft(t)
}

func TestRunManifest(t *testing.T) {
	entries := func(env *testEnv) []manifest.Entry {
		return []manifest.Entry{
			{URL: "https://github.com/acme/widgets/tree/nope/examples/basic", Dest: env.dest("broken")},
			{Repo: "acme/widgets", Branch: "main", Path: "examples/basic", Dest: env.dest("basic")},
		}
	}

	t.Run("stops on first failure", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.orchestrator(t, newFakeBackend(widgetsFiles))

		results, err := o.RunManifest(context.Background(), &manifest.Config{Entries: entries(env)}, "")
		require.Error(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, domain.ExitFetch, domain.ExitCode(err))
		assert.NoDirExists(t, env.dest("basic"))
	})

	t.Run("continue on error", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.orchestrator(t, newFakeBackend(widgetsFiles))

		cfg := &manifest.Config{Entries: entries(env), Options: manifest.Options{ContinueOnError: true}}
		results, err := o.RunManifest(context.Background(), cfg, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1/2 failures")
		require.Len(t, results, 2)
		assert.Error(t, results[0].Error)
		assert.NoError(t, results[1].Error)
		assert.Equal(t, 2, results[1].Result.Copy.Files)
		assert.FileExists(t, filepath.Join(env.dest("basic"), "main.go"))
		env.assertNoWorkspaceLeft(t)
	})

	t.Run("all succeed", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.orchestrator(t, newFakeBackend(widgetsFiles))

		cfg := &manifest.Config{Entries: []manifest.Entry{
			{URL: "https://github.com/acme/widgets/tree/main/examples/basic", Dest: env.dest("a")},
			{URL: "https://github.com/acme/widgets/tree/main/other", Dest: env.dest("b")},
		}}
		results, err := o.RunManifest(context.Background(), cfg, "token")
		require.NoError(t, err)
		assert.Len(t, results, 2)
		assert.FileExists(t, filepath.Join(env.dest("b"), "secret.txt"))
	})

	t.Run("invalid entry", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.orchestrator(t, newFakeBackend(widgetsFiles))

		cfg := &manifest.Config{Entries: []manifest.Entry{
			{URL: "https://github.com/acme/widgets/blob/main/README.md", Dest: env.dest("readme")},
		}}
		_, err := o.RunManifest(context.Background(), cfg, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	})

	t.Run("cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		o := env.orchestrator(t, newFakeBackend(widgetsFiles))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := o.RunManifest(ctx, &manifest.Config{Entries: entries(env)}, "")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
	})
}
