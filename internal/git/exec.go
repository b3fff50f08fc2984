package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/quantmind-br/git-get/internal/utils"
)

// Runner executes one command in dir and returns its trimmed stderr
type Runner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecBackend shells out to the git executable
type ExecBackend struct {
	binary string
	logger *utils.Logger
	run    Runner
}

// ExecBackendOptions contains options for creating an ExecBackend
type ExecBackendOptions struct {
	Binary string
	Logger *utils.Logger
	Runner Runner // nil = run the real process
}

// NewExecBackend creates a new ExecBackend
func NewExecBackend(opts ExecBackendOptions) *ExecBackend {
	binary := opts.Binary
	if binary == "" {
		binary = "git"
	}
	run := opts.Runner
	if run == nil {
		run = runCommand
	}
	return &ExecBackend{
		binary: binary,
		logger: opts.Logger,
		run:    run,
	}
}

func (b *ExecBackend) Name() string {
	return "exec"
}

func (b *ExecBackend) Init(ctx context.Context, dir string) error {
	return b.git(ctx, dir, "init", "--quiet")
}

func (b *ExecBackend) AddRemote(ctx context.Context, dir, name, url string) error {
	return b.git(ctx, dir, "remote", "add", name, url)
}

func (b *ExecBackend) ConfigureSparse(ctx context.Context, dir string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no sparse-checkout paths given")
	}
	if err := checkArgs(paths...); err != nil {
		return err
	}
	if err := b.git(ctx, dir, "sparse-checkout", "init", "--cone"); err != nil {
		return err
	}
	return b.git(ctx, dir, append([]string{"sparse-checkout", "set"}, paths...)...)
}

func (b *ExecBackend) Fetch(ctx context.Context, dir, remote, branch string, depth int) error {
	if err := checkArgs(remote, branch); err != nil {
		return err
	}
	args := []string{"fetch", "--no-tags"}
	if depth > 0 {
		args = append(args, fmt.Sprintf("--depth=%d", depth))
	}
	args = append(args, remote, branchRef(branch))
	return b.git(ctx, dir, args...)
}

func (b *ExecBackend) Checkout(ctx context.Context, dir, remote, branch string) error {
	if err := checkArgs(branch); err != nil {
		return err
	}
	return b.git(ctx, dir, "checkout", "--quiet", "-B", branch, "FETCH_HEAD")
}

// branchRef qualifies a branch name so the fetch refspec can never be read
// as an option
func branchRef(branch string) string {
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}

func (b *ExecBackend) git(ctx context.Context, dir string, args ...string) error {
	if b.logger != nil {
		b.logger.Debug().Str("cmd", b.binary+" "+strings.Join(args, " ")).Msg("Running git")
	}

	stderr, err := b.run(ctx, dir, b.binary, args...)
	if err != nil {
		cmdErr := &CommandError{
			Args:   append([]string{b.binary}, args...),
			Stderr: stderr,
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return cmdErr
	}
	return nil
}

// Version returns the output of `git --version`
func (b *ExecBackend) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, b.binary, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func runCommand(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Never prompt for credentials; a private repository must fail fast.
	cmd.Env = append(isolatedEnv(os.Environ()), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdin = nil
	cmd.Stdout = io.Discard

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}

// repoEnvVars point git at a specific repository and would make the scratch
// commands operate on the caller's repository instead of the workspace.
var repoEnvVars = []string{
	"GIT_DIR=",
	"GIT_WORK_TREE=",
	"GIT_INDEX_FILE=",
	"GIT_OBJECT_DIRECTORY=",
	"GIT_COMMON_DIR=",
	"GIT_CEILING_DIRECTORIES=",
}

func isolatedEnv(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		skip := false
		for _, prefix := range repoEnvVars {
			if strings.HasPrefix(kv, prefix) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, kv)
		}
	}
	return out
}
