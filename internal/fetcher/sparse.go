// Package fetcher materializes one subdirectory of a remote branch inside a
// scratch workspace using a sparse, shallow retrieval.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/git"
	"github.com/quantmind-br/git-get/internal/utils"
)

// Fetcher drives a git.Backend through the retrieval steps
type Fetcher struct {
	backend    git.Backend
	remoteName string
	depth      int
	timeout    time.Duration
	token      string
	logger     *utils.Logger
	remoteURL  func(domain.FetchTarget) string
}

// Options contains options for creating a Fetcher
type Options struct {
	Backend    git.Backend
	RemoteName string
	Depth      int
	Timeout    time.Duration
	Token      string
	Logger     *utils.Logger
	// RemoteURL overrides the clone URL derived from the target
	RemoteURL func(domain.FetchTarget) string
}

// New creates a new Fetcher
func New(opts Options) *Fetcher {
	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}
	depth := opts.Depth
	if depth < 0 {
		depth = 0
	}
	remoteURL := opts.RemoteURL
	if remoteURL == nil {
		remoteURL = func(t domain.FetchTarget) string { return t.CloneURL() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Fetcher{
		backend:    opts.Backend,
		remoteName: remoteName,
		depth:      depth,
		timeout:    opts.Timeout,
		token:      opts.Token,
		logger:     logger.WithComponent("fetcher"),
		remoteURL:  remoteURL,
	}
}

// WithToken returns a copy of f carrying token
func (f *Fetcher) WithToken(token string) *Fetcher {
	clone := *f
	clone.token = token
	return &clone
}

// Backend returns the name of the backend in use
func (f *Fetcher) Backend() string {
	if f.backend == nil {
		return ""
	}
	return f.backend.Name()
}

// Fetch materializes target.Subpath inside workspaceDir and returns the
// absolute path of the checked-out subdirectory. The first failing step
// aborts the retrieval with a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, target domain.FetchTarget, workspaceDir string) (string, error) {
	if f.backend == nil {
		return "", fmt.Errorf("fetcher has no backend")
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	log := f.logger.WithTarget(target.Repository(), target.Branch, target.Subpath)
	if f.token != "" {
		log.Debug().Msg("Access token supplied but not used by any backend")
	}

	cloneURL := f.remoteURL(target)
	steps := []struct {
		step domain.Step
		run  func() error
	}{
		{domain.StepInit, func() error {
			return f.backend.Init(ctx, workspaceDir)
		}},
		{domain.StepRemoteAdd, func() error {
			return f.backend.AddRemote(ctx, workspaceDir, f.remoteName, cloneURL)
		}},
		{domain.StepSparseCheckout, func() error {
			return f.backend.ConfigureSparse(ctx, workspaceDir, []string{target.Subpath})
		}},
		{domain.StepFetch, func() error {
			return f.backend.Fetch(ctx, workspaceDir, f.remoteName, target.Branch, f.depth)
		}},
		{domain.StepCheckout, func() error {
			return f.backend.Checkout(ctx, workspaceDir, f.remoteName, target.Branch)
		}},
	}

	for _, s := range steps {
		start := time.Now()
		if err := s.run(); err != nil {
			fetchErr := stepError(s.step, err)
			log.Debug().
				Str("step", string(s.step)).
				Str("diagnostic", fetchErr.Diagnostic).
				Err(err).
				Msg("Step failed")
			return "", fetchErr
		}
		log.Debug().
			Str("step", string(s.step)).
			Dur("duration", time.Since(start)).
			Msg("Step complete")
	}

	return f.verify(workspaceDir, target.Subpath)
}

func (f *Fetcher) verify(workspaceDir, subpath string) (string, error) {
	path := filepath.Join(workspaceDir, filepath.FromSlash(subpath))
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", domain.NewFetchError(domain.StepVerify, "", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.NewFetchError(domain.StepVerify, "",
				fmt.Errorf("%w: %s", domain.ErrPathNotFound, subpath))
		}
		return "", domain.NewFetchError(domain.StepVerify, "", err)
	}
	if !info.IsDir() {
		return "", domain.NewFetchError(domain.StepVerify, "",
			fmt.Errorf("%w: %s", domain.ErrNotDirectory, subpath))
	}

	return abs, nil
}

// diagnoser is implemented by backend errors that carry tool output
type diagnoser interface {
	Diagnostic() string
}

func stepError(step domain.Step, err error) *domain.FetchError {
	var d diagnoser
	diagnostic := ""
	if errors.As(err, &d) {
		diagnostic = d.Diagnostic()
	}
	return domain.NewFetchError(step, diagnostic, err)
}
