package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/quantmind-br/git-get/internal/utils"
)

// GoGitBackend performs every step in-process with go-git. No git executable
// is required.
type GoGitBackend struct {
	logger *utils.Logger
}

// GoGitBackendOptions contains options for creating a GoGitBackend
type GoGitBackendOptions struct {
	Logger *utils.Logger
}

// NewGoGitBackend creates a new GoGitBackend
func NewGoGitBackend(opts GoGitBackendOptions) *GoGitBackend {
	return &GoGitBackend{logger: opts.Logger}
}

func (b *GoGitBackend) Name() string {
	return "gogit"
}

func (b *GoGitBackend) Init(ctx context.Context, dir string) error {
	_, err := git.PlainInit(dir, false)
	return err
}

func (b *GoGitBackend) AddRemote(ctx context.Context, dir, name, url string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	return err
}

// ConfigureSparse records the paths; go-git applies them at checkout time
func (b *GoGitBackend) ConfigureSparse(ctx context.Context, dir string, paths []string) error {
	return writeSparsePaths(dir, paths)
}

func (b *GoGitBackend) Fetch(ctx context.Context, dir, remote, branch string, depth int) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}

	refSpec := config.RefSpec(fmt.Sprintf("+%s:%s",
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewRemoteReferenceName(remote, branch)))

	if b.logger != nil {
		b.logger.Debug().Str("refspec", refSpec.String()).Int("depth", depth).Msg("Fetching with go-git")
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Depth:      depth,
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (b *GoGitBackend) Checkout(ctx context.Context, dir, remote, branch string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}

	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		return fmt.Errorf("resolve %s/%s: %w", remote, branch, err)
	}

	paths, err := readSparsePaths(dir)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Checkout(&git.CheckoutOptions{
		Hash:                      ref.Hash(),
		Branch:                    plumbing.NewBranchReferenceName(branch),
		Create:                    true,
		SparseCheckoutDirectories: paths,
	})
}
