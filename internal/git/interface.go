package git

//go:generate mockgen -destination=../mocks/mock_backend.go -package=mocks github.com/quantmind-br/git-get/internal/git Backend

import "context"

// Backend drives one version-control implementation through the steps of a
// sparse, shallow retrieval. Each method is one logical step and must succeed
// before the next is attempted. dir is always the scratch workspace root.
type Backend interface {
	Name() string
	Init(ctx context.Context, dir string) error
	AddRemote(ctx context.Context, dir, name, url string) error
	ConfigureSparse(ctx context.Context, dir string, paths []string) error
	Fetch(ctx context.Context, dir, remote, branch string, depth int) error
	Checkout(ctx context.Context, dir, remote, branch string) error
}
