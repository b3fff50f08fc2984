package git

import (
	"fmt"
	"net/http"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

// Backend names accepted by New
const (
	BackendExec    = "exec"
	BackendGoGit   = "gogit"
	BackendArchive = "archive"
)

// Options configures backend construction
type Options struct {
	GitBinary  string
	HTTPClient *http.Client
	Logger     *utils.Logger
}

// New returns the backend registered under name
func New(name string, opts Options) (Backend, error) {
	logger := opts.Logger
	if logger != nil {
		logger = logger.WithBackend(name)
	}

	switch name {
	case "", BackendExec:
		return NewExecBackend(ExecBackendOptions{Binary: opts.GitBinary, Logger: logger}), nil
	case BackendGoGit:
		return NewGoGitBackend(GoGitBackendOptions{Logger: logger}), nil
	case BackendArchive:
		return NewArchiveBackend(ArchiveBackendOptions{HTTPClient: opts.HTTPClient, Logger: logger}), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, name)
	}
}
