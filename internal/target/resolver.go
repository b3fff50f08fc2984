// Package target turns user input into a canonical domain.FetchTarget.
//
// Two input modes are supported and produce identical targets for the same
// values:
//
//	r := target.NewResolver("github.com")
//	t1, _ := r.ParseURL("https://github.com/acme/widgets/tree/main/examples/basic")
//	t2, _ := r.FromFields("acme/widgets", "main", "examples/basic")
//
// The caller decides which mode applies; the resolver never guesses.
package target

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

const (
	treeSegment = "tree"
	blobSegment = "blob"
)

// Resolver builds fetch targets from directory URLs or discrete fields
type Resolver struct {
	defaultHost string
}

// NewResolver creates a resolver. defaultHost is used for discrete-field input.
func NewResolver(defaultHost string) *Resolver {
	if defaultHost == "" {
		defaultHost = domain.DefaultHost
	}
	return &Resolver{defaultHost: defaultHost}
}

// ParseURL resolves a directory URL of the form
// https://<host>/<owner>/<repo>/tree/<branch>/<subpath...>
func (r *Resolver) ParseURL(rawURL string) (domain.FetchTarget, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return domain.FetchTarget{}, invalid("URL must not be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.FetchTarget{}, invalid("cannot parse URL %q: %v", rawURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return domain.FetchTarget{}, invalid("unsupported URL scheme %q in %s", u.Scheme, rawURL)
	}
	if u.Host == "" {
		return domain.FetchTarget{}, invalid("URL has no host: %s", rawURL)
	}

	segments := splitSegments(u.EscapedPath())
	if len(segments) < 2 {
		return domain.FetchTarget{}, invalid("URL does not name an owner/repo: %s", rawURL)
	}

	owner, err := url.PathUnescape(segments[0])
	if err != nil {
		return domain.FetchTarget{}, invalid("cannot decode owner in %s: %v", rawURL, err)
	}
	repo, err := url.PathUnescape(segments[1])
	if err != nil {
		return domain.FetchTarget{}, invalid("cannot decode repo in %s: %v", rawURL, err)
	}
	repo = strings.TrimSuffix(repo, ".git")

	if len(segments) < 4 || segments[2] != treeSegment {
		if len(segments) >= 3 && segments[2] == blobSegment {
			return domain.FetchTarget{}, invalid("URL points at a single file, only directories are supported: %s", rawURL)
		}
		return domain.FetchTarget{}, invalid("URL must contain tree/<branch>/<path>: %s", rawURL)
	}

	branch, err := url.PathUnescape(segments[3])
	if err != nil {
		return domain.FetchTarget{}, invalid("cannot decode branch in %s: %v", rawURL, err)
	}

	subpath, err := url.PathUnescape(strings.Join(segments[4:], "/"))
	if err != nil {
		return domain.FetchTarget{}, invalid("cannot decode path in %s: %v", rawURL, err)
	}

	target, err := r.build(u.Host, owner, repo, branch, subpath)
	if err != nil {
		return target, err
	}
	if u.Scheme == "http" {
		target.Scheme = "http"
	}
	return target, nil
}

// FromFields resolves discrete owner/repo, branch and subpath values
func (r *Resolver) FromFields(repository, branch, subpath string) (domain.FetchTarget, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return domain.FetchTarget{}, domain.NewValidationError("repo", "must not be empty")
	}

	parts := strings.Split(strings.TrimSuffix(repository, ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.FetchTarget{}, domain.NewValidationError("repo", fmt.Sprintf("must be owner/repo, got %q", repository))
	}

	return r.build(r.defaultHost, parts[0], parts[1], strings.TrimSpace(branch), subpath)
}

func (r *Resolver) build(host, owner, repo, branch, subpath string) (domain.FetchTarget, error) {
	if owner == "" || repo == "" {
		return domain.FetchTarget{}, domain.NewValidationError("repo", "owner and repo must not be empty")
	}
	for _, name := range []string{owner, repo} {
		if strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, "-") || name == "." || name == ".." {
			return domain.FetchTarget{}, domain.NewValidationError("repo", fmt.Sprintf("invalid owner or repo name %q", name))
		}
	}
	if err := ValidateBranch(branch); err != nil {
		return domain.FetchTarget{}, err
	}

	clean, err := NormalizeSubpath(subpath)
	if err != nil {
		return domain.FetchTarget{}, err
	}

	return domain.FetchTarget{
		Host:    host,
		Owner:   owner,
		Repo:    repo,
		Branch:  branch,
		Subpath: clean,
	}, nil
}

// NormalizeSubpath cleans a repository-relative directory path and rejects
// empty, absolute-escaping and parent-referencing values.
func NormalizeSubpath(subpath string) (string, error) {
	clean := utils.NormalizeSlashPath(subpath)
	if clean == "" {
		return "", domain.NewValidationError("path", "must name a subdirectory of the repository")
	}
	if domain.HasParentSegment(clean) {
		return "", domain.NewValidationError("path", fmt.Sprintf("must not contain '..': %q", subpath))
	}

	segments := splitSegments(clean)
	kept := segments[:0]
	for _, seg := range segments {
		if seg == "." {
			continue
		}
		if strings.HasPrefix(seg, "-") {
			return "", domain.NewValidationError("path", fmt.Sprintf("segment must not start with '-': %q", subpath))
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return "", domain.NewValidationError("path", "must name a subdirectory of the repository")
	}
	return strings.Join(kept, "/"), nil
}

// ValidateBranch applies the git ref-name rules to a branch name. A name
// that git could read as a command-line option is rejected as well.
func ValidateBranch(branch string) error {
	reject := func(reason string) error {
		return domain.NewValidationError("branch", fmt.Sprintf("%s: %q", reason, branch))
	}

	switch {
	case branch == "":
		return domain.NewValidationError("branch", "must not be empty")
	case strings.HasPrefix(branch, "-"):
		return reject("must not start with '-'")
	case branch == "@":
		return reject("must not be '@'")
	case strings.HasPrefix(branch, "/") || strings.HasSuffix(branch, "/"):
		return reject("must not start or end with '/'")
	case strings.HasSuffix(branch, "."):
		return reject("must not end with '.'")
	case strings.Contains(branch, "//"), strings.Contains(branch, ".."), strings.Contains(branch, "@{"):
		return reject("contains a forbidden sequence")
	}

	for _, c := range branch {
		if c < 0x20 || c == 0x7f || strings.ContainsRune(" ~^:?*[\\", c) {
			return reject("contains a forbidden character")
		}
	}
	for _, comp := range strings.Split(branch, "/") {
		if strings.HasPrefix(comp, ".") || strings.HasSuffix(comp, ".lock") {
			return reject("component must not start with '.' or end with '.lock'")
		}
	}
	return nil
}

func splitSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidTarget, fmt.Sprintf(format, args...))
}
