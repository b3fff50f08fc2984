package app

import (
	"strings"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/manifest"
	"github.com/quantmind-br/git-get/internal/target"
)

// Mode identifies how the caller named what to extract
type Mode string

const (
	ModeURL      Mode = "url"
	ModeFields   Mode = "fields"
	ModeManifest Mode = "manifest"
)

// Input is the raw, unvalidated description of a target
type Input struct {
	URL      string
	Repo     string
	Branch   string
	Path     string
	Manifest string
}

func (in Input) hasFields() bool {
	return in.Repo != "" || in.Branch != "" || in.Path != ""
}

// InputFromEntry converts a manifest entry into an Input
func InputFromEntry(e manifest.Entry) Input {
	return Input{
		URL:    strings.TrimSpace(e.URL),
		Repo:   e.Repo,
		Branch: e.Branch,
		Path:   e.Path,
	}
}

// DetectMode determines which input mode is in use. Exactly one of a URL,
// the repo/branch/path fields, or a manifest must be given.
func DetectMode(in Input) (Mode, error) {
	hasURL := strings.TrimSpace(in.URL) != ""

	switch {
	case in.Manifest != "":
		if hasURL || in.hasFields() {
			return "", domain.NewValidationError("manifest", "cannot be combined with a URL or --repo/--branch/--path")
		}
		return ModeManifest, nil
	case hasURL && in.hasFields():
		return "", domain.NewValidationError("target", "use either a URL or --repo/--branch/--path, not both")
	case hasURL:
		return ModeURL, nil
	case in.hasFields():
		return ModeFields, nil
	default:
		return "", domain.NewValidationError("target", "a URL or --repo, --branch and --path are required")
	}
}

// ResolveTarget validates in and turns it into a FetchTarget. Manifest mode
// has no single target and is rejected.
func ResolveTarget(resolver *target.Resolver, in Input) (domain.FetchTarget, error) {
	mode, err := DetectMode(in)
	if err != nil {
		return domain.FetchTarget{}, err
	}

	switch mode {
	case ModeURL:
		return resolver.ParseURL(strings.TrimSpace(in.URL))
	case ModeFields:
		return resolver.FromFields(in.Repo, in.Branch, in.Path)
	default:
		return domain.FetchTarget{}, domain.NewValidationError("target", "a manifest names several targets")
	}
}
