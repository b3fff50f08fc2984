package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrNoEntries indicates the manifest has no entries defined
	ErrNoEntries = errors.New("manifest must contain at least one entry")

	// ErrMissingDest indicates an entry is missing the required dest field
	ErrMissingDest = errors.New("entry dest cannot be empty")

	// ErrAmbiguousEntry indicates an entry sets both url and repo/branch/path
	ErrAmbiguousEntry = errors.New("entry must use either url or repo/branch/path, not both")

	// ErrIncompleteEntry indicates an entry names no complete source
	ErrIncompleteEntry = errors.New("entry needs url or all of repo, branch and path")

	// ErrInvalidFormat indicates the manifest file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("manifest must be valid YAML or JSON")

	// ErrFileNotFound indicates the manifest file does not exist
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)
