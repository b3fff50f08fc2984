package domain

import (
	"fmt"
	"strings"
)

// Step names a single stage of the sparse fetch
type Step string

// Fetch steps in execution order
const (
	StepInit           Step = "init"
	StepRemoteAdd      Step = "remote-add"
	StepSparseCheckout Step = "sparse-checkout"
	StepFetch          Step = "fetch"
	StepCheckout       Step = "checkout"
	StepVerify         Step = "verify"
)

// DefaultHost is used when a target is given as discrete fields
const DefaultHost = "github.com"

// MetadataDirName is the version-control metadata entry skipped by the copier
const MetadataDirName = ".git"

// FetchTarget identifies one directory of one branch of a remote repository
type FetchTarget struct {
	// Scheme is "http" for targets parsed from plain-HTTP URLs; empty means https
	Scheme  string
	Host    string
	Owner   string
	Repo    string
	Branch  string
	Subpath string
}

// Repository returns the owner/repo pair
func (t FetchTarget) Repository() string {
	return t.Owner + "/" + t.Repo
}

func (t FetchTarget) base() string {
	scheme := t.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := t.Host
	if host == "" {
		host = DefaultHost
	}
	return scheme + "://" + host
}

// CloneURL returns the canonical clone URL for the target repository
func (t FetchTarget) CloneURL() string {
	return fmt.Sprintf("%s/%s/%s.git", t.base(), t.Owner, t.Repo)
}

// TreeURL returns the browsable directory URL the target was (or could be) parsed from
func (t FetchTarget) TreeURL() string {
	return fmt.Sprintf("%s/%s/%s/tree/%s/%s", t.base(), t.Owner, t.Repo, t.Branch, t.Subpath)
}

func (t FetchTarget) String() string {
	return fmt.Sprintf("%s@%s:%s", t.Repository(), t.Branch, t.Subpath)
}

// DecisionKind classifies a destination path
type DecisionKind int

const (
	// WritableMissing means the path does not exist yet
	WritableMissing DecisionKind = iota
	// WritableEmpty means the path is an existing empty directory
	WritableEmpty
	// Rejected means the path is a file or a non-empty directory
	Rejected
)

func (k DecisionKind) String() string {
	switch k {
	case WritableMissing:
		return "writable-missing"
	case WritableEmpty:
		return "writable-empty"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// DestinationDecision is the outcome of validating a destination path
type DestinationDecision struct {
	Kind   DecisionKind
	Reason string
}

// Writable reports whether the copier may write into the destination
func (d DestinationDecision) Writable() bool {
	return d.Kind == WritableMissing || d.Kind == WritableEmpty
}

// Err returns ErrDestinationRejected wrapped with the reason, or nil when writable
func (d DestinationDecision) Err(path string) error {
	if d.Writable() {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrDestinationRejected, path, d.Reason)
}

// CopyResult summarizes a completed copy
type CopyResult struct {
	Files int
	Dirs  int
	Bytes int64
}

// Total returns the number of copied entries
func (r CopyResult) Total() int {
	return r.Files + r.Dirs
}

// HasParentSegment reports whether a slash-separated path contains a ".." segment
func HasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
