package manifest

import (
	"fmt"
	"strings"
)

// Config represents the complete manifest configuration
type Config struct {
	Entries []Entry `yaml:"entries" json:"entries"`
	Options Options `yaml:"options" json:"options"`
}

// Entry represents one extraction
type Entry struct {
	URL    string `yaml:"url,omitempty" json:"url,omitempty"`
	Repo   string `yaml:"repo,omitempty" json:"repo,omitempty"`
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Dest   string `yaml:"dest" json:"dest"`
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error"`
}

// UsesURL reports whether the entry is in URL mode
func (e Entry) UsesURL() bool {
	return strings.TrimSpace(e.URL) != ""
}

func (e Entry) hasFields() bool {
	return e.Repo != "" || e.Branch != "" || e.Path != ""
}

// Validate checks that the entry names exactly one complete source and a
// destination
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Dest) == "" {
		return ErrMissingDest
	}
	if e.UsesURL() {
		if e.hasFields() {
			return ErrAmbiguousEntry
		}
		return nil
	}
	if e.Repo == "" || e.Branch == "" || e.Path == "" {
		return ErrIncompleteEntry
	}
	return nil
}

// String returns a short label for logs
func (e Entry) String() string {
	if e.UsesURL() {
		return e.URL
	}
	return fmt.Sprintf("%s@%s:%s", e.Repo, e.Branch, e.Path)
}

// Validate validates the manifest configuration
func (c *Config) Validate() error {
	if len(c.Entries) == 0 {
		return ErrNoEntries
	}
	for i, entry := range c.Entries {
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		ContinueOnError: false,
	}
}
