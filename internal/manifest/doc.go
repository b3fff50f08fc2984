// Package manifest provides types and utilities for loading and validating
// git-get manifest files. A manifest lists several extractions that are run
// one after another in a single invocation.
//
// # Manifest Format
//
// Manifests can be written in YAML or JSON format:
//
//	entries:
//	  - url: https://github.com/acme/widgets/tree/main/examples/basic
//	    dest: ./basic
//	  - repo: acme/widgets
//	    branch: main
//	    path: docs
//	    dest: ./docs
//	options:
//	  continue_on_error: true
//
// Each entry names its source either with url or with all of repo, branch
// and path, never both. Relative dest values are resolved against the
// current working directory, like the command line flag.
//
// # Usage
//
//	loader := manifest.NewLoader()
//	cfg, err := loader.Load("extract.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, entry := range cfg.Entries {
//	    // Run each extraction
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoEntries: manifest has no entries defined
//   - ErrMissingDest: entry has no dest
//   - ErrAmbiguousEntry: entry sets both url and repo/branch/path
//   - ErrIncompleteEntry: entry has neither a url nor all of repo/branch/path
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
