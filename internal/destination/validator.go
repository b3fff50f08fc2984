// Package destination decides whether a local path is safe to extract into.
package destination

import (
	"errors"
	"fmt"
	"os"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

// Validate classifies path as missing, empty directory or rejected.
// It only reads the filesystem. The decision is a snapshot and is not
// re-checked before copying.
func Validate(path string) (domain.DestinationDecision, error) {
	if path == "" {
		return domain.DestinationDecision{}, fmt.Errorf("%w: destination path must not be empty", domain.ErrDestinationRejected)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DestinationDecision{Kind: domain.WritableMissing}, nil
		}
		return domain.DestinationDecision{}, fmt.Errorf("%w: cannot inspect %s: %v", domain.ErrDestinationRejected, path, err)
	}

	if !info.IsDir() {
		return domain.DestinationDecision{
			Kind:   domain.Rejected,
			Reason: "path exists and is not a directory",
		}, nil
	}

	empty, err := utils.IsDirEmpty(path)
	if err != nil {
		return domain.DestinationDecision{}, fmt.Errorf("%w: cannot read %s: %v", domain.ErrDestinationRejected, path, err)
	}
	if !empty {
		return domain.DestinationDecision{
			Kind:   domain.Rejected,
			Reason: "directory exists and is not empty; only missing or empty directories are written",
		}, nil
	}

	return domain.DestinationDecision{Kind: domain.WritableEmpty}, nil
}

// Check validates path and converts a rejection into an error
func Check(path string) (domain.DestinationDecision, error) {
	decision, err := Validate(path)
	if err != nil {
		return decision, err
	}
	return decision, decision.Err(path)
}
