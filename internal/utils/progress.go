package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescFetching = "Fetching"
	DescCopying  = "Copying"
)

// NewProgressBar creates a consistently styled progress bar.
//
// Parameters:
//   - total: Total number of items. Use -1 for unknown totals (indeterminate/spinner mode).
//   - description: Text description to show before the progress bar (e.g., DescCopying).
//   - w: destination of the rendered bar; nil means io.Discard.
//
// The copier does not know the size of the tree up front, so it uses the
// spinner form:
//
//	bar := utils.NewProgressBar(-1, utils.DescCopying, os.Stderr)
//	defer bar.Finish()
func NewProgressBar(total int, description string, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}

	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
