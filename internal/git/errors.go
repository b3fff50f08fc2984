package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOptionLike is returned for a branch or path that git would parse as an option
var ErrOptionLike = errors.New("argument must not start with '-'")

func checkArgs(args ...string) error {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return fmt.Errorf("%w: %q", ErrOptionLike, a)
		}
	}
	return nil
}

// CommandError is returned when a backend step fails with diagnostic output
// from the underlying tool (stderr for the git executable, the response
// status for the archive backend).
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the captured tool output
func (e *CommandError) Diagnostic() string {
	return e.Stderr
}
