// Package ignore records extracted destinations in the working directory's
// ignore file.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/git-get/internal/utils"
)

// Marker is the comment written above every added entry
const Marker = "# Added by git-get"

// Updater appends destinations to an existing ignore file
type Updater struct {
	workDir  string
	fileName string
	logger   *utils.Logger
}

// Options contains options for creating an Updater
type Options struct {
	WorkDir  string // empty = current directory
	FileName string // empty = .gitignore
	Logger   *utils.Logger
}

// New creates a new Updater
func New(opts Options) *Updater {
	fileName := opts.FileName
	if fileName == "" {
		fileName = ".gitignore"
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Updater{
		workDir:  opts.WorkDir,
		fileName: fileName,
		logger:   logger.WithComponent("ignore"),
	}
}

// Path returns the ignore file location
func (u *Updater) Path() string {
	return filepath.Join(u.workDir, u.fileName)
}

// Update appends dest to the ignore file unless an equivalent entry is
// already present. A missing ignore file is left alone. The returned bool
// reports whether a line was written.
func (u *Updater) Update(dest string) (bool, error) {
	file := u.Path()

	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			u.logger.Debug().Str("file", file).Msg("No ignore file, skipping")
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", file, err)
	}

	entry, ok := u.entryFor(dest)
	if !ok {
		u.logger.Debug().Str("dest", dest).Msg("Destination outside working directory, skipping")
		return false, nil
	}

	if Contains(string(data), entry) {
		return false, nil
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += "\n" + Marker + "\n" + entry + "\n"

	info, err := os.Stat(file)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", file, err)
	}
	if err := os.WriteFile(file, []byte(content), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", file, err)
	}

	u.logger.Info().Str("entry", entry).Str("file", file).Msg("Added destination to ignore file")
	return true, nil
}

// entryFor converts dest into the slash-separated form written to the file.
// Absolute destinations are made relative to the working directory. A
// destination outside it cannot be ignored and reports false.
func (u *Updater) entryFor(dest string) (string, bool) {
	if filepath.IsAbs(dest) {
		base, err := filepath.Abs(u.workDir)
		if err != nil {
			return "", false
		}
		rel, err := filepath.Rel(base, dest)
		if err != nil || !utils.WithinDir(base, dest) || rel == "." {
			return "", false
		}
		dest = rel
	}

	entry := Normalize(filepath.ToSlash(dest))
	if entry == "" || entry == "." || entry == ".." || strings.HasPrefix(entry, "../") {
		return "", false
	}
	return entry, true
}

// Normalize strips leading "./" segments and trailing slashes
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return strings.TrimRight(p, "/")
}

// Contains reports whether content already has a non-comment line
// equivalent to the normalized entry (x, ./x, x/, /x and combinations).
func Contains(content, entry string) bool {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if Normalize(strings.TrimPrefix(line, "/")) == entry {
			return true
		}
	}
	return false
}
