package git

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/git-get/internal/domain"
)

// Backends without native sparse-checkout state keep their patterns where
// the git executable would: <dir>/.git/info/sparse-checkout, one per line.

func sparseFile(dir string) string {
	return filepath.Join(dir, domain.MetadataDirName, "info", "sparse-checkout")
}

func writeSparsePaths(dir string, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no sparse-checkout paths given")
	}
	file := sparseFile(dir)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(strings.Join(paths, "\n")+"\n"), 0644)
}

func readSparsePaths(dir string) ([]string, error) {
	f, err := os.Open(sparseFile(dir))
	if err != nil {
		return nil, fmt.Errorf("sparse-checkout not configured: %w", err)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, strings.Trim(line, "/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("sparse-checkout file is empty")
	}
	return paths, nil
}

// matchesSparse reports whether the slash-separated rel path lies inside one
// of the sparse directories
func matchesSparse(rel string, paths []string) bool {
	for _, p := range paths {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
