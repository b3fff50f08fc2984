package git

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

const archiveFileName = "archive.tar.gz"

// ArchiveBackend downloads a branch snapshot as a tarball and extracts only
// the sparse paths. It produces no history; the depth argument is ignored.
// Step state lives under <dir>/.git so it is never copied out.
type ArchiveBackend struct {
	httpClient *http.Client
	logger     *utils.Logger
}

// ArchiveBackendOptions contains options for creating an ArchiveBackend
type ArchiveBackendOptions struct {
	HTTPClient *http.Client
	Logger     *utils.Logger
}

// NewArchiveBackend creates a new ArchiveBackend
func NewArchiveBackend(opts ArchiveBackendOptions) *ArchiveBackend {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &ArchiveBackend{
		httpClient: client,
		logger:     opts.Logger,
	}
}

func (b *ArchiveBackend) Name() string {
	return "archive"
}

func (b *ArchiveBackend) metaDir(dir string) string {
	return filepath.Join(dir, domain.MetadataDirName)
}

func (b *ArchiveBackend) Init(ctx context.Context, dir string) error {
	return os.MkdirAll(filepath.Join(b.metaDir(dir), "remotes"), 0755)
}

func (b *ArchiveBackend) AddRemote(ctx context.Context, dir, name, remoteURL string) error {
	file := filepath.Join(b.metaDir(dir), "remotes", name)
	if _, err := os.Stat(file); err == nil {
		return fmt.Errorf("remote %s already exists", name)
	}
	return os.WriteFile(file, []byte("URL: "+remoteURL+"\n"), 0644)
}

func (b *ArchiveBackend) ConfigureSparse(ctx context.Context, dir string, paths []string) error {
	return writeSparsePaths(dir, paths)
}

func (b *ArchiveBackend) Fetch(ctx context.Context, dir, remote, branch string, depth int) error {
	remoteURL, err := b.remoteURL(dir, remote)
	if err != nil {
		return err
	}

	archiveURL := BuildArchiveURL(remoteURL, branch)
	if b.logger != nil {
		b.logger.Debug().Str("archive_url", archiveURL).Msg("Downloading archive")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &CommandError{
			Args:   []string{"GET", archiveURL},
			Stderr: resp.Status,
			Err:    archiveStatusError(resp.StatusCode),
		}
	}

	out, err := os.Create(filepath.Join(b.metaDir(dir), archiveFileName))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("download failed: %w", err)
	}
	return out.Close()
}

func (b *ArchiveBackend) Checkout(ctx context.Context, dir, remote, branch string) error {
	paths, err := readSparsePaths(dir)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(b.metaDir(dir), archiveFileName))
	if err != nil {
		return fmt.Errorf("nothing fetched: %w", err)
	}
	defer f.Close()

	return ExtractTarGz(ctx, f, dir, paths)
}

func (b *ArchiveBackend) remoteURL(dir, remote string) (string, error) {
	data, err := os.ReadFile(filepath.Join(b.metaDir(dir), "remotes", remote))
	if err != nil {
		return "", fmt.Errorf("unknown remote %s: %w", remote, err)
	}
	line := strings.TrimSpace(string(data))
	return strings.TrimSpace(strings.TrimPrefix(line, "URL:")), nil
}

// BuildArchiveURL derives the branch tarball URL from a clone URL:
// https://host/owner/repo.git -> https://host/owner/repo/archive/refs/heads/<branch>.tar.gz
func BuildArchiveURL(cloneURL, branch string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(cloneURL, "/"), ".git")
	return fmt.Sprintf("%s/archive/refs/heads/%s.tar.gz", base, url.PathEscape(branch))
}

func archiveStatusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return errors.New("archive not found (404)")
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("access denied (%d)", status)
	default:
		return fmt.Errorf("download failed with status: %d", status)
	}
}

// ExtractTarGz extracts the entries of a branch tarball that fall under one
// of paths into destDir. The archive's single top-level directory is
// stripped. Entries that would land outside destDir, directly or through a
// symlink, are skipped, as are symlinks pointing outside destDir.
func ExtractTarGz(ctx context.Context, r io.Reader, destDir string, paths []string) error {
	root, err := filepath.EvalSymlinks(destDir)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip reader failed: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read failed: %w", err)
		}

		parts := strings.SplitN(header.Name, "/", 2)
		if len(parts) < 2 || parts[1] == "" {
			continue
		}
		rel := strings.TrimSuffix(path.Clean(parts[1]), "/")
		if !matchesSparse(rel, paths) {
			continue
		}

		targetPath := filepath.Join(root, filepath.FromSlash(rel))
		if !utils.WithinDir(root, targetPath) || !resolvesWithin(root, targetPath) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("mkdir failed: %w", err)
			}
		case tar.TypeReg:
			if err := writeTarFile(tr, targetPath, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			linkTarget := header.Linkname
			if !filepath.IsAbs(linkTarget) {
				linkTarget = filepath.Join(filepath.Dir(targetPath), linkTarget)
			}
			if !utils.WithinDir(root, linkTarget) || !resolvesWithin(root, linkTarget) {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fmt.Errorf("mkdir failed: %w", err)
			}
			if err := os.Symlink(header.Linkname, targetPath); err != nil {
				return fmt.Errorf("symlink failed: %w", err)
			}
		}
	}

	return nil
}

// resolvesWithin reports whether p, after resolving symlinks already on
// disk, still lies under root
func resolvesWithin(root, p string) bool {
	resolved, err := utils.ResolveExisting(p)
	if err != nil {
		return false
	}
	return utils.WithinDir(root, resolved)
}

func writeTarFile(r io.Reader, targetPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}
	if mode == 0 {
		mode = 0644
	}

	file, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("copy failed: %w", err)
	}
	return file.Close()
}
