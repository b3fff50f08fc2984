// Package copier reproduces a checked-out directory tree at a destination,
// leaving out version-control metadata.
package copier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/utils"
)

// Copier copies directory trees, skipping every entry named .git
type Copier struct {
	logger   *utils.Logger
	progress io.Writer
}

// Options contains options for creating a Copier
type Options struct {
	Logger *utils.Logger
	// Progress receives a spinner while copying; nil disables it
	Progress io.Writer
}

// New creates a new Copier
func New(opts Options) *Copier {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Copier{
		logger:   logger.WithComponent("copier"),
		progress: opts.Progress,
	}
}

type copyRun struct {
	ctx    context.Context
	root   string
	bar    *progressbar.ProgressBar
	result domain.CopyResult
}

// Copy reproduces src under dst. dst is created if missing. Symlinks are
// followed and their targets copied as regular content; a link resolving
// outside src fails with domain.ErrSymlinkEscape. The first failure aborts
// the copy with a *domain.CopyError; entries already written are left in
// place.
func (c *Copier) Copy(ctx context.Context, src, dst string) (domain.CopyResult, error) {
	return c.CopyWithin(ctx, src, dst, src)
}

// CopyWithin is Copy with symlinks allowed to resolve anywhere under root,
// which must contain src.
func (c *Copier) CopyWithin(ctx context.Context, src, dst, root string) (domain.CopyResult, error) {
	run := &copyRun{ctx: ctx}
	if c.progress != nil {
		run.bar = utils.NewProgressBar(-1, utils.DescCopying, c.progress)
		defer func() { _ = run.bar.Finish() }()
	}

	info, err := os.Stat(src)
	if err != nil {
		return run.result, domain.NewCopyError(src, err)
	}
	if !info.IsDir() {
		return run.result, domain.NewCopyError(src, domain.ErrNotDirectory)
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return run.result, domain.NewCopyError(dst, err)
	}

	realSrc, err := filepath.EvalSymlinks(src)
	if err != nil {
		return run.result, domain.NewCopyError(src, err)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return run.result, domain.NewCopyError(root, err)
	}
	if !utils.WithinDir(realRoot, realSrc) {
		return run.result, domain.NewCopyError(src, domain.ErrSymlinkEscape)
	}
	run.root = realRoot

	if err := run.copyDir(src, dst, []string{realSrc}); err != nil {
		c.logger.Debug().Err(err).Int("copied", run.result.Total()).Msg("Copy aborted")
		return run.result, err
	}

	c.logger.Debug().
		Int("files", run.result.Files).
		Int("dirs", run.result.Dirs).
		Int64("bytes", run.result.Bytes).
		Msg("Copy complete")

	return run.result, nil
}

// copyDir copies the children of src into the existing directory dst.
// ancestors holds the resolved paths of every directory on the current
// branch of the walk.
func (r *copyRun) copyDir(src, dst string, ancestors []string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return domain.NewCopyError(src, err)
	}

	for _, entry := range entries {
		if err := r.ctx.Err(); err != nil {
			return domain.NewCopyError(src, err)
		}
		if entry.Name() == domain.MetadataDirName {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(srcPath)
			if err != nil {
				return domain.NewCopyError(srcPath, err)
			}
			if !utils.WithinDir(r.root, resolved) {
				return domain.NewCopyError(srcPath, domain.ErrSymlinkEscape)
			}
		}

		// Stat follows symlinks
		info, err := os.Stat(srcPath)
		if err != nil {
			return domain.NewCopyError(srcPath, err)
		}

		if info.IsDir() {
			if err := r.copySubdir(srcPath, dstPath, info, ancestors); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() {
			return domain.NewCopyError(srcPath, fmt.Errorf("unsupported file type %s", info.Mode().Type()))
		}
		if err := r.copyFile(srcPath, dstPath, info); err != nil {
			return err
		}
	}

	return nil
}

func (r *copyRun) copySubdir(src, dst string, info os.FileInfo, ancestors []string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return domain.NewCopyError(src, err)
	}
	for _, a := range ancestors {
		if a == resolved {
			return domain.NewCopyError(src, domain.ErrSymlinkCycle)
		}
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return domain.NewCopyError(dst, err)
	}
	r.result.Dirs++
	r.tick()

	if err := r.copyDir(src, dst, append(ancestors, resolved)); err != nil {
		return err
	}

	// Applied last so read-only directories can still be filled
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return domain.NewCopyError(dst, err)
	}
	return nil
}

func (r *copyRun) copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return domain.NewCopyError(src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return domain.NewCopyError(dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return domain.NewCopyError(src, err)
	}
	if err := out.Close(); err != nil {
		return domain.NewCopyError(dst, err)
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return domain.NewCopyError(dst, err)
	}

	r.result.Files++
	r.result.Bytes += n
	r.tick()
	return nil
}

func (r *copyRun) tick() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}
