// Package app wires the extraction pipeline together: destination check,
// scratch workspace, sparse fetch, copy and ignore-file update.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/quantmind-br/git-get/internal/config"
	"github.com/quantmind-br/git-get/internal/copier"
	"github.com/quantmind-br/git-get/internal/destination"
	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/fetcher"
	"github.com/quantmind-br/git-get/internal/git"
	"github.com/quantmind-br/git-get/internal/ignore"
	"github.com/quantmind-br/git-get/internal/manifest"
	"github.com/quantmind-br/git-get/internal/target"
	"github.com/quantmind-br/git-get/internal/utils"
	"github.com/quantmind-br/git-get/internal/workspace"
	"github.com/quantmind-br/git-get/pkg/version"
)

// Orchestrator coordinates one or more extractions
type Orchestrator struct {
	config     *config.Config
	logger     *utils.Logger
	resolver   *target.Resolver
	workspaces *workspace.Manager
	fetcher    *fetcher.Fetcher
	copier     *copier.Copier
	ignore     *ignore.Updater
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config  *config.Config
	Verbose bool
	// Logger overrides the logger built from Config.Logging
	Logger *utils.Logger
	// Backend overrides the backend selected by Config.Fetch.Backend
	Backend git.Backend
	// Progress receives the copy spinner when Config.Output.Progress is set
	Progress io.Writer
	// WorkDir holds the ignore file; empty = current directory
	WorkDir string
	// RemoteURL overrides the clone URL derived from each target
	RemoteURL func(domain.FetchTarget) string
}

// Request describes a single extraction
type Request struct {
	Target      domain.FetchTarget
	Destination string
	Token       string
}

// Result reports a completed extraction
type Result struct {
	Target        domain.FetchTarget
	Destination   string
	Decision      domain.DestinationDecision
	Copy          domain.CopyResult
	IgnoreUpdated bool
	// IgnoreWarning is set when the ignore file could not be updated; the
	// extraction itself still succeeded
	IgnoreWarning error
	Duration      time.Duration
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = git.New(cfg.Fetch.Backend, git.Options{
			GitBinary:  cfg.Fetch.GitBinary,
			HTTPClient: fetcher.NewHTTPClient(cfg.Fetch.Timeout, version.UserAgent()),
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
	}

	var progress io.Writer
	if cfg.Output.Progress {
		progress = opts.Progress
	}

	return &Orchestrator{
		config:   cfg,
		logger:   logger,
		resolver: target.NewResolver(cfg.Fetch.Host),
		workspaces: workspace.NewManager(workspace.ManagerOptions{
			BaseDir: cfg.Workspace.Dir,
			Prefix:  cfg.Workspace.Prefix,
			Logger:  logger.WithComponent("workspace"),
		}),
		fetcher: fetcher.New(fetcher.Options{
			Backend:    backend,
			RemoteName: cfg.Fetch.RemoteName,
			Depth:      cfg.Fetch.Depth,
			Timeout:    cfg.Fetch.Timeout,
			Token:      cfg.Fetch.Token,
			Logger:     logger,
			RemoteURL:  opts.RemoteURL,
		}),
		copier: copier.New(copier.Options{
			Logger:   logger,
			Progress: progress,
		}),
		ignore: ignore.New(ignore.Options{
			WorkDir:  opts.WorkDir,
			FileName: cfg.Output.IgnoreFile,
			Logger:   logger,
		}),
	}, nil
}

// Resolve validates in and returns the target it names
func (o *Orchestrator) Resolve(in Input) (domain.FetchTarget, error) {
	return ResolveTarget(o.resolver, in)
}

// Run performs one extraction. A rejected destination stops the run before
// any workspace is created. The workspace is always released before Run
// returns; the ignore file is only touched after a successful copy.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	log := o.logger.WithTarget(req.Target.Repository(), req.Target.Branch, req.Target.Subpath)

	log.Info().
		Str("source", req.Target.TreeURL()).
		Str("dest", req.Destination).
		Str("backend", o.fetcher.Backend()).
		Msg("Starting extraction")

	decision, err := destination.Check(req.Destination)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("decision", decision.Kind.String()).Msg("Destination accepted")

	result := &Result{
		Target:      req.Target,
		Destination: req.Destination,
		Decision:    decision,
	}

	result.Copy, err = o.extract(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Extraction cancelled")
		}
		return result, err
	}

	if o.config.Output.UpdateGitignore {
		added, err := o.ignore.Update(req.Destination)
		if err != nil {
			result.IgnoreWarning = err
			log.Warn().Err(err).Str("file", o.ignore.Path()).Msg("Could not update ignore file")
		}
		result.IgnoreUpdated = added
	}

	result.Duration = time.Since(startTime)
	log.Info().
		Int("files", result.Copy.Files).
		Int("dirs", result.Copy.Dirs).
		Int64("bytes", result.Copy.Bytes).
		Dur("duration", result.Duration).
		Msg("Extraction completed")

	return result, nil
}

// extract runs the fetch and copy inside a scratch workspace that is
// released on every path out of this function
func (o *Orchestrator) extract(ctx context.Context, req Request) (domain.CopyResult, error) {
	var copied domain.CopyResult

	err := o.workspaces.With(func(ws *workspace.Workspace) error {
		f := o.fetcher
		if req.Token != "" {
			f = f.WithToken(req.Token)
		}

		src, err := f.Fetch(ctx, req.Target, ws.Path())
		if err != nil {
			return err
		}

		// Links may point anywhere in the checkout but never outside it
		copied, err = o.copier.CopyWithin(ctx, src, req.Destination, ws.Path())
		return err
	})
	return copied, err
}

// ManifestResult represents the result of processing one manifest entry
type ManifestResult struct {
	Entry    manifest.Entry
	Result   *Result
	Error    error
	Duration time.Duration
}

// RunManifest executes the manifest entries one at a time, in order. Each
// entry is a complete, independent Run. Unless continue_on_error is set the
// first failure stops the batch.
func (o *Orchestrator) RunManifest(ctx context.Context, manifestCfg *manifest.Config, token string) ([]ManifestResult, error) {
	startTime := time.Now()
	total := len(manifestCfg.Entries)

	o.logger.Info().
		Int("entries", total).
		Bool("continue_on_error", manifestCfg.Options.ContinueOnError).
		Msg("Starting manifest execution")

	results := make([]ManifestResult, 0, total)
	var firstError error
	failed := 0

	for idx, entry := range manifestCfg.Entries {
		if err := ctx.Err(); err != nil {
			o.logger.Warn().Msg("Manifest execution cancelled")
			return results, err
		}

		entryStart := time.Now()
		o.logger.Info().
			Int("entry_idx", idx).
			Int("total", total).
			Str("entry", entry.String()).
			Msg("Processing entry")

		var res *Result
		tgt, err := o.Resolve(InputFromEntry(entry))
		if err == nil {
			res, err = o.Run(ctx, Request{Target: tgt, Destination: entry.Dest, Token: token})
		}

		results = append(results, ManifestResult{
			Entry:    entry,
			Result:   res,
			Error:    err,
			Duration: time.Since(entryStart),
		})

		if err == nil {
			continue
		}

		failed++
		o.logger.Error().
			Err(err).
			Int("entry_idx", idx).
			Str("entry", entry.String()).
			Msg("Entry extraction failed")

		if firstError == nil {
			firstError = fmt.Errorf("entry %s failed: %w", entry.String(), err)
		}
		if !manifestCfg.Options.ContinueOnError {
			o.logger.Warn().Msg("Stopping execution (continue_on_error=false)")
			return results, firstError
		}
	}

	o.logger.Info().
		Dur("total_duration", time.Since(startTime)).
		Int("total", total).
		Int("success", total-failed).
		Int("failed", failed).
		Msg("Manifest execution completed")

	if firstError != nil {
		return results, fmt.Errorf("manifest completed with %d/%d failures: %w", failed, total, firstError)
	}
	return results, nil
}
