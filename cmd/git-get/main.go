package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/git-get/internal/app"
	"github.com/quantmind-br/git-get/internal/config"
	"github.com/quantmind-br/git-get/internal/domain"
	"github.com/quantmind-br/git-get/internal/git"
	"github.com/quantmind-br/git-get/internal/manifest"
	"github.com/quantmind-br/git-get/internal/utils"
	"github.com/quantmind-br/git-get/internal/workspace"
	"github.com/quantmind-br/git-get/pkg/version"
)

var (
	// Dependencies for testing
	execLookPath = exec.LookPath
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and maps the outcome to a process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return domain.ExitCode(err)
	}
	return domain.ExitOK
}

// cliOptions holds the flag values of one invocation
type cliOptions struct {
	cfgFile     string
	verbose     bool
	dest        string
	repo        string
	branch      string
	path        string
	manifest    string
	noGitignore bool
	noProgress  bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "git-get [url]",
		Short: "Extract one directory of a remote Git branch",
		Long: `git-get copies a single subdirectory of a remote Git repository branch into a
local directory without cloning the whole repository and without leaving any
version-control metadata behind.

The source is named either by a directory URL

  git-get https://github.com/owner/repo/tree/main/examples/basic --dest ./basic

or by discrete fields

  git-get --repo owner/repo --branch main --path examples/basic --dest ./basic

A manifest file runs several extractions in order:

  git-get --manifest extract.yaml`,
		Version: version.Short(),
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return domain.NewValidationError("args", err.Error())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, opts, args)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.NewValidationError("flags", err.Error())
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ~/.git-get/config.yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	local := cmd.Flags()
	local.StringVarP(&opts.dest, "dest", "d", "", "Destination directory (must be missing or empty)")
	local.StringVarP(&opts.repo, "repo", "r", "", "Repository as owner/repo")
	local.StringVarP(&opts.branch, "branch", "b", "", "Branch name")
	local.StringVarP(&opts.path, "path", "p", "", "Subdirectory inside the repository")
	local.StringVarP(&opts.manifest, "manifest", "m", "", "Manifest file listing several extractions")
	local.String("token", "", "Access token (accepted, not yet used)")
	local.String("backend", config.DefaultBackend, "Fetch backend: exec, gogit or archive")
	local.String("host", config.DefaultHost, "Host used with --repo")
	local.String("git-binary", config.DefaultGitBinary, "git executable used by the exec backend")
	local.Duration("timeout", 0, "Fetch timeout (0 = none)")
	local.BoolVar(&opts.noGitignore, "no-gitignore", false, "Do not add the destination to .gitignore")
	local.BoolVar(&opts.noProgress, "no-progress", false, "Disable the copy progress indicator")

	_ = v.BindPFlag("fetch.token", local.Lookup("token"))
	_ = v.BindPFlag("fetch.backend", local.Lookup("backend"))
	_ = v.BindPFlag("fetch.host", local.Lookup("host"))
	_ = v.BindPFlag("fetch.git_binary", local.Lookup("git-binary"))
	_ = v.BindPFlag("fetch.timeout", local.Lookup("timeout"))

	cmd.AddCommand(newDoctorCmd(v, opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads configuration through v, applying --config when given
func loadConfig(v *viper.Viper, opts *cliOptions) (*config.Config, error) {
	if opts.cfgFile != "" {
		v.SetConfigFile(utils.ExpandPath(opts.cfgFile))
	}
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, v *viper.Viper, opts *cliOptions, args []string) error {
	cfg, err := loadConfig(v, opts)
	if err != nil {
		return err
	}
	if opts.noGitignore {
		cfg.Output.UpdateGitignore = false
	}
	if opts.noProgress {
		cfg.Output.Progress = false
	}

	log := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: opts.verbose,
	})

	input := app.Input{
		Repo:     opts.repo,
		Branch:   opts.branch,
		Path:     opts.path,
		Manifest: opts.manifest,
	}
	if len(args) > 0 {
		input.URL = args[0]
	}

	mode, err := app.DetectMode(input)
	if err != nil {
		return err
	}
	if mode != app.ModeManifest && opts.dest == "" {
		return domain.NewValidationError("dest", "--dest is required")
	}
	if mode == app.ModeManifest && opts.dest != "" {
		return domain.NewValidationError("dest", "--dest cannot be used with --manifest; set dest per entry")
	}

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:   cfg,
		Verbose:  opts.verbose,
		Logger:   log,
		Progress: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("Interrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()

	if mode == app.ModeManifest {
		manifestCfg, err := manifest.NewLoader().Load(opts.manifest)
		if err != nil {
			return domain.NewValidationError("manifest", err.Error())
		}
		results, err := orchestrator.RunManifest(ctx, manifestCfg, cfg.Fetch.Token)
		for _, r := range results {
			if r.Error == nil {
				printResult(out, r.Result)
			}
		}
		return err
	}

	target, err := orchestrator.Resolve(input)
	if err != nil {
		return err
	}

	result, err := orchestrator.Run(ctx, app.Request{
		Target:      target,
		Destination: utils.ExpandPath(opts.dest),
		Token:       cfg.Fetch.Token,
	})
	if err != nil {
		return err
	}

	printResult(out, result)
	return nil
}

func printResult(w io.Writer, r *app.Result) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "Extracted %s into %s (%d files, %d directories)\n",
		r.Target.String(), r.Destination, r.Copy.Files, r.Copy.Dirs)
	if r.IgnoreUpdated {
		fmt.Fprintf(w, "Added %s to .gitignore\n", r.Destination)
	}
}

func newDoctorCmd(v *viper.Viper, opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system dependencies",
		Long:  "Verifies that git, the scratch directory and the configuration are usable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking system dependencies...")
			allPassed := true

			// Check 1: Config file
			fmt.Fprint(out, "  Config file: ")
			cfg, err := loadConfig(v, opts)
			if err != nil {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				cfg = config.Default()
				allPassed = false
			} else if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "OK (%s)\n", used)
			} else {
				fmt.Fprintf(out, "OK (defaults, no %s)\n", config.ConfigFilePath())
			}

			// Check 2: git executable
			fmt.Fprint(out, "  git executable: ")
			if gitVersion, err := checkGit(cmd.Context(), cfg.Fetch.GitBinary); err == nil {
				fmt.Fprintf(out, "OK (%s)\n", gitVersion)
			} else if cfg.Fetch.Backend == config.BackendExec {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				allPassed = false
			} else {
				fmt.Fprintf(out, "NOT FOUND (not needed by the %s backend)\n", cfg.Fetch.Backend)
			}

			// Check 3: scratch directory
			fmt.Fprint(out, "  Scratch directory: ")
			if err := checkWorkspace(cfg); err == nil {
				fmt.Fprintln(out, "OK")
			} else {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				allPassed = false
			}

			fmt.Fprintln(out)
			if !allPassed {
				fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
				return errors.New("doctor found problems")
			}
			fmt.Fprintln(out, "All critical checks passed!")
			return nil
		},
	}
}

// checkGit looks up the git executable and reports its version
func checkGit(ctx context.Context, binary string) (string, error) {
	path, err := execLookPath(binary)
	if err != nil {
		return "", err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return git.NewExecBackend(git.ExecBackendOptions{Binary: path}).Version(ctx)
}

// checkWorkspace creates and removes one scratch workspace
func checkWorkspace(cfg *config.Config) error {
	m := workspace.NewManager(workspace.ManagerOptions{
		BaseDir: cfg.Workspace.Dir,
		Prefix:  cfg.Workspace.Prefix,
	})
	ws, err := m.Acquire()
	if err != nil {
		return err
	}
	return ws.Release()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
