package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gitfold/gitfold/internal/app"
	"github.com/gitfold/gitfold/internal/config"
	"github.com/gitfold/gitfold/internal/git"
	"github.com/gitfold/gitfold/internal/logging"
	"github.com/gitfold/gitfold/internal/status"
	"github.com/gitfold/gitfold/internal/ui"
	"github.com/gitfold/gitfold/internal/watcher"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	// A TUI spends most of its time waiting on git subprocesses,
	// fsnotify, and terminal input. Two OS threads cover the actual Go
	// work, and keeping GOMAXPROCS low matters when several instances
	// watch the same machine. An explicit GOMAXPROCS wins.
	if os.Getenv("GOMAXPROCS") == "" {
		maxProcs := 2
		if n := runtime.NumCPU(); n < maxProcs {
			maxProcs = n
		}
		runtime.GOMAXPROCS(maxProcs)
	}

	// Trigger GC early; resident memory should stay well under this.
	debug.SetMemoryLimit(50 * 1024 * 1024) // 50 MiB
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitfold",
		Short: "A foldable git status buffer for the terminal",
		Long: `gitfold renders your repository's state as a single foldable buffer:
head info, untracked/unstaged/staged files with inline diffs, stashes,
and recent commits. Stage, unstage, or discard whole files, single
hunks, or visually selected line ranges without leaving the buffer.`,
		RunE:          runApp,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"gitfold %s\n  commit:  %s\n  built:   %s\n  go:      %s\n  os/arch: %s/%s\n",
		version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	))

	rootCmd.AddCommand(buildVersionCmd())
	rootCmd.AddCommand(buildCompletionCmd())

	rootCmd.Flags().StringP("path", "p", ".", "Path to the git repository")

	return rootCmd
}

// buildVersionCmd creates the `gitfold version` subcommand supporting --json.
func buildVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"date":    date,
				"go":      runtime.Version(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Printf("gitfold %s\n", version)
			fmt.Printf("  commit:  %s\n", commit)
			fmt.Printf("  built:   %s\n", date)
			fmt.Printf("  go:      %s\n", runtime.Version())
			fmt.Printf("  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}

// buildCompletionCmd creates the `gitfold completion` subcommand.
func buildCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gitfold.

Examples:
  # Bash (add to ~/.bashrc)
  gitfold completion bash > /etc/bash_completion.d/gitfold

  # Zsh (add to ~/.zshrc before compinit)
  gitfold completion zsh > "${fpath[1]}/_gitfold"

  # Fish
  gitfold completion fish > ~/.config/fish/completions/gitfold.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	repoPath, _ := cmd.Flags().GetString("path")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if os.Getenv("GITFOLD_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log, closeLog := logging.OpenFile(level)
	defer closeLog()

	cliSvc, err := git.NewCLIService(repoPath)
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	// Short TTL cache dedupes snapshot reads when fold toggles and
	// watcher events land close together.
	svc := git.NewCachedService(cliSvc, time.Duration(cfg.SnapshotCacheMs)*time.Millisecond)

	repo := status.NewRepository(svc, cfg.RenderConfig(), cfg.RecentCount, status.DefaultWatchdog, log)
	registry := status.NewRegistry()
	registry.Add(repo)

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))

	// Watch .git internals only; safe for huge working trees.
	var events <-chan watcher.Event
	w, err := watcher.New(time.Duration(cfg.WatchDebounceMs)*time.Millisecond, log)
	if err == nil {
		defer w.Close()
		if addErr := w.Add(cliSvc.RepoRoot(), cliSvc.GitDir()); addErr != nil {
			log.Warn("watcher disabled", "error", addErr)
		} else {
			events = w.Events()
		}
	} else {
		log.Warn("watcher unavailable", "error", err)
	}

	model := app.New(cfg, registry, repo, styles, events)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
