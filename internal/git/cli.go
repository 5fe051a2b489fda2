package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrNotARepo is returned when the path is not inside a Git repository.
var ErrNotARepo = errors.New("not a git repository")

// cmdTimeout is the maximum duration any single git command may run.
// Prevents hangs on huge repos or network operations.
const cmdTimeout = 30 * time.Second

// CLIService implements Service by shelling out to the git CLI.
//   - GIT_OPTIONAL_LOCKS=0 on all read commands (no lock contention)
//   - Context-based timeouts prevent hangs
//   - Stdout/Stderr separated so stderr noise doesn't corrupt output
type CLIService struct {
	root   string // Absolute path to the repo root.
	gitDir string // Path to the .git directory.
}

// Compile-time check that CLIService implements Service.
var _ Service = (*CLIService)(nil)

// NewCLIService opens a Git repository at the given path.
func NewCLIService(path string) (*CLIService, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	topLevel, err := runGit(abs, nil, "", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotARepo
	}
	gitDir, err := runGit(abs, nil, "", "rev-parse", "--git-dir")
	if err != nil {
		return nil, fmt.Errorf("finding .git directory: %w", err)
	}
	gd := strings.TrimSpace(gitDir)
	if !filepath.IsAbs(gd) {
		gd = filepath.Join(strings.TrimSpace(topLevel), gd)
	}
	return &CLIService{
		root:   strings.TrimSpace(topLevel),
		gitDir: gd,
	}, nil
}

// RepoRoot returns the repository root path.
func (s *CLIService) RepoRoot() string { return s.root }

// GitDir returns the path to the .git directory.
func (s *CLIService) GitDir() string { return s.gitDir }

// ── helpers ─────────────────────────────────────────────────────────────────

// readEnv is the environment set on all read-only git commands.
// GIT_OPTIONAL_LOCKS=0 prevents git from acquiring optional locks,
// which matters in large repos where lock contention stalls readers.
var readEnv = []string{"GIT_OPTIONAL_LOCKS=0"}

// run executes a git command at the repo root with read-optimised env.
func (s *CLIService) run(args ...string) (string, error) {
	return runGit(s.root, readEnv, "", args...)
}

// runWrite executes a write git command (no optional-locks override).
func (s *CLIService) runWrite(args ...string) (string, error) {
	return runGit(s.root, nil, "", args...)
}

// runInput executes a write git command feeding stdin.
func (s *CLIService) runInput(stdin string, args ...string) (string, error) {
	return runGit(s.root, nil, stdin, args...)
}

// runGit executes a git command with a context timeout.
func runGit(dir string, extraEnv []string, stdin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), errMsg, err)
	}
	return stdout.String(), nil
}

// ── Snapshot gathering ──────────────────────────────────────────────────────

// Snapshot collects the full repository state for one refresh cycle.
// It spawns a bounded number of subprocesses regardless of how many
// files changed: one status, two diffs, one stash list, plus a handful
// of ref lookups.
func (s *CLIService) Snapshot(recentCount int) (*Snapshot, error) {
	snap := &Snapshot{}

	s.readHead(snap)
	snap.Upstream = s.readTracking("@{upstream}")
	snap.PushRemote = s.readTracking("@{push}")
	s.readTag(snap)
	snap.Rebase = s.readRebase()

	statusOut, err := s.run("status", "--porcelain=v2", "-z", "--no-optional-locks")
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	ParseStatusV2(statusOut, snap)

	// One diff subprocess per side; split per file afterwards.
	if worktreeDiff, err := s.run("diff", "--no-color", "--no-ext-diff"); err == nil {
		attachDiffs(snap.Unstaged, ParseDiffs(worktreeDiff))
	}
	if stagedDiff, err := s.run("diff", "--cached", "--no-color", "--no-ext-diff"); err == nil {
		attachDiffs(snap.Staged, ParseDiffs(stagedDiff))
	}

	if out, err := s.run("stash", "list", "--format=%gd%x00%gs"); err == nil {
		snap.Stashes = ParseStashList(out)
	}

	if recentCount > 0 {
		snap.Recent, _ = s.logCommits(fmt.Sprintf("--max-count=%d", recentCount), "HEAD")
	}
	if snap.Upstream != nil {
		snap.UnpulledUpstream, _ = s.logCommits("HEAD.." + snap.Upstream.Ref)
		snap.UnmergedUpstream, _ = s.logCommits(snap.Upstream.Ref + "..HEAD")
	}
	if snap.PushRemote != nil && (snap.Upstream == nil || snap.PushRemote.Ref != snap.Upstream.Ref) {
		snap.UnpulledPush, _ = s.logCommits("HEAD.." + snap.PushRemote.Ref)
		snap.UnmergedPush, _ = s.logCommits(snap.PushRemote.Ref + "..HEAD")
	}

	return snap, nil
}

func (s *CLIService) readHead(snap *Snapshot) {
	if ref, err := s.run("symbolic-ref", "--short", "HEAD"); err == nil {
		snap.Head.Branch = strings.TrimSpace(ref)
	}
	oid, err := s.run("rev-parse", "HEAD")
	if err != nil {
		// Unborn branch: an empty repo is still a repo.
		snap.Head.Subject = "(no commits)"
		return
	}
	snap.Head.OID = strings.TrimSpace(oid)
	if abbrev, err := s.run("rev-parse", "--short", "HEAD"); err == nil {
		snap.Head.Abbrev = strings.TrimSpace(abbrev)
	}
	if subject, err := s.run("log", "-1", "--format=%s", "--no-optional-locks"); err == nil {
		snap.Head.Subject = strings.TrimSpace(subject)
	}
}

// readTracking resolves @{upstream} or @{push}. Returns nil when the
// branch has no such tracking ref configured.
func (s *CLIService) readTracking(spec string) *Ref {
	name, err := s.run("rev-parse", "--abbrev-ref", spec)
	if err != nil {
		return nil //nolint:nilerr // no tracking ref is not an error
	}
	ref := &Ref{Ref: strings.TrimSpace(name)}
	if i := strings.IndexByte(ref.Ref, '/'); i >= 0 {
		ref.Branch = ref.Ref[i+1:]
	}
	if oid, err := s.run("rev-parse", spec); err == nil {
		ref.OID = strings.TrimSpace(oid)
	}
	if abbrev, err := s.run("rev-parse", "--short", spec); err == nil {
		ref.Abbrev = strings.TrimSpace(abbrev)
	}
	if subject, err := s.run("log", "-1", "--format=%s", "--no-optional-locks", spec); err == nil {
		ref.Subject = strings.TrimSpace(subject)
	}
	return ref
}

func (s *CLIService) readTag(snap *Snapshot) {
	out, err := s.run("describe", "--tags", "--long")
	if err != nil {
		return
	}
	// Format: <tag>-<distance>-g<abbrev>. Tag names may contain dashes,
	// so split from the right.
	parts := strings.Split(strings.TrimSpace(out), "-")
	if len(parts) < 3 {
		return
	}
	distance, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return
	}
	snap.Tag = &Tag{
		Name:     strings.Join(parts[:len(parts)-2], "-"),
		Distance: distance,
	}
}

// readRebase reads rebase progress directly from .git files, avoiding
// subprocess spawns for the common not-rebasing case.
func (s *CLIService) readRebase() *RebaseStatus {
	for _, sub := range []string{"rebase-merge", "rebase-apply"} {
		dir := filepath.Join(s.gitDir, sub)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		st := &RebaseStatus{}
		if b, err := os.ReadFile(filepath.Join(dir, "onto")); err == nil {
			onto := strings.TrimSpace(string(b))
			if len(onto) > 7 {
				onto = onto[:7]
			}
			st.Onto = onto
		}
		if b, err := os.ReadFile(filepath.Join(dir, "msgnum")); err == nil {
			st.Current, _ = strconv.Atoi(strings.TrimSpace(string(b)))
		} else if b, err := os.ReadFile(filepath.Join(dir, "next")); err == nil {
			st.Current, _ = strconv.Atoi(strings.TrimSpace(string(b)))
		}
		if b, err := os.ReadFile(filepath.Join(dir, "end")); err == nil {
			st.Total, _ = strconv.Atoi(strings.TrimSpace(string(b)))
		} else if b, err := os.ReadFile(filepath.Join(dir, "last")); err == nil {
			st.Total, _ = strconv.Atoi(strings.TrimSpace(string(b)))
		}
		return st
	}
	return nil
}

const logFormat = "--format=%H%x00%h%x00%an%x00%at%x00%s"

func (s *CLIService) logCommits(args ...string) ([]Commit, error) {
	cmdArgs := append([]string{"log", "--no-optional-locks", logFormat}, args...)
	out, err := s.run(cmdArgs...)
	if err != nil {
		return nil, fmt.Errorf("getting log: %w", err)
	}
	return ParseLogOutput(out), nil
}

// ── Whole-file operations ───────────────────────────────────────────────────

// Stage stages the given paths.
func (s *CLIService) Stage(paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := s.runWrite(args...)
	return err
}

// StageAll stages all changes.
func (s *CLIService) StageAll() error { _, err := s.runWrite("add", "-A"); return err }

// Unstage unstages the given paths.
func (s *CLIService) Unstage(paths ...string) error {
	args := append([]string{"reset", "HEAD", "--"}, paths...)
	_, err := s.runWrite(args...)
	return err
}

// UnstageAll unstages all changes.
func (s *CLIService) UnstageAll() error { _, err := s.runWrite("reset", "HEAD"); return err }

// Checkout restores the given paths from the index.
func (s *CLIService) Checkout(paths ...string) error {
	args := append([]string{"checkout", "--"}, paths...)
	_, err := s.runWrite(args...)
	return err
}

// Remove deletes untracked paths from the worktree. They are not known
// to git, so plain filesystem removal is the whole operation.
func (s *CLIService) Remove(paths ...string) error {
	for _, p := range paths {
		if err := os.RemoveAll(filepath.Join(s.root, p)); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}

// ── Patch application ───────────────────────────────────────────────────────

// ApplyPatch pipes a patch fragment to git apply.
func (s *CLIService) ApplyPatch(patch string, opts ApplyOptions) error {
	args := []string{"apply"}
	if opts.Cached {
		args = append(args, "--cached")
	}
	if opts.Reverse {
		args = append(args, "--reverse")
	}
	if opts.Index {
		args = append(args, "--index")
	}
	args = append(args, "-")
	if _, err := s.runInput(patch, args...); err != nil {
		return fmt.Errorf("applying patch: %w", err)
	}
	return nil
}

// ── Stashes ─────────────────────────────────────────────────────────────────

// StashPop pops the stash at the given index.
func (s *CLIService) StashPop(index int) error {
	_, err := s.runWrite("stash", "pop", fmt.Sprintf("stash@{%d}", index))
	return err
}

// StashApply applies the stash at the given index.
func (s *CLIService) StashApply(index int) error {
	_, err := s.runWrite("stash", "apply", fmt.Sprintf("stash@{%d}", index))
	return err
}

// StashDrop drops the stash at the given index.
func (s *CLIService) StashDrop(index int) error {
	_, err := s.runWrite("stash", "drop", fmt.Sprintf("stash@{%d}", index))
	return err
}
