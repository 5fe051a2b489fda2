package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitfold/gitfold/internal/status"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "dark", cfg.Theme)
	require.Equal(t, 10, cfg.RecentCount)
	require.Equal(t, 200, cfg.WatchDebounceMs)
	require.Equal(t, 1500, cfg.SnapshotCacheMs)
	require.True(t, cfg.ConfirmDestructive)
	require.False(t, cfg.FoldHunks)
	require.Empty(t, cfg.HiddenSections)
	require.Equal(t, []string{"recent"}, cfg.FoldedSections)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, "gitfold")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	yaml := `theme: light
recent_count: 5
fold_hunks: true
hidden_sections: [stashes]
folded_sections: [recent, staged]
`
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "light", cfg.Theme)
	require.Equal(t, 5, cfg.RecentCount)
	require.True(t, cfg.FoldHunks)
	require.Equal(t, []string{"stashes"}, cfg.HiddenSections)
	require.Equal(t, []string{"recent", "staged"}, cfg.FoldedSections)
	// Untouched keys keep their defaults.
	require.Equal(t, 200, cfg.WatchDebounceMs)
}

func TestRenderConfig(t *testing.T) {
	cfg := &Config{
		HiddenSections: []string{"stashes", "unpulled", "bogus"},
		FoldedSections: []string{"recent"},
		FoldHunks:      true,
	}

	rc := cfg.RenderConfig()

	require.True(t, rc.Hidden[status.CatStashes])
	require.True(t, rc.Hidden[status.CatUnpulledPush])
	require.True(t, rc.Hidden[status.CatUnpulledUpstream])
	require.False(t, rc.Hidden[status.CatUnstaged])
	require.True(t, rc.DefaultFolded[status.CatRecent])
	require.False(t, rc.DefaultFolded[status.CatStaged])
	require.True(t, rc.FoldHunks)
}
