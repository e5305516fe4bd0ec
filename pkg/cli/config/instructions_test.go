package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/cli/config"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestInstructions_Load(t *testing.T) {
	t.Run("no file configured", func(t *testing.T) {
		cfg := &config.Instructions{}
		got, err := cfg.Load()
		gt.NoError(t, err)
		gt.True(t, got == nil)
	})

	t.Run("overrides per kind", func(t *testing.T) {
		cfg := &config.Instructions{Path: writeFile(t, "ghtrigger.toml", `
[instructions]
pull_request = "Review the pull request."
release = "Draft release notes."
`)}
		got, err := cfg.Load()
		gt.NoError(t, err)
		gt.Equal(t, got, map[model.EventKind]string{
			model.EventKindPullRequest: "Review the pull request.",
			model.EventKindRelease:     "Draft release notes.",
		})
	})

	t.Run("empty table", func(t *testing.T) {
		cfg := &config.Instructions{Path: writeFile(t, "ghtrigger.toml", "[instructions]\n")}
		got, err := cfg.Load()
		gt.NoError(t, err)
		gt.Equal(t, len(got), 0)
	})

	t.Run("unsupported kind", func(t *testing.T) {
		cfg := &config.Instructions{Path: writeFile(t, "ghtrigger.toml", `
[instructions]
issues = "Triage the issue."
`)}
		_, err := cfg.Load()
		gt.Error(t, err)
	})

	t.Run("broken toml", func(t *testing.T) {
		cfg := &config.Instructions{Path: writeFile(t, "ghtrigger.toml", "[instructions\npush = ")}
		_, err := cfg.Load()
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &config.Instructions{Path: filepath.Join(t.TempDir(), "missing.toml")}
		_, err := cfg.Load()
		gt.Error(t, err)
	})
}
