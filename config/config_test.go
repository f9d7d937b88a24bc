package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "minirs", cfg.LSP.Name)
	assert.Equal(t, "localhost:8080", cfg.Serve.Addr)
	assert.False(t, cfg.KeepComments)
	assert.Zero(t, cfg.Jobs)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "minirs.toml",
			content: `
keep_comments = true
format = "json"
verbosity = 2
jobs = 3

[lsp]
name = "minirs-dev"
watch = true

[serve]
addr = ":9000"
`,
		},
		{
			name: "yaml",
			file: "minirs.yaml",
			content: `
keep_comments: true
format: json
verbosity: 2
jobs: 3
lsp:
  name: minirs-dev
  watch: true
serve:
  addr: ":9000"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, &Config{
				KeepComments: true,
				Format:       "json",
				Verbosity:    2,
				Jobs:         3,
				LSP:          LSPConfig{Name: "minirs-dev", Watch: true},
				Serve:        ServeConfig{Addr: ":9000"},
				Path:         path,
			}, cfg)
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"partial.toml", "partial.yml"} {
		t.Run(name, func(t *testing.T) {
			content := "jobs = 2\n"
			if filepath.Ext(name) == ".yml" {
				content = "jobs: 2\n"
			}
			cfg, err := Load(writeFile(t, dir, name, content))
			require.NoError(t, err)
			assert.Equal(t, 2, cfg.Jobs)
			assert.Equal(t, "text", cfg.Format)
			assert.Equal(t, "minirs", cfg.LSP.Name)
		})
	}

	cfg, err := Load(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad toml", "a.toml", "format = ", "parse"},
		{"bad yaml", "b.yaml", "format: [", "parse"},
		{"unknown toml key", "c.toml", "colour = true\n", "unknown key"},
		{"unknown yaml key", "d.yaml", "colour: true\n", "colour"},
		{"unknown format", "e.toml", "format = \"xml\"\n", "unknown output format"},
		{"negative jobs", "f.yaml", "jobs: -1\n", "jobs must not be negative"},
		{"empty lsp name", "g.toml", "[lsp]\nname = \"\"\n", "lsp.name"},
		{"empty serve addr", "i.yaml", "serve:\n  addr: \"\"\n", "serve.addr must not be empty"},
		{"negative verbosity", "h.toml", "verbosity = -2\n", "verbosity must not be negative, got -2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	_, err := Find(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)

	yml := writeFile(t, dir, "minirs.yml", "jobs: 1\n")
	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, yml, path)

	toml := writeFile(t, dir, "minirs.toml", "jobs = 1\n")
	path, err = Find(dir)
	require.NoError(t, err)
	assert.Equal(t, toml, path)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, root, "minirs.toml", "verbosity = 1\n")

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Verbosity)
	assert.Equal(t, filepath.Join(root, "minirs.toml"), cfg.Path)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MINIRS_FORMAT":    "json",
		"MINIRS_VERBOSITY": "3",
		"MINIRS_JOBS":      "8",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 3, cfg.Verbosity)
	assert.Equal(t, 8, cfg.Jobs)

	env["MINIRS_JOBS"] = "many"
	assert.Error(t, Default().ApplyEnv(lookup))

	env["MINIRS_JOBS"] = "1"
	env["MINIRS_FORMAT"] = "xml"
	assert.Error(t, Default().ApplyEnv(lookup))
}
