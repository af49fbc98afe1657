package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	content := "registry: manifests/math.yml\nverbose: true\nnoColor: true\njobs: 4\ntwoPass: true\nmaxDepth: 50\nbuiltins: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arborist.yml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manifests/math.yml"), cfg.Registry)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.TwoPass)
	assert.True(t, cfg.Builtins)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, 50, cfg.MaxDepth)
	assert.Equal(t, filepath.Join(dir, "arborist.yml"), cfg.Path)
}

func TestLoadYamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arborist.yaml"), []byte("registry: /abs/reg.yml\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/abs/reg.yml", cfg.Registry)
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "jobs: [", "arborist.yml"},
		{"wrong type", "jobs: many", "cannot unmarshal"},
		{"negative jobs", "jobs: -1", "jobs must not be negative"},
		{"negative depth", "maxDepth: -3", "maxDepth must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "arborist.yml"), []byte(tt.content), 0o600))
			_, err := Load(dir)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
