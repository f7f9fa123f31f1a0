package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/testutil"
)

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string)
		args     []string
		wantErr  bool
	}{
		{
			name: "init empty directory",
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte("existing"), 0600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte("existing"), 0600))
			},
			args: []string{"--force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			res := testutil.ExecuteCommand(t, NewInitCommand(), nil, "", append(tt.args, dir)...)
			if tt.wantErr {
				require.Error(t, res.Err)
				assert.Contains(t, res.Err.Error(), "already exists")
				return
			}
			require.NoError(t, res.Err)
			assert.Contains(t, res.Out, "Created")

			// The written file loads back to the defaults.
			cfg, err := config.LoadConfigFrom(dir, "", nil)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, config.DefaultConfigFile), cfg.ConfigFile)
			assert.Equal(t, config.Default().Style, cfg.Style)
			assert.Equal(t, config.Default().Output, cfg.Output)
		})
	}
}

func TestInitCommand_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "warehouse")

	res := testutil.ExecuteCommand(t, NewInitCommand(), nil, "", dir)

	require.NoError(t, res.Err)
	assert.FileExists(t, filepath.Join(dir, config.DefaultConfigFile))
}
