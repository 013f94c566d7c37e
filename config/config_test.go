package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/config"
)

func TestFromString(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.FromString("log_to_file: true\n")
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.ProjectRoot)
		assert.Equal(t, "logs", cfg.LogDir)
		assert.True(t, cfg.LogToFile)
		assert.Equal(t, ".env", cfg.EnvFilePath())
	})

	t.Run("empty project root", func(t *testing.T) {
		t.Parallel()
		_, err := config.FromString("project_root: \"\"\n")
		require.Error(t, err)
	})

	t.Run("absolute env file", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.FromString("project_root: /srv/spot\nenv_file: /etc/spot.env\n")
		require.NoError(t, err)
		assert.Equal(t, "/etc/spot.env", cfg.EnvFilePath())
	})
}

func TestLoadSecrets(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadSecrets(filepath.Join(t.TempDir(), ".env"))
		require.ErrorIs(t, err, config.ErrEnvFileMissing)
	})

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		envFile := filepath.Join(t.TempDir(), ".env")
		content := "# spotify\nSPOT_REFRESH_TOKEN='refresh'\nSPOT_CLIENT_ID=client\nSPOT_CLIENT_SECRET=secret\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0o0600))

		s, err := config.LoadSecrets(envFile)
		require.NoError(t, err)
		assert.Equal(t, config.Secrets{RefreshToken: "refresh", ClientID: "client", ClientSecret: "secret"}, *s)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("SPOT_CLIENT_ID=client\n"), 0o0600))

		_, err := config.LoadSecrets(envFile)
		require.ErrorContains(t, err, "SPOT_REFRESH_TOKEN is empty")
	})
}
