package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultWebURL, cfg.WebURL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, LogName), cfg.LogFile)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultStaleTime, cfg.StaleTime)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, DefaultDays, cfg.Days)
	assert.Empty(t, cfg.Token)
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `api_url = "https://api.example.com/"
log_level = "debug"
refresh_interval = "15s"
days = 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))
	t.Setenv("FINADMIN_DAYS", "14")
	t.Setenv("FINADMIN_TOKEN", " env-token ")
	t.Setenv("FINADMIN_HTTP_TIMEOUT", "5s")

	cfg, err := Load(nil, dir)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL, "trailing slash trimmed")
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 14, cfg.Days, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad url", content: `api_url = "localhost:8000"`, wantErr: KeyAPIURL},
		{name: "bad level", content: `log_level = "chatty"`, wantErr: KeyLogLevel},
		{name: "zero refresh", content: `refresh_interval = "0s"`, wantErr: KeyRefreshInterval},
		{name: "zero days", content: `days = 0`, wantErr: KeyDays},
		{name: "broken toml", content: `api_url = `, wantErr: "read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tc.content), 0o600))

			_, err := Load(viper.New(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestInitWritesLoadableDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)

	path, err := Init(dir, false)
	require.NoError(t, err)
	assert.Equal(t, Path(dir), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh_interval")
	assert.Contains(t, string(data), "1m0s")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)

	_, err = Init(dir, false)
	require.True(t, errors.Is(err, ErrExists))

	_, err = Init(dir, true)
	require.NoError(t, err)
}
