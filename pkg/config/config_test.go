package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/episodes/pkg/config"
)

type sampleConfig struct {
	Service struct {
		Name string `koanf:"name"`
		Port int    `koanf:"port"`
	} `koanf:"service"`
	Retry struct {
		Delay time.Duration `koanf:"retry_delay"`
	} `koanf:"retry"`
}

func (c *sampleConfig) Validate() error {
	if c.Service.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func TestEnvKey(t *testing.T) {
	mapKey := config.EnvKey("EPISODES_")
	assert.Equal(t, "database.host", mapKey("EPISODES_DATABASE_HOST"))
	assert.Equal(t, "processor.max_retry_attempts", mapKey("EPISODES_PROCESSOR_MAX_RETRY_ATTEMPTS"))
	assert.Equal(t, "debug", mapKey("EPISODES_DEBUG"))
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  name: from-file\n  port: 9000\n"), 0o600))
	t.Setenv("SAMPLE_SERVICE_PORT", "9100")
	t.Setenv("SAMPLE_RETRY_RETRY_DELAY", "7s")

	cfg := &sampleConfig{}
	cfg.Service.Port = 8080
	cfg.Retry.Delay = time.Second

	err := config.NewManager("sample", "test").WithConfigPaths(path).LoadConfig(cfg)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Service.Name)
	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, 7*time.Second, cfg.Retry.Delay)
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	cfg := &sampleConfig{}
	err := config.NewManager("sample", "test").WithConfigPaths().LoadConfig(cfg)
	assert.ErrorContains(t, err, "name required")
}
