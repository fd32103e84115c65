package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starform/internal/profile"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, profile.DefaultUniquenessThreshold, cfg.UniquenessThreshold)
	assert.Zero(t, cfg.MaxCompositeColumns)
	assert.True(t, cfg.DateDimension)
	assert.Equal(t, "ANALYTICS", cfg.Database)
	assert.Equal(t, "PUBLIC", cfg.Schema)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, ".starform/state.db", cfg.StatePath)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default().UniquenessThreshold, cfg.UniquenessThreshold)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.True(t, cfg.DateDimension)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, "starform.yaml", `
uniqueness_threshold: 0.9
database: WAREHOUSE
source:
  delimiter: ";"
  null_values: ["-", "n/a"]
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.UniquenessThreshold)
	assert.Equal(t, "WAREHOUSE", cfg.Database)
	assert.Equal(t, "PUBLIC", cfg.Schema)
	assert.Equal(t, ";", cfg.Source.Delimiter)
	assert.Equal(t, []string{"-", "n/a"}, cfg.Source.NullValues)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoad_DiscoversProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "starform.yml"), []byte("schema: STAGING\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "STAGING", cfg.Schema)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "starform.yaml", "output_dir: from_file\n")
	t.Setenv("STARFORM_OUTPUT_DIR", "from_env")
	t.Setenv("STARFORM_SOURCE__DELIMITER", "|")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.OutputDir)
	assert.Equal(t, "|", cfg.Source.Delimiter)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STARFORM_OUTPUT_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output-dir", "output", "")
	flags.Int("max-composite-columns", 0, "")
	require.NoError(t, flags.Parse([]string{"--output-dir=from_flag", "--max-composite-columns=-1"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.OutputDir)
	assert.Equal(t, -1, cfg.MaxCompositeColumns)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STARFORM_DATABASE", "from_env")

	// The flag default must not shadow the env value when the flag was
	// never set on the command line.
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "ANALYTICS", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Database)
}

func TestKeyOptions(t *testing.T) {
	cfg := &Config{UniquenessThreshold: 0.8, MaxCompositeColumns: 3}
	opts := cfg.KeyOptions()
	assert.Equal(t, 0.8, opts.UniquenessThreshold)
	assert.Equal(t, 3, opts.MaxCompositeColumns)
}
