package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Default Configuration Tests
// =============================================================================

func TestNewEngineConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	repoDir := t.TempDir()
	cfg := NewEngineConfig(repoDir)

	// Then: all defaults should be applied
	require.NotNil(t, cfg)

	assert.True(t, cfg.Searchers.EnableAdvancedSearchers)
	assert.True(t, cfg.Searchers.EnableBasicSearchers)
	assert.True(t, cfg.Searchers.EnableFuzzySearch)
	assert.True(t, cfg.Searchers.EnablePatternDetection)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, 1000, cfg.Cache.MaxSize)

	assert.True(t, cfg.Ranking.Enabled)
	assert.InDelta(t, 1.0, cfg.Ranking.Weights.Sum(), 1e-9)

	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, filepath.Join(repoDir, ".githound", "index"), cfg.CacheDir)
}

func TestEngineConfig_VersionDefaultsToOne(t *testing.T) {
	cfg := NewEngineConfig(t.TempDir())
	assert.Equal(t, 1, cfg.Version)
}

func TestDefaultRankingWeights_SumToOne(t *testing.T) {
	w := DefaultRankingWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestRankingWeights_Normalize_RescalesNonUnitSum(t *testing.T) {
	w := RankingWeights{QueryMatch: 2, Recency: 2}
	w.Normalize()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.5, w.QueryMatch, 1e-9)
}

func TestRankingWeights_Normalize_ZeroSumFallsBackToDefaults(t *testing.T) {
	w := RankingWeights{}
	w.Normalize()
	assert.Equal(t, DefaultRankingWeights(), w)
}

// =============================================================================
// Configuration File Loading Tests
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Given: a directory with no .githound.yaml
	tmpDir := t.TempDir()

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: defaults are returned without error
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 4, cfg.MaxWorkers)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	// Given: a directory with .githound.yaml
	tmpDir := t.TempDir()
	configContent := `
version: 1
max_workers: 8
timeout_seconds: 60
cache:
  cache_backend: memory
  cache_ttl_seconds: 120
`
	err := os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: all overrides are applied
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	// Given: a directory with .githound.yml (alternative extension)
	tmpDir := t.TempDir()
	configContent := `
version: 1
max_workers: 6
`
	err := os.WriteFile(filepath.Join(tmpDir, ".githound.yml"), []byte(configContent), 0o644)
	require.NoError(t, err)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: .yml file is recognized
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxWorkers)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	// Given: both .yaml and .yml exist
	tmpDir := t.TempDir()
	yamlContent := "version: 1\nmax_workers: 5\n"
	ymlContent := "version: 1\nmax_workers: 9\n"
	err := os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(yamlContent), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, ".githound.yml"), []byte(ymlContent), 0o644)
	require.NoError(t, err)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: .yaml takes precedence
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxWorkers)
}

func TestLoad_InvalidYaml_ReturnsError(t *testing.T) {
	// Given: invalid YAML syntax
	tmpDir := t.TempDir()
	invalidContent := `
version: 1
max_workers: [invalid yaml syntax
`
	err := os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(invalidContent), 0o644)
	require.NoError(t, err)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: error is returned with clear message
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_InvalidFieldType_ReturnsError(t *testing.T) {
	// Given: wrong type for a YAML-accessible field
	tmpDir := t.TempDir()
	invalidContent := `
version: 1
max_workers: "not-a-number"
`
	err := os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(invalidContent), 0o644)
	require.NoError(t, err)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: error is returned
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidCacheBackend_ReturnsValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
cache:
  cache_backend: bogus
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(configContent), 0o644))

	cfg, err := Load(tmpDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cache_backend")
}

func TestLoad_NetworkBackendWithoutAddr_ReturnsValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
cache:
  cache_backend: network
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(configContent), 0o644))

	cfg, err := Load(tmpDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cache_network_addr")
}

// =============================================================================
// Environment Variable Override Tests
// =============================================================================

func TestLoad_EnvVarOverridesMaxWorkers(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("GITHOUND_MAX_WORKERS", "16")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxWorkers)
}

func TestLoad_EnvVarOverridesCacheBackend(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
version: 1
cache:
  cache_backend: memory
  cache_network_addr: localhost:6379
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(configContent), 0o644))
	t.Setenv("GITHOUND_CACHE_BACKEND", "network")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, "network", cfg.Cache.Backend)
}

func TestLoad_EnvVarOverridesCacheTTL(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := "version: 1\ncache:\n  cache_ttl_seconds: 100\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".githound.yaml"), []byte(configContent), 0o644))
	t.Setenv("GITHOUND_CACHE_TTL_SECONDS", "80")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Cache.TTLSeconds)
}

func TestLoad_EnvVarOverridesCacheDir(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(t.TempDir(), "custom-index")
	t.Setenv("GITHOUND_CACHE_DIR", customDir)

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, customDir, cfg.CacheDir)
}

func TestLoad_EnvVarEmptyString_DoesNotOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("GITHOUND_CACHE_BACKEND", "")

	cfg, err := Load(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

// =============================================================================
// User/Global Configuration Tests
// =============================================================================

func TestGetUserConfigPath_DefaultsToXDGLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := GetUserConfigPath()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	expected := filepath.Join(home, ".config", "githound", "config.yaml")
	assert.Equal(t, expected, path)
}

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	customConfig := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", customConfig)

	path := GetUserConfigPath()

	expected := filepath.Join(customConfig, "githound", "config.yaml")
	assert.Equal(t, expected, path)
}

func TestGetUserConfigDir_ReturnsParentOfConfigPath(t *testing.T) {
	dir := GetUserConfigDir()
	path := GetUserConfigPath()

	assert.Equal(t, filepath.Dir(path), dir)
}

func TestUserConfigExists_ReturnsFalseWhenMissing(t *testing.T) {
	emptyDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", emptyDir)

	exists := UserConfigExists()

	assert.False(t, exists)
}

func TestUserConfigExists_ReturnsTrueWhenPresent(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	githoundDir := filepath.Join(configDir, "githound")
	require.NoError(t, os.MkdirAll(githoundDir, 0o755))
	configPath := filepath.Join(githoundDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1"), 0o644))

	exists := UserConfigExists()

	assert.True(t, exists)
}

func TestLoad_UserConfigOverridesDefaults(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	githoundDir := filepath.Join(configDir, "githound")
	require.NoError(t, os.MkdirAll(githoundDir, 0o755))
	userConfig := "version: 1\nmax_workers: 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(githoundDir, "config.yaml"), []byte(userConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxWorkers)
}

func TestLoad_ProjectConfigOverridesUserConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	githoundDir := filepath.Join(configDir, "githound")
	require.NoError(t, os.MkdirAll(githoundDir, 0o755))
	userConfig := "version: 1\nmax_workers: 12\ntimeout_seconds: 45\n"
	require.NoError(t, os.WriteFile(filepath.Join(githoundDir, "config.yaml"), []byte(userConfig), 0o644))

	projectConfig := "version: 1\nmax_workers: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".githound.yaml"), []byte(projectConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxWorkers)
	// And: user config's timeout is still used (not overridden by project)
	assert.Equal(t, 45, cfg.TimeoutSeconds)
}

func TestLoad_EnvVarOverridesUserAndProjectConfig(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("GITHOUND_MAX_WORKERS", "99")

	githoundDir := filepath.Join(configDir, "githound")
	require.NoError(t, os.MkdirAll(githoundDir, 0o755))
	userConfig := "version: 1\nmax_workers: 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(githoundDir, "config.yaml"), []byte(userConfig), 0o644))

	projectConfig := "version: 1\nmax_workers: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ".githound.yaml"), []byte(projectConfig), 0o644))

	cfg, err := Load(projectDir)

	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxWorkers)
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	configDir := t.TempDir()
	projectDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	githoundDir := filepath.Join(configDir, "githound")
	require.NoError(t, os.MkdirAll(githoundDir, 0o755))
	invalidConfig := "version: 1\nmax_workers: [invalid yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(githoundDir, "config.yaml"), []byte(invalidConfig), 0o644))

	cfg, err := Load(projectDir)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "user config")
}
