package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the complete search engine configuration.
// It mirrors the options named in the engine's specification §6.
type EngineConfig struct {
	Version int `yaml:"version" json:"version"`

	Searchers SearcherConfig `yaml:"searchers" json:"searchers"`
	Cache     CacheConfig    `yaml:"cache" json:"cache"`
	Ranking   RankingConfig  `yaml:"ranking" json:"ranking"`

	// MaxWorkers bounds the searcher/indexer worker pool (default: 4).
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`

	// DefaultMaxResults caps result count when a query doesn't specify one.
	// Zero means unbounded.
	DefaultMaxResults int `yaml:"default_max_results" json:"default_max_results"`

	// TimeoutSeconds caps the whole orchestrator invocation.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// CacheDir is the on-disk index/cache directory, default
	// "<repo>/.githound/index".
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// RepoLockTimeout bounds how long an index build waits on the
	// single-writer repository lock.
	RepoLockTimeout time.Duration `yaml:"repo_lock_timeout" json:"repo_lock_timeout"`
}

// SearcherConfig toggles searcher groups.
type SearcherConfig struct {
	EnableAdvancedSearchers bool `yaml:"enable_advanced_searchers" json:"enable_advanced_searchers"`
	EnableBasicSearchers    bool `yaml:"enable_basic_searchers" json:"enable_basic_searchers"`
	EnableFuzzySearch       bool `yaml:"enable_fuzzy_search" json:"enable_fuzzy_search"`
	EnablePatternDetection  bool `yaml:"enable_pattern_detection" json:"enable_pattern_detection"`
}

// CacheConfig configures the pluggable result/query cache.
type CacheConfig struct {
	Enabled bool `yaml:"enable_caching" json:"enable_caching"`

	// Backend selects the cache implementation: "memory" or "network".
	Backend string `yaml:"cache_backend" json:"cache_backend"`

	TTLSeconds   int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
	MaxSize      int `yaml:"cache_max_size" json:"cache_max_size"`
	MaxMemoryMB  int `yaml:"cache_max_memory_mb" json:"cache_max_memory_mb"`

	// NetworkAddr is the network backend's endpoint (e.g. a Redis address).
	// Only consulted when Backend == "network".
	NetworkAddr string `yaml:"cache_network_addr" json:"cache_network_addr"`
}

// RankingConfig enables multi-factor relevance ranking and its weights.
type RankingConfig struct {
	Enabled bool           `yaml:"enable_ranking" json:"enable_ranking"`
	Weights RankingWeights `yaml:"ranking_weights" json:"ranking_weights"`
}

// RankingWeights holds the seven relevance factors. They are normalised to
// sum to 1.0 on load if they don't already.
type RankingWeights struct {
	QueryMatch       float64 `yaml:"query_match" json:"query_match"`
	Recency          float64 `yaml:"recency" json:"recency"`
	FileImportance   float64 `yaml:"file_importance" json:"file_importance"`
	AuthorRelevance  float64 `yaml:"author_relevance" json:"author_relevance"`
	CommitQuality    float64 `yaml:"commit_quality" json:"commit_quality"`
	ContextRelevance float64 `yaml:"context_relevance" json:"context_relevance"`
	Frequency        float64 `yaml:"frequency" json:"frequency"`
}

// Sum returns the total of all seven weights.
func (w RankingWeights) Sum() float64 {
	return w.QueryMatch + w.Recency + w.FileImportance + w.AuthorRelevance +
		w.CommitQuality + w.ContextRelevance + w.Frequency
}

// Normalize scales the weights so they sum to 1.0. A zero-sum set of
// weights falls back to the defaults rather than dividing by zero.
func (w *RankingWeights) Normalize() {
	sum := w.Sum()
	if sum <= 0 {
		*w = DefaultRankingWeights()
		return
	}
	if math.Abs(sum-1.0) < 1e-9 {
		return
	}
	w.QueryMatch /= sum
	w.Recency /= sum
	w.FileImportance /= sum
	w.AuthorRelevance /= sum
	w.CommitQuality /= sum
	w.ContextRelevance /= sum
	w.Frequency /= sum
}

// DefaultRankingWeights returns the engine's default relevance weights.
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		QueryMatch:       0.30,
		Recency:          0.20,
		FileImportance:   0.15,
		AuthorRelevance:  0.10,
		CommitQuality:    0.10,
		ContextRelevance: 0.10,
		Frequency:        0.05,
	}
}

// defaultCacheDir returns "<repo>/.githound/index" relative to repoDir.
func defaultCacheDir(repoDir string) string {
	return filepath.Join(repoDir, ".githound", "index")
}

// NewEngineConfig creates an EngineConfig with sensible defaults for the
// repository rooted at repoDir.
func NewEngineConfig(repoDir string) *EngineConfig {
	return &EngineConfig{
		Version: 1,
		Searchers: SearcherConfig{
			EnableAdvancedSearchers: true,
			EnableBasicSearchers:    true,
			EnableFuzzySearch:       true,
			EnablePatternDetection:  true,
		},
		Cache: CacheConfig{
			Enabled:     true,
			Backend:     "memory",
			TTLSeconds:  3600,
			MaxSize:     1000,
			MaxMemoryMB: 100,
		},
		Ranking: RankingConfig{
			Enabled: true,
			Weights: DefaultRankingWeights(),
		},
		MaxWorkers:        4,
		DefaultMaxResults: 0,
		TimeoutSeconds:    30,
		CacheDir:          defaultCacheDir(repoDir),
		RepoLockTimeout:   10 * time.Second,
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/githound/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/githound/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "githound", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "githound", "config.yaml")
	}
	return filepath.Join(home, ".config", "githound", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig(repoDir string) (*EngineConfig, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewEngineConfig(repoDir)
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// Load loads configuration for the repository rooted at repoDir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/githound/config.yaml)
//  3. Project config (.githound.yaml in repoDir)
//  4. Environment variables (GITHOUND_*)
func Load(repoDir string) (*EngineConfig, error) {
	cfg := NewEngineConfig(repoDir)

	if userCfg, err := loadUserConfig(repoDir); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(repoDir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	cfg.Ranking.Weights.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .githound.yaml or .githound.yml.
func (c *EngineConfig) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".githound.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".githound.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *EngineConfig) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed EngineConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *EngineConfig) mergeWith(other *EngineConfig) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Searchers.EnableAdvancedSearchers {
		c.Searchers.EnableAdvancedSearchers = other.Searchers.EnableAdvancedSearchers
	}
	if other.Searchers.EnableBasicSearchers {
		c.Searchers.EnableBasicSearchers = other.Searchers.EnableBasicSearchers
	}
	if other.Searchers.EnableFuzzySearch {
		c.Searchers.EnableFuzzySearch = other.Searchers.EnableFuzzySearch
	}
	if other.Searchers.EnablePatternDetection {
		c.Searchers.EnablePatternDetection = other.Searchers.EnablePatternDetection
	}

	if other.Cache.Backend != "" {
		c.Cache.Backend = other.Cache.Backend
	}
	if other.Cache.TTLSeconds != 0 {
		c.Cache.TTLSeconds = other.Cache.TTLSeconds
	}
	if other.Cache.MaxSize != 0 {
		c.Cache.MaxSize = other.Cache.MaxSize
	}
	if other.Cache.MaxMemoryMB != 0 {
		c.Cache.MaxMemoryMB = other.Cache.MaxMemoryMB
	}
	if other.Cache.NetworkAddr != "" {
		c.Cache.NetworkAddr = other.Cache.NetworkAddr
	}

	if other.Ranking.Weights.Sum() > 0 {
		c.Ranking.Weights = other.Ranking.Weights
	}

	if other.MaxWorkers != 0 {
		c.MaxWorkers = other.MaxWorkers
	}
	if other.DefaultMaxResults != 0 {
		c.DefaultMaxResults = other.DefaultMaxResults
	}
	if other.TimeoutSeconds != 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	if other.CacheDir != "" {
		c.CacheDir = other.CacheDir
	}
	if other.RepoLockTimeout != 0 {
		c.RepoLockTimeout = other.RepoLockTimeout
	}
}

// applyEnvOverrides applies GITHOUND_* environment variable overrides.
func (c *EngineConfig) applyEnvOverrides() {
	if v := os.Getenv("GITHOUND_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("GITHOUND_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("GITHOUND_CACHE_NETWORK_ADDR"); v != "" {
		c.Cache.NetworkAddr = v
	}
	if v := os.Getenv("GITHOUND_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv("GITHOUND_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("GITHOUND_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("GITHOUND_ENABLE_CACHING"); v != "" {
		c.Cache.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *EngineConfig) Validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "network" {
		return fmt.Errorf("cache.cache_backend must be 'memory' or 'network', got %s", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.cache_ttl_seconds must be non-negative, got %d", c.Cache.TTLSeconds)
	}
	if c.Cache.Backend == "network" && c.Cache.NetworkAddr == "" {
		return fmt.Errorf("cache.cache_network_addr is required when cache_backend is 'network'")
	}
	if c.DefaultMaxResults < 0 {
		return fmt.Errorf("default_max_results must be non-negative, got %d", c.DefaultMaxResults)
	}
	for name, w := range map[string]float64{
		"query_match":       c.Ranking.Weights.QueryMatch,
		"recency":           c.Ranking.Weights.Recency,
		"file_importance":   c.Ranking.Weights.FileImportance,
		"author_relevance":  c.Ranking.Weights.AuthorRelevance,
		"commit_quality":    c.Ranking.Weights.CommitQuality,
		"context_relevance": c.Ranking.Weights.ContextRelevance,
		"frequency":         c.Ranking.Weights.Frequency,
	} {
		if w < 0 {
			return fmt.Errorf("ranking_weights.%s must be non-negative, got %f", name, w)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *EngineConfig) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file relative to repoDir's
// defaults. Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig(repoDir string) (*EngineConfig, error) {
	return loadUserConfig(repoDir)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
