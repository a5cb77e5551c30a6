package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout = 20 // seconds
)

// ConfigCache loads and holds the search profiles from the searches
// directory. Profiles without an explicit refresh interval inherit the
// application-wide default.
type ConfigCache struct {
	searchesDir     string
	defaultInterval int
	cache           map[string]*Config
	mu              sync.RWMutex
}

func NewConfigCache(searchesDir string, defaultInterval int) *ConfigCache {
	return &ConfigCache{
		searchesDir:     searchesDir,
		defaultInterval: defaultInterval,
		cache:           make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.searchesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.searchesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive search name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		searchName := fileName[:len(fileName)-4]

		config, err := cc.LoadConfig(searchName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Search profile loaded", "search", searchName, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(searchName string) (*Config, error) {
	configFile := cc.getConfigFilePath(searchName)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = searchName

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(searchName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[searchName]
	if !ok {
		return nil, fmt.Errorf("search config with name '%s' not found", searchName)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = cc.defaultInterval
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = defaultTimeout
	}
	if config.Property == "" {
		config.Property = "1" // apartment
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"search name": config.Name,
		"city":        config.City,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"refresh interval": config.Settings.RefreshInterval,
		"timeout":          config.Settings.Timeout,
		"max price":        config.MaxPrice,
		"min square meter": config.MinSquareM,
		"min floor":        config.MinFloor,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if config.MinRooms < 0 || config.MaxRooms < 0 {
		return fmt.Errorf("room counts must be non-negative")
	}
	if config.MaxRooms > 0 && config.MinRooms > config.MaxRooms {
		return fmt.Errorf("min rooms (%v) exceeds max rooms (%v)", config.MinRooms, config.MaxRooms)
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(searchName string) string {
	return filepath.Join(cc.searchesDir, searchName+".yml")
}
