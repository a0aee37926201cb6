package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	HTTPClientConfig   HTTPClientConfig   `json:"http_client_config,omitempty" yaml:"http_client_config,omitempty"`
	RedirectConfig     RedirectConfig     `json:"redirect_config,omitempty" yaml:"redirect_config,omitempty"`
	ReachabilityConfig ReachabilityConfig `json:"reachability_config,omitempty" yaml:"reachability_config,omitempty"`
	URLScanConfig      URLScanConfig      `json:"urlscan_config,omitempty" yaml:"urlscan_config,omitempty"`
	OrchestratorConfig OrchestratorConfig `json:"orchestrator_config,omitempty" yaml:"orchestrator_config,omitempty"`
	HistoryConfig      HistoryConfig      `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	MetricsConfig      MetricsConfig      `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:          NewDefaultLogConfig(),
		HTTPClientConfig:   NewDefaultHTTPClientConfig(),
		RedirectConfig:     NewDefaultRedirectConfig(),
		ReachabilityConfig: NewDefaultReachabilityConfig(),
		URLScanConfig:      NewDefaultURLScanConfig(),
		OrchestratorConfig: NewDefaultOrchestratorConfig(),
		HistoryConfig:      NewDefaultHistoryConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
// The urlscan API key falls back to the URLSCAN_API_KEY environment variable.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		applyEnvironment(cfg)
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	if !fileManager.FileExists(filePath) {
		return nil, common.NewValidationError("config_file", filePath, "config file does not exist")
	}

	data, err := loadConfigFileContent(fileManager, filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	applyEnvironment(cfg)
	logger.Debug().Str("path", filePath).Msg("Configuration file loaded")
	return cfg, nil
}

// applyEnvironment fills secrets that are usually kept out of config files
func applyEnvironment(cfg *GlobalConfig) {
	if cfg.URLScanConfig.APIKey == "" {
		cfg.URLScanConfig.APIKey = os.Getenv(EnvURLScanAPIKey)
	}
}

// loadConfigFileContent reads the config file using FileManager
func loadConfigFileContent(fileManager *common.FileManager, filePath string) ([]byte, error) {
	return fileManager.ReadFile(filePath, common.DefaultFileReadOptions())
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
