package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleister1102/fleetvoice/internal/common"
	"github.com/aleister1102/fleetvoice/internal/models"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024 // 10MB

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	Server       ServerConfig       `json:"server,omitempty" yaml:"server,omitempty"`
	Browser      BrowserConfig      `json:"browser,omitempty" yaml:"browser,omitempty"`
	Dashboard    DashboardConfig    `json:"dashboard,omitempty" yaml:"dashboard,omitempty"`
	Sources      []SourceConfig     `json:"sources,omitempty" yaml:"sources,omitempty" validate:"required,min=1,dive"`
	Entities     []EntityConfig     `json:"entities,omitempty" yaml:"entities,omitempty" validate:"required,min=1,dive"`
	Lookup       LookupConfig       `json:"lookup,omitempty" yaml:"lookup,omitempty"`
	Voice        VoiceConfig        `json:"voice,omitempty" yaml:"voice,omitempty"`
	APISource    APISourceConfig    `json:"api_source,omitempty" yaml:"api_source,omitempty"`
	Schedule     ScheduleConfig     `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Notification NotificationConfig `json:"notification,omitempty" yaml:"notification,omitempty"`
	LogConfig    LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Server:       NewDefaultServerConfig(),
		Browser:      NewDefaultBrowserConfig(),
		Dashboard:    NewDefaultDashboardConfig(),
		Lookup:       NewDefaultLookupConfig(),
		Voice:        NewDefaultVoiceConfig(),
		APISource:    NewDefaultAPISourceConfig(),
		Notification: NewDefaultNotificationConfig(),
		LogConfig:    NewDefaultLogConfig(),
	}
}

// TrackedEntities returns the immutable entity list in configured order.
func (gc *GlobalConfig) TrackedEntities() []models.TrackedEntity {
	entities := make([]models.TrackedEntity, 0, len(gc.Entities))
	for _, e := range gc.Entities {
		entities = append(entities, e.ToModel())
	}
	return entities
}

// DataSources returns the immutable source list in priority order.
func (gc *GlobalConfig) DataSources() []models.DataSource {
	sources := make([]models.DataSource, 0, len(gc.Sources))
	for _, s := range gc.Sources {
		sources = append(sources, s.ToModel())
	}
	return sources
}

// DefaultEntityID resolves which entity GET /voice answers for.
func (gc *GlobalConfig) DefaultEntityID() string {
	if gc.Voice.DefaultEntity != "" {
		return gc.Voice.DefaultEntity
	}
	if len(gc.Entities) > 0 {
		return gc.Entities[0].ID
	}
	return ""
}

// LoadGlobalConfig loads the configuration from a file or default locations,
// then applies environment overrides. YAML is used for .yaml/.yml files and
// JSON otherwise. A missing file yields defaults plus environment.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" && providedPath != "" {
		return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	if filePath != "" {
		data, err := loadConfigFileContent(filePath)
		if err != nil {
			return nil, common.WrapError(err, "failed to load config file content")
		}
		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, common.WrapError(err, "failed to parse config content")
		}
	}

	ApplyEnvOverrides(cfg)
	return cfg, nil
}

// loadConfigFileContent reads the config file with a size guard
func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file '%s' is too large (%d bytes)", filePath, info.Size())
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
