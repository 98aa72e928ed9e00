// Package config provides configuration management for the LaTeX-to-Word
// converter.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zxkjack123/latex2word/internal/logger"
	"github.com/zxkjack123/latex2word/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "latex2word-config.json"
	// EnvPandocBinary overrides the pandoc executable
	EnvPandocBinary = "LATEX2WORD_PANDOC"
	// EnvDebug enables debug logging when set to a non-empty value
	EnvDebug = "LATEX2WORD_DEBUG"
	// DefaultPandocBinary is the pandoc executable looked up on PATH
	DefaultPandocBinary = "pandoc"
	// DefaultPandocTimeout is the per-invocation timeout in seconds
	DefaultPandocTimeout = 300
	// DefaultCaptionLocale is the default caption language
	DefaultCaptionLocale = "en"
)

// Manager manages the application configuration.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager with the specified config path. If configPath
// is empty, it uses the default path in the user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "latex2word", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		PandocBinary:  DefaultPandocBinary,
		FixTable:      true,
		CaptionLocale: DefaultCaptionLocale,
		PandocTimeout: DefaultPandocTimeout,
	}
}

// Load loads configuration from the config file. A missing file is not an
// error; defaults apply. Environment variables take precedence over file
// values.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded",
				logger.String("path", m.configPath),
				logger.String("pandoc", config.PandocBinary))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.PandocBinary == "" {
		m.config.PandocBinary = DefaultPandocBinary
	}
	if m.config.PandocTimeout == 0 {
		m.config.PandocTimeout = DefaultPandocTimeout
	}
	if m.config.CaptionLocale == "" {
		m.config.CaptionLocale = DefaultCaptionLocale
	}

	m.applyEnvironment()
	return nil
}

// applyEnvironment overrides config values from the environment.
func (m *Manager) applyEnvironment() {
	if binary := os.Getenv(EnvPandocBinary); binary != "" {
		m.config.PandocBinary = binary
	}
	if os.Getenv(EnvDebug) != "" {
		m.config.Debug = true
	}
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
