/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package overlay

import (
	"os"
	"strings"

	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"gopkg.in/yaml.v3"
)

var defaultConfig = Config{}

type ServerConfig struct {
	Address       string `yaml:"address"`
	NamedLogLevel string `yaml:"log-level"`
	Refresh       bool   `yaml:"refresh"`
	LogLevel      log.LogLevel
}

func (c *ServerConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// Set default values
	c.Address = defaultConfig.Server.Address
	c.NamedLogLevel = defaultConfig.Server.NamedLogLevel
	c.Refresh = defaultConfig.Server.Refresh
	type alias ServerConfig
	if err := unmarshal((*alias)(c)); err != nil {
		return err
	}
	c.LogLevel = parseLogLevel(c.NamedLogLevel)
	return nil
}

type StatusConfig struct {
	URL string `yaml:"url"`
}

func (c *StatusConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	c.URL = defaultConfig.Status.URL
	type alias StatusConfig
	return unmarshal((*alias)(c))
}

type WikiConfig struct {
	API       string `yaml:"api"`
	MediaHost string `yaml:"media-host"`
	ShipsAPI  string `yaml:"ships-api"`
}

func (c *WikiConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	c.API = defaultConfig.Wiki.API
	c.MediaHost = defaultConfig.Wiki.MediaHost
	c.ShipsAPI = defaultConfig.Wiki.ShipsAPI
	type alias WikiConfig
	return unmarshal((*alias)(c))
}

type DnsConfig struct {
	Address string `yaml:"address"`
}

func (c *DnsConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// Set default values
	c.Address = defaultConfig.Dns.Address
	type alias DnsConfig
	if err := unmarshal((*alias)(c)); err != nil {
		return err
	}
	return nil
}

type AssistantConfig struct {
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api-key"`
	Search  bool   `yaml:"search"`
	BaseURL string `yaml:"base-url"`
}

func (c *AssistantConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	c.Model = defaultConfig.Assistant.Model
	c.APIKey = defaultConfig.Assistant.APIKey
	c.Search = defaultConfig.Assistant.Search
	c.BaseURL = defaultConfig.Assistant.BaseURL
	type alias AssistantConfig
	return unmarshal((*alias)(c))
}

// Config also accepts the flat keys of the desktop app's config.json.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Status    StatusConfig    `yaml:"status"`
	Wiki      WikiConfig      `yaml:"wiki"`
	Dns       DnsConfig       `yaml:"dns"`
	Assistant AssistantConfig `yaml:"assistant"`

	GeminiAPIKey       string `yaml:"GEMINI_API_KEY"`
	GeminiAPIKeyLower  string `yaml:"gemini_api_key"`
	GeminiKey          string `yaml:"geminiKey"`
	APIKey             string `yaml:"apiKey"`
	EnableGoogleSearch bool   `yaml:"enable_google_search"`
	GoogleSearch       bool   `yaml:"googleSearch"`
	EnableSearch       bool   `yaml:"enableSearch"`
}

func SetDefaultConfig(data *[]byte) {
	if err := yaml.Unmarshal(*data, &defaultConfig); err != nil {
		log.Errorf("Could not initialize default configuration: %v", err)
	}
}

func parseLogLevel(name string) log.LogLevel {
	if level, ok := log.LogLevels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level
	}
	return log.INFO
}

// apiKey picks the first non-empty spelling, the sectioned key last.
func (c *Config) apiKey() string {
	for _, k := range []string{c.GeminiAPIKey, c.GeminiAPIKeyLower, c.GeminiKey, c.APIKey, c.Assistant.APIKey} {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return ""
}

// normalize folds the flat spellings into the sections.
func (c *Config) normalize() {
	c.Assistant.APIKey = c.apiKey()
	c.Assistant.Search = c.Assistant.Search || c.EnableGoogleSearch || c.GoogleSearch || c.EnableSearch
}

// applyEnv overrides file values with the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if key, ok := lookup("GEMINI_API_KEY"); ok && strings.TrimSpace(key) != "" {
		c.Assistant.APIKey = strings.TrimSpace(key)
	}
	if v, ok := lookup("OVERLAY_ENABLE_SEARCH"); ok {
		c.Assistant.Search = v == "1"
	}
	if v, ok := lookup("OVERLAY_REFRESH"); ok {
		c.Server.Refresh = v == "1"
	}
	if v, ok := lookup("OVERLAY_LOG_LEVEL"); ok {
		c.Server.NamedLogLevel = v
		c.Server.LogLevel = parseLogLevel(v)
	}
	if v, ok := lookup("OVERLAY_ADDRESS"); ok && v != "" {
		c.Server.Address = v
	}
}

// loadConfig reads filename on top of the defaults. A missing file yields the
// defaults together with the read error.
func loadConfig(filename string) (Config, error) {
	config := defaultConfig
	data, err := os.ReadFile(filename)
	if err != nil {
		config.normalize()
		return config, err
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, err
	}
	config.normalize()
	return config, nil
}

// resolveConfig is loadConfig plus environment overrides. Only unreadable or
// malformed files are errors.
func resolveConfig(filename string, lookup func(string) (string, bool)) (Config, error) {
	config, err := loadConfig(filename)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err != nil {
		log.Debugf("No config file at %q, using defaults", filename)
	}
	config.applyEnv(lookup)
	return config, nil
}
