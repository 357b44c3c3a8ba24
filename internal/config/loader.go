package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var configSchema string

// EnvPrefix prefixes every environment override, e.g. TERMAI_MODEL or
// TERMAI_HISTORY_MAX_TURNS.
const EnvPrefix = "TERMAI"

// Loader handles configuration loading
type Loader struct {
	configPath string
	envFile    string
}

// NewLoader creates a new config loader. An empty path selects the default
// location under the user's home directory.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envFile:    ".env",
	}
}

// WithEnvFile sets the dotenv file read before the environment is consulted.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load builds the configuration from defaults, the optional JSON file, the
// dotenv file and the environment, in increasing order of precedence.
func (l *Loader) Load() (*Config, error) {
	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	configPath := l.GetConfigPath()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults and environment only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := validateSchema(data); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
			}
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv(EnvPrefix+"_API_KEY") != "" {
		cfg.keyFromEnv = true
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(CredentialEnv(cfg.Provider))
		cfg.keyFromEnv = cfg.APIKey != ""
	}

	// Set data directory if not specified
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".termai")
		cfg.derivedDataDir = true
	}

	// Set logging file path if not specified
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "termai.log")
		cfg.derivedLogFile = true
	}

	return cfg, nil
}

// Save saves the configuration to file. A key taken from the environment and
// paths derived from HOME are written empty so they are resolved again on the
// next load.
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("failed to resolve config path")
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	apiKey := cfg.APIKey
	if cfg.keyFromEnv {
		apiKey = ""
	}
	logging := cfg.Logging
	if cfg.derivedLogFile {
		logging.File = ""
	}
	dataDir := cfg.DataDir
	if cfg.derivedDataDir {
		dataDir = ""
	}

	v.Set("provider", cfg.Provider)
	v.Set("api_key", apiKey)
	v.Set("base_url", cfg.BaseURL)
	v.Set("model", cfg.Model)
	v.Set("max_output_tokens", cfg.MaxOutputTokens)
	v.Set("temperature", cfg.Temperature)
	v.Set("system_prompt", cfg.SystemPrompt)
	v.Set("history", cfg.History)
	v.Set("render", cfg.Render)
	v.Set("logging", logging)
	v.Set("data_dir", dataDir)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// The file may hold a credential.
	if err := os.Chmod(configPath, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}
	return DefaultConfigPath()
}

// DefaultConfigPath returns $HOME/.termai/termai.json, or an empty string when
// the home directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".termai", "termai.json")
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("provider", cfg.Provider)
	v.SetDefault("api_key", cfg.APIKey)
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("model", cfg.Model)
	v.SetDefault("max_output_tokens", cfg.MaxOutputTokens)
	v.SetDefault("temperature", cfg.Temperature)
	v.SetDefault("system_prompt", cfg.SystemPrompt)
	v.SetDefault("history.max_turns", cfg.History.MaxTurns)
	v.SetDefault("render.style", cfg.Render.Style)
	v.SetDefault("render.word_wrap", cfg.Render.WordWrap)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("logging.compress", cfg.Logging.Compress)
	v.SetDefault("logging.redaction", cfg.Logging.Redaction)
	v.SetDefault("data_dir", cfg.DataDir)
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
