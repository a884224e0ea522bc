package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/jean-pierre/jpc/internal/workspace"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	appName        = "jean-pierre-code"
	configFile     = "config.toml"
	keyringService = "jpc"
)

// Config represents the jpc configuration
type Config struct {
	RemoteEndpoint string        `mapstructure:"remote_endpoint" toml:"remote_endpoint,omitempty"`
	APIKey         string        `mapstructure:"api_key" toml:"api_key,omitempty"`
	Model          string        `mapstructure:"model" toml:"model"`
	ProjectRoot    string        `mapstructure:"project_root" toml:"project_root,omitempty"`
	Backend        string        `mapstructure:"backend" toml:"backend"`
	OllamaURL      string        `mapstructure:"ollama_url" toml:"ollama_url"`
	GeminiURL      string        `mapstructure:"gemini_url" toml:"gemini_url,omitempty"`
	Command        CommandConfig `mapstructure:"command" toml:"command"`
	Context        ContextConfig `mapstructure:"context" toml:"context"`
	Plan           PlanConfig    `mapstructure:"plan" toml:"plan"`
}

// CommandConfig configures the command-line generation backend
type CommandConfig struct {
	Binary string   `mapstructure:"binary" toml:"binary"`
	Args   []string `mapstructure:"args" toml:"args"`
}

// ContextConfig bounds project context collection
type ContextConfig struct {
	MaxFiles int `mapstructure:"max_files" toml:"max_files"`
	MaxBytes int `mapstructure:"max_bytes" toml:"max_bytes"`
}

// PlanConfig contains planner settings
type PlanConfig struct {
	MaxTokens   int `mapstructure:"max_tokens" toml:"max_tokens"`
	PromptChars int `mapstructure:"prompt_chars" toml:"prompt_chars"`
}

// Paths lists the config files in merge order; later files override earlier ones.
type Paths struct {
	User  string
	Local string
}

// DefaultPaths returns the user config file and the project-local one under .jpc/.
func DefaultPaths(root string) Paths {
	userDir, err := os.UserConfigDir()
	if err != nil {
		userDir = workspace.Path(root)
	} else {
		userDir = filepath.Join(userDir, appName)
	}
	return Paths{
		User:  filepath.Join(userDir, configFile),
		Local: workspace.ConfigPath(root),
	}
}

// DefaultConfig returns a config with default values
func DefaultConfig(cwd string) *Config {
	return &Config{
		Model:       "tiny-llama",
		ProjectRoot: cwd,
		Backend:     "ollama",
		OllamaURL:   "http://localhost:11434",
		Command: CommandConfig{
			Binary: "claude",
			Args:   []string{"-p"},
		},
		Context: ContextConfig{
			MaxFiles: 50,
			MaxBytes: 512_000,
		},
		Plan: PlanConfig{
			MaxTokens:   2048,
			PromptChars: 40_000,
		},
	}
}

// envKeys are the settings that JPC_* environment variables override.
var envKeys = []string{"remote_endpoint", "api_key", "model", "project_root", "backend", "ollama_url", "gemini_url"}

// Settings builds the merged viper settings: defaults, then each existing
// config file in order, then JPC_* environment variables.
func Settings(paths Paths, cwd string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig(cwd))

	for _, path := range []string{paths.User, paths.Local} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("JPC")
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return v, nil
}

// Load reads the merged configuration for a project root
func Load(paths Paths, cwd string) (*Config, error) {
	v, err := Settings(paths, cwd)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg, cwd)

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("model", d.Model)
	v.SetDefault("project_root", d.ProjectRoot)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("ollama_url", d.OllamaURL)
	v.SetDefault("command.binary", d.Command.Binary)
	v.SetDefault("command.args", d.Command.Args)
	v.SetDefault("context.max_files", d.Context.MaxFiles)
	v.SetDefault("context.max_bytes", d.Context.MaxBytes)
	v.SetDefault("plan.max_tokens", d.Plan.MaxTokens)
	v.SetDefault("plan.prompt_chars", d.Plan.PromptChars)
}

func applyDefaults(cfg *Config, cwd string) {
	defaults := DefaultConfig(cwd)

	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = defaults.ProjectRoot
	}
	if cfg.Backend == "" {
		cfg.Backend = defaults.Backend
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = defaults.OllamaURL
	}
	if cfg.Command.Binary == "" {
		cfg.Command.Binary = defaults.Command.Binary
	}
	if cfg.Context.MaxFiles <= 0 {
		cfg.Context.MaxFiles = defaults.Context.MaxFiles
	}
	if cfg.Context.MaxBytes <= 0 {
		cfg.Context.MaxBytes = defaults.Context.MaxBytes
	}
	if cfg.Plan.MaxTokens <= 0 {
		cfg.Plan.MaxTokens = defaults.Plan.MaxTokens
	}
	if cfg.Plan.PromptChars <= 0 {
		cfg.Plan.PromptChars = defaults.Plan.PromptChars
	}
}

// ResolveAPIKey returns the configured API key, falling back to the OS
// keyring entry for the active backend. An empty string means none is available.
func ResolveAPIKey(cfg *Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	key, err := keyring.Get(keyringService, cfg.Backend)
	if err != nil {
		return ""
	}
	return key
}

// StoreAPIKey saves an API key for a backend in the OS keyring.
func StoreAPIKey(backend, key string) error {
	if err := keyring.Set(keyringService, backend, key); err != nil {
		return fmt.Errorf("failed to store API key for %s: %w", backend, err)
	}
	return nil
}

// Init writes the default config to the user and local config paths.
// Existing files are left alone unless force is set. It returns the paths written.
func Init(paths Paths, cwd string, force bool) ([]string, error) {
	cfg := DefaultConfig(cwd)
	// project_root stays unset so it resolves to the working directory on load.
	cfg.ProjectRoot = ""

	var written []string
	for _, path := range []string{paths.User, paths.Local} {
		if path == "" {
			continue
		}
		ok, err := writeConfig(path, cfg, force)
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, path)
		}
	}
	return written, nil
}

func writeConfig(path string, cfg *Config, force bool) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return true, nil
}

// SetValue writes one key into the config file at path, keeping the other
// keys already there. Integer-looking values are stored as integers.
func SetValue(path, key, value string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if n, err := strconv.Atoi(value); err == nil {
		v.Set(key, n)
	} else {
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
