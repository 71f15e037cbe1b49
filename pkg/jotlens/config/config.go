package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/jotlens/pkg/jotlens/insight"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/productivity"
	"github.com/cognicore/jotlens/pkg/jotlens/prompt"
	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
	"github.com/cognicore/jotlens/pkg/jotlens/tasks"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Sentiment backends
const (
	BackendLexicon = "lexicon"
	BackendOpenAI  = "openai"
)

// Config is the complete jotlens configuration as read from YAML
type Config struct {
	Stopwords    []string      `yaml:"stopwords"`
	Productivity Productivity  `yaml:"productivity"`
	Tasks        Tasks         `yaml:"tasks"`
	Insights     Insights      `yaml:"insights"`
	Prompts      prompt.Config `yaml:"prompts"`
	Sentiment    Sentiment     `yaml:"sentiment"`
	LLM          LLM           `yaml:"llm"`
	Store        Store         `yaml:"store"`
	Server       Server        `yaml:"server"`
	Schedule     Schedule      `yaml:"schedule"`
}

// Productivity holds the achievement keywords counted by the scorer
type Productivity struct {
	Keywords []string `yaml:"keywords"`
}

// Tasks holds the ordered intent patterns for task extraction
type Tasks struct {
	Patterns []string `yaml:"patterns"`
}

// Insights bounds the topic ranking
type Insights struct {
	TopK        int `yaml:"top_k"`
	MinMentions int `yaml:"min_mentions"`
}

// Sentiment selects the mood backend and overrides lexicon weights
type Sentiment struct {
	Backend string             `yaml:"backend"`
	Lexicon map[string]float64 `yaml:"lexicon"`
}

// LLM configures the OpenAI mood backend. The key is read from the
// environment variable named by APIKeyEnv.
type LLM struct {
	Model           string        `yaml:"model"`
	APIKeyEnv       string        `yaml:"api_key_env"`
	BaseURL         string        `yaml:"base_url"`
	MaxOutputTokens int64         `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Store locates the SQLite database; empty means DataDir()/journal.db
type Store struct {
	Path string `yaml:"path"`
}

// Server is the HTTP listen address
type Server struct {
	Addr string `yaml:"addr"`
}

// Schedule holds the daily prompt cron spec and its timezone
type Schedule struct {
	DailyPrompt string `yaml:"daily_prompt"`
	Timezone    string `yaml:"timezone"`
}

// ConfigDir returns the XDG config directory for jotlens.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "jotlens")
}

// DataDir returns the XDG data directory for jotlens.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "jotlens")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/jotlens/config.yaml > ./config.yaml.
// An empty result with a nil error means no file exists and the embedded
// defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}
	return "", nil
}

// Load reads and parses a config YAML file. An empty path parses the
// embedded default.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(DefaultConfigYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(err)
	}
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Insights: Insights{
			TopK:        insight.DefaultTopK,
			MinMentions: insight.DefaultMinMentions,
		},
		Prompts:   prompt.DefaultConfig(),
		Sentiment: Sentiment{Backend: BackendLexicon},
		LLM: LLM{
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			MaxOutputTokens: 64,
			Timeout:         20 * time.Second,
		},
		Server:   Server{Addr: "127.0.0.1:8080"},
		Schedule: Schedule{Timezone: "Local"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.Stopwords) == 0 {
		cfg.Stopwords = stoplist.Default()
	}
	if len(cfg.Productivity.Keywords) == 0 {
		cfg.Productivity.Keywords = productivity.DefaultKeywords
	}
	if len(cfg.Tasks.Patterns) == 0 {
		cfg.Tasks.Patterns = tasks.DefaultPatterns
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports values that no component can work with.
func (c *Config) Validate() error {
	switch c.Sentiment.Backend {
	case BackendLexicon, BackendOpenAI:
	default:
		return fmt.Errorf("sentiment backend %q: %w", c.Sentiment.Backend, internalerr.ErrInvalidConfig)
	}
	if c.Insights.TopK < 0 || c.Insights.MinMentions < 0 {
		return fmt.Errorf("insights top_k and min_mentions must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if c.Prompts.Window < 0 {
		return fmt.Errorf("prompts window must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	for _, ks := range c.Prompts.KeywordSets {
		if !strings.Contains(ks.Template, prompt.Placeholder) {
			return fmt.Errorf("keyword set %q: template lacks %s: %w", ks.Name, prompt.Placeholder, internalerr.ErrInvalidConfig)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Schedule.Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Schedule.Timezone
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("schedule timezone %q: %w", tz, internalerr.ErrInvalidConfig)
	}
	return loc, nil
}

// StorePath returns the effective database path from config or XDG default.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(DataDir(), "journal.db")
}

// APIKey reads the LLM key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
