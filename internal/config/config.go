// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. One instance is built at
// startup, owned by the run loop, and borrowed by every component below it;
// there is no package-level mutable state.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// AgentConfig bounds the step loop and carries the tunables of the ranking
// and execution heuristics. The penalty and cap values were chosen
// empirically; the only hard requirement is that the repetition penalty is
// strictly positive and escalates when the UI is visibly stuck.
type AgentConfig struct {
	MaxSteps      int           `mapstructure:"max_steps" yaml:"max_steps"`
	HistoryWindow int           `mapstructure:"history_window" yaml:"history_window"`
	StepBudget    time.Duration `mapstructure:"step_budget" yaml:"step_budget"`
	ActionTimeout time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	SettleWait    time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`

	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Scoring ScoringConfig `mapstructure:"scoring" yaml:"scoring"`
	Ranker  RankerConfig  `mapstructure:"ranker" yaml:"ranker"`
}

// CatalogConfig tunes element collection.
type CatalogConfig struct {
	// MinArea filters out degenerate boxes (px^2).
	MinArea float64 `mapstructure:"min_area" yaml:"min_area"`
	// DedupTolerance is the pixel rounding used to group overlapping boxes.
	DedupTolerance float64 `mapstructure:"dedup_tolerance" yaml:"dedup_tolerance"`
}

// ScoringConfig names every constant of the scoring heuristic so none of them
// hides as a literal in the logic.
type ScoringConfig struct {
	ExactMatchBonus      float64 `mapstructure:"exact_match_bonus" yaml:"exact_match_bonus"`
	ShortExactMatchBonus float64 `mapstructure:"short_exact_match_bonus" yaml:"short_exact_match_bonus"`
	TokenOverlapBonus    float64 `mapstructure:"token_overlap_bonus" yaml:"token_overlap_bonus"`
	IntentNameBonus      float64 `mapstructure:"intent_name_bonus" yaml:"intent_name_bonus"`
	IntentLandmarkBonus  float64 `mapstructure:"intent_landmark_bonus" yaml:"intent_landmark_bonus"`
	FormRoleBonus        float64 `mapstructure:"form_role_bonus" yaml:"form_role_bonus"`
	ConflictPenalty      float64 `mapstructure:"conflict_penalty" yaml:"conflict_penalty"`
	ChromePenalty        float64 `mapstructure:"chrome_penalty" yaml:"chrome_penalty"`
	DestructivePenalty   float64 `mapstructure:"destructive_penalty" yaml:"destructive_penalty"`
	RetryPenalty         float64 `mapstructure:"retry_penalty" yaml:"retry_penalty"`
	StuckPenalty         float64 `mapstructure:"stuck_penalty" yaml:"stuck_penalty"`
	GarbagePenalty       float64 `mapstructure:"garbage_penalty" yaml:"garbage_penalty"`
}

// RankerConfig bounds the candidate set.
type RankerConfig struct {
	TopK               int     `mapstructure:"top_k" yaml:"top_k"`
	FormTopK           int     `mapstructure:"form_top_k" yaml:"form_top_k"`
	CoverageSlots      int     `mapstructure:"coverage_slots" yaml:"coverage_slots"`
	IneffectivePenalty float64 `mapstructure:"ineffective_penalty" yaml:"ineffective_penalty"`
	FieldLabelBonus    float64 `mapstructure:"field_label_bonus" yaml:"field_label_bonus"`
}

// LLMConfig configures the planner and proposer models.
type LLMConfig struct {
	APIKey         string        `mapstructure:"api_key" yaml:"-"`
	PlannerModel   string        `mapstructure:"planner_model" yaml:"planner_model"`
	ProposerModel  string        `mapstructure:"proposer_model" yaml:"proposer_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	MaxImageEdge   int           `mapstructure:"max_image_edge" yaml:"max_image_edge"`
}

// RunConfig describes where a run writes its diagnostic artifacts.
type RunConfig struct {
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	DatasetDir    string `mapstructure:"dataset_dir" yaml:"dataset_dir"`
	ExportDataset bool   `mapstructure:"export_dataset" yaml:"export_dataset"`
	Annotate      bool   `mapstructure:"annotate" yaml:"annotate"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "web-agent")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.window_width", 1440)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.post_load_wait", "2s")

	// -- Agent loop --
	v.SetDefault("agent.max_steps", 15)
	v.SetDefault("agent.history_window", 5)
	v.SetDefault("agent.step_budget", "20s")
	v.SetDefault("agent.action_timeout", "5s")
	v.SetDefault("agent.settle_wait", "300ms")

	// -- Catalog --
	v.SetDefault("agent.catalog.min_area", 50.0)
	v.SetDefault("agent.catalog.dedup_tolerance", 2.0)

	// -- Scoring --
	v.SetDefault("agent.scoring.exact_match_bonus", 5.0)
	v.SetDefault("agent.scoring.short_exact_match_bonus", 2.0)
	v.SetDefault("agent.scoring.token_overlap_bonus", 3.0)
	v.SetDefault("agent.scoring.intent_name_bonus", 2.0)
	v.SetDefault("agent.scoring.intent_landmark_bonus", 1.0)
	v.SetDefault("agent.scoring.form_role_bonus", 1.5)
	v.SetDefault("agent.scoring.conflict_penalty", 2.0)
	v.SetDefault("agent.scoring.chrome_penalty", 0.5)
	v.SetDefault("agent.scoring.destructive_penalty", 3.0)
	v.SetDefault("agent.scoring.retry_penalty", 1.5)
	v.SetDefault("agent.scoring.stuck_penalty", 5.0)
	v.SetDefault("agent.scoring.garbage_penalty", 5.0)

	// -- Ranker --
	v.SetDefault("agent.ranker.top_k", 10)
	v.SetDefault("agent.ranker.form_top_k", 25)
	v.SetDefault("agent.ranker.coverage_slots", 5)
	v.SetDefault("agent.ranker.ineffective_penalty", 10.0)
	v.SetDefault("agent.ranker.field_label_bonus", 3.0)

	// -- LLM --
	v.SetDefault("llm.planner_model", "gemini-2.5-flash")
	v.SetDefault("llm.proposer_model", "gemini-2.5-flash")
	v.SetDefault("llm.request_timeout", "45s")
	v.SetDefault("llm.max_image_edge", 960)

	// -- Run artifacts --
	v.SetDefault("run.output_dir", "out")
	v.SetDefault("run.dataset_dir", "dataset")
	v.SetDefault("run.export_dataset", true)
	v.SetDefault("run.annotate", true)
}

// NewDefaultConfig creates a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults, but fail loudly rather than limp.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	_ = v.BindEnv("llm.api_key", "GEMINI_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be a positive integer")
	}
	if c.Agent.HistoryWindow <= 0 {
		return fmt.Errorf("agent.history_window must be a positive integer")
	}
	if c.Agent.StepBudget <= 0 {
		return fmt.Errorf("agent.step_budget must be a positive duration")
	}
	if c.Agent.ActionTimeout <= 0 {
		return fmt.Errorf("agent.action_timeout must be a positive duration")
	}
	if c.Agent.Scoring.RetryPenalty <= 0 {
		return fmt.Errorf("agent.scoring.retry_penalty must be strictly positive")
	}
	if c.Agent.Scoring.StuckPenalty <= c.Agent.Scoring.RetryPenalty {
		return fmt.Errorf("agent.scoring.stuck_penalty must exceed retry_penalty")
	}
	if c.Agent.Ranker.TopK <= 0 || c.Agent.Ranker.FormTopK < c.Agent.Ranker.TopK {
		return fmt.Errorf("agent.ranker.form_top_k must be >= top_k and both positive")
	}
	if c.Agent.Catalog.MinArea < 0 {
		return fmt.Errorf("agent.catalog.min_area must not be negative")
	}
	return nil
}
