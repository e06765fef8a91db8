package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-agent/internal/ai/gemini"
	"github.com/spigell/job-agent/internal/api"
)

const (
	app = "job-agent"

	defaultUserID = "local"
)

type Config struct {
	UserID          string        `mapstructure:"user-id"`
	DatabaseURL     string        `mapstructure:"database-url"`
	DatabaseURLFile string        `mapstructure:"database-url-file"`
	RedisURL        string        `mapstructure:"redis-url"`
	CacheTTL        time.Duration `mapstructure:"cache-ttl"`
	ExcludeFile     string        `mapstructure:"exclude-file"`

	Sources *SourcesConfig `mapstructure:"sources"`
	Search  *SearchConfig  `mapstructure:"search"`
	Filters *FiltersConfig `mapstructure:"filters"`
	AI      *AIConfig      `mapstructure:"ai"`
	Agent   *AgentConfig   `mapstructure:"agent"`
	Mail    *MailConfig    `mapstructure:"mail"`
	API     api.Config     `mapstructure:"api"`
}

type SourcesConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	Remotive  *SourceConfig `mapstructure:"remotive"`
	Arbeitnow *SourceConfig `mapstructure:"arbeitnow"`
	JSearch   *SourceConfig `mapstructure:"jsearch"`
}

type SourceConfig struct {
	Disabled   bool   `mapstructure:"disabled"`
	URL        string `mapstructure:"url"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type SearchConfig struct {
	Query          string `mapstructure:"query"`
	Location       string `mapstructure:"location"`
	EmploymentType string `mapstructure:"employment-type"`
	RemoteOnly     bool   `mapstructure:"remote-only"`
	Category       string `mapstructure:"category"`
	Limit          int    `mapstructure:"limit"`
}

type FiltersConfig struct {
	RedFlags          []string `mapstructure:"red-flags"`
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
	MinScore          int      `mapstructure:"min-score"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Concurrency     int           `mapstructure:"concurrency"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
	Prompt          *PromptConfig `mapstructure:"prompt"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type PromptConfig struct {
	ExtraCriteria     string `mapstructure:"extra-criteria"`
	DealBreakers      string `mapstructure:"deal-breakers"`
	CustomKeywords    string `mapstructure:"custom-keywords"`
	Tone              string `mapstructure:"tone"`
	RegionConstraints string `mapstructure:"region-constraints"`
	UserInstructions  string `mapstructure:"user-instructions"`
}

func (p *PromptConfig) overrides() gemini.PromptOverrides {
	if p == nil {
		return gemini.PromptOverrides{}
	}
	return gemini.PromptOverrides{
		ExtraCriteria:     p.ExtraCriteria,
		DealBreakers:      p.DealBreakers,
		CustomKeywords:    p.CustomKeywords,
		Tone:              p.Tone,
		RegionConstraints: p.RegionConstraints,
		UserInstructions:  p.UserInstructions,
	}
}

type AgentConfig struct {
	Schedule     string `mapstructure:"schedule"`
	TopN         int    `mapstructure:"top-n"`
	MinScore     int    `mapstructure:"min-score"`
	DatePosted   string `mapstructure:"date-posted"`
	DashboardURL string `mapstructure:"dashboard-url"`
}

type MailConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"from-name"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-agent parses resumes, searches job boards and ranks postings against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// envBindings maps config keys to the environment variables that can set them.
var envBindings = map[string]string{
	"user-id":                      "JOB_AGENT_USER_ID",
	"database-url":                 "DATABASE_URL",
	"database-url-file":            "DATABASE_URL_FILE",
	"redis-url":                    "REDIS_URL",
	"ai.gemini.api-key-file":       "GEMINI_API_KEY_FILE",
	"sources.jsearch.api-key-file": "JSEARCH_API_KEY_FILE",
	"mail.password-file":           "SMTP_PASSWORD_FILE",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user id the command acts for (default is user-id from the config or \"local\")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("user-id", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config must be readable. The default one is optional since
	// every command can run on flags and environment alone.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.UserID = strings.TrimSpace(config.UserID)
	if config.UserID == "" {
		config.UserID = defaultUserID
	}
	if config.Sources == nil {
		config.Sources = &SourcesConfig{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Agent == nil {
		config.Agent = &AgentConfig{}
	}

	return config, nil
}
