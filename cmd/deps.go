package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/ai"
	"github.com/spigell/job-agent/internal/ai/gemini"
	"github.com/spigell/job-agent/internal/cache"
	"github.com/spigell/job-agent/internal/digest"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/logger"
	"github.com/spigell/job-agent/internal/secrets"
	"github.com/spigell/job-agent/internal/storage"
)

var errNoDatabase = errors.New("database is not configured (set database-url, DATABASE_URL or DATABASE_URL_FILE)")

// setup builds the logger and reads the config. It exits on failure like the
// rest of the command layer.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}

// openStore connects to PostgreSQL and applies the schema. It returns
// errNoDatabase when no database is configured.
func openStore(ctx context.Context, config *Config, logger *zap.Logger) (*storage.Store, error) {
	url, err := secrets.LoadOptional(secrets.Source{
		Name:  "database url",
		Value: config.DatabaseURL,
		File:  config.DatabaseURLFile,
	})
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, errNoDatabase
	}

	store, err := storage.Connect(ctx, url, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// mustOpenStore is openStore for commands that cannot work without a database.
func mustOpenStore(ctx context.Context, config *Config, logger *zap.Logger) *storage.Store {
	store, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	return store
}

// newJobsClient returns the shared source client, backed by Redis when a
// redis url is configured. A cache that cannot be reached is skipped.
func newJobsClient(ctx context.Context, config *Config, logger *zap.Logger) (*jobs.Client, func()) {
	opts := []jobs.ClientOption{jobs.WithTimeout(config.Sources.Timeout)}
	closer := func() {}

	if config.RedisURL != "" {
		redis, err := cache.Connect(ctx, config.RedisURL, config.CacheTTL)
		if err != nil {
			logger.Warn("skipping payload cache", zap.Error(err))
		} else {
			opts = append(opts, jobs.WithCache(redis))
			closer = func() {
				if err := redis.Close(); err != nil {
					logger.Warn("closing payload cache", zap.Error(err))
				}
			}
		}
	}

	return jobs.NewClient(logger, opts...), closer
}

// buildSources returns every enabled job source. JSearch is only enabled
// when an API key is available.
func buildSources(client *jobs.Client, config *SourcesConfig, logger *zap.Logger) []jobs.Source {
	var sources []jobs.Source

	if cfg := config.Remotive; cfg == nil || !cfg.Disabled {
		sources = append(sources, jobs.NewRemotive(client, sourceURL(cfg)))
	}
	if cfg := config.Arbeitnow; cfg == nil || !cfg.Disabled {
		sources = append(sources, jobs.NewArbeitnow(client, sourceURL(cfg)))
	}

	if cfg := config.JSearch; cfg != nil && !cfg.Disabled {
		key, err := secrets.LoadOptional(secrets.Source{
			Name: "jsearch api key",
			File: cfg.APIKeyFile,
			Env:  "RAPIDAPI_KEY",
		})
		switch {
		case err != nil:
			logger.Warn("skipping jsearch source", zap.Error(err))
		case key == "":
			logger.Info("skipping jsearch source", zap.String("reason", "api key is not configured"))
		default:
			sources = append(sources, jobs.NewJSearch(client, cfg.URL, key))
		}
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	logger.Debug("job sources enabled", zap.Strings("sources", names))

	return sources
}

func sourceURL(cfg *SourceConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.URL
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Matcher, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (or set ai.gemini.api-key-file / GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, "", err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.With(zap.Float64("minimum_fit_score", minScore))

	matcher := gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger)
	matcher.SetPromptOverrides(cfg.Prompt.overrides())

	return matcher, generator.Model(), nil
}

func newMailSender(config *MailConfig) (*digest.MailSender, error) {
	if config == nil {
		return nil, errors.New("mail configuration is required")
	}

	password, err := secrets.LoadOptional(secrets.Source{
		Name: "smtp password",
		File: config.PasswordFile,
		Env:  "SMTP_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	return digest.NewMailSender(digest.MailConfig{
		Host:     config.Host,
		Port:     config.Port,
		Username: config.Username,
		Password: password,
		From:     config.From,
		FromName: config.FromName,
	})
}
