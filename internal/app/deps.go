package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"doc-summary/internal/cache"
	"doc-summary/internal/config"
	"doc-summary/internal/extract"
	"doc-summary/internal/llm"
	"doc-summary/internal/logger"
	"doc-summary/internal/notify"
)

// Extractor turns an input path into a document.
type Extractor interface {
	Extract(ctx context.Context, path string) (extract.Document, error)
}

// Deps bundles the runtime dependencies of one pipeline run.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Extractor Extractor
	LLM       llm.Client
	Cache     cache.Cache
	Notifier  notify.Notifier
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return config.Load()
}

// Build creates shared components from cfg. Logs go to logOut.
func Build(cfg config.Config, logOut io.Writer) (Deps, error) {
	if err := cfg.Validate(); err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel, logOut)

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	n, err := buildNotifier(cfg, log)
	if err != nil {
		_ = c.Close()
		return Deps{}, fmt.Errorf("failed to initialize notifier: %w", err)
	}
	return Deps{
		Config:    cfg,
		Log:       log,
		Extractor: extract.New(log),
		LLM:       llmClient,
		Cache:     c,
		Notifier:  n,
	}, nil
}

// Close releases cache and notifier connections.
func (d Deps) Close() error {
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.Notifier != nil {
		errs = append(errs, d.Notifier.Close())
	}
	return errors.Join(errs...)
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	client, err := llm.NewOpenAIClient(llm.Options{
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.GitHubToken,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		Timeout:     cfg.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("using OpenAI-compatible client", "endpoint", cfg.Endpoint, "model", cfg.Model)
	return client, nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none", "":
		return cache.NewNoOpCache(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER=redis")
		}
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		log.Info("using Redis completion cache", "addr", cfg.RedisAddr)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger) (notify.Notifier, error) {
	switch cfg.NotifyProvider {
	case "none", "":
		return notify.NoOp{}, nil
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when NOTIFY_PROVIDER=nats")
		}
		n, err := notify.NewNATS(cfg.NATSURL, cfg.NotifySubject)
		if err != nil {
			return nil, err
		}
		log.Info("using NATS notifier", "subject", cfg.NotifySubject)
		return n, nil
	default:
		return nil, fmt.Errorf("invalid NOTIFY_PROVIDER: %s (valid options: none, nats)", cfg.NotifyProvider)
	}
}
