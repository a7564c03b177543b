package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/runixer/evalboard/internal/config"
	"github.com/runixer/evalboard/internal/dashboard"
	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/i18n"
)

// Services holds everything the dashboard server needs.
type Services struct {
	Client     evaluator.Client
	Translator *i18n.Translator
	Sessions   *dashboard.SessionStore
}

// SetupServices builds the evaluator client, translator and session store
// from cfg. A nil client creates one from cfg.Evaluator; tests pass a mock.
//
// The evaluator version is checked once. A failed check is logged and does not
// prevent startup: the dashboard reports evaluator errors as notifications.
func SetupServices(ctx context.Context, logger *slog.Logger, cfg *config.Config, client evaluator.Client) (*Services, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if client == nil {
		var err error
		client, err = evaluator.NewClient(logger, evaluator.Options{
			BaseURL:  cfg.Evaluator.BaseURL,
			Timeout:  cfg.Evaluator.GetTimeout(),
			ProxyURL: cfg.Evaluator.ProxyURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create evaluator client: %w", err)
		}
	}

	lang := cfg.Dashboard.Language
	if lang == "" {
		lang = "en"
		logger.Warn("Language not specified in config, defaulting to 'en'")
	}
	// English is the fallback for keys missing from the configured language.
	translator, err := i18n.NewTranslator("en")
	if err != nil {
		return nil, fmt.Errorf("initialize translator: %w", err)
	}
	if !translator.Has(lang) {
		return nil, fmt.Errorf("dashboard.language %q: %w (available: %s)",
			lang, i18n.ErrUnknownLanguage, strings.Join(translator.Languages(), ", "))
	}
	logger.Info("Translator initialized", "lang", lang, "fallback_lang", translator.Default())

	sessions := dashboard.NewSessionStore(client, logger, dashboard.SessionOptions{
		TTL:       cfg.Dashboard.GetSessionTTL(),
		Localizer: translator.For(lang),
		PageSize:  cfg.Evaluator.PageSize,
	})

	if cfg.Evaluator.BaseURL != "" {
		version, err := client.Version(ctx)
		if err != nil {
			logger.Warn("Evaluator is not reachable", "base_url", cfg.Evaluator.BaseURL, "error", err)
		} else {
			logger.Info("Connected to evaluator", "base_url", cfg.Evaluator.BaseURL, "version", version)
		}
	}

	return &Services{
		Client:     client,
		Translator: translator,
		Sessions:   sessions,
	}, nil
}
