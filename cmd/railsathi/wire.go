package main

import (
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/config"
	"github.com/safarlabs/railsathi/internal/dialogue"
	"github.com/safarlabs/railsathi/internal/extract"
	"github.com/safarlabs/railsathi/internal/fares"
	"github.com/safarlabs/railsathi/internal/llm"
	"github.com/safarlabs/railsathi/internal/session"
)

// controllerFactory builds one conversation controller per session. The
// rule engine and fare provider are shared; the LLM extractor is shared
// too because its rate limiter must span sessions.
func controllerFactory(cfg *config.Config, logger *zap.Logger) session.ControllerFactory {
	rules := extract.NewEngine()
	provider := fares.NewSampleProvider(cfg.Fares.Seed, logger)
	extractor := buildExtractor(cfg, logger)

	return func() (*dialogue.Controller, error) {
		return dialogue.NewController(rules, extractor, provider, logger,
			dialogue.WithMaxLLMCalls(cfg.LLM.MaxCallsPerSession))
	}
}

// buildExtractor returns nil when no API key is configured; every
// conversation then runs rules-only.
func buildExtractor(cfg *config.Config, logger *zap.Logger) dialogue.FieldExtractor {
	ex, err := llm.New(llm.Config{
		APIKey:    cfg.LLM.APIKey.Value(),
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout.Duration(),
		RateLimit: float64(cfg.LLM.RequestsPerMinute) / 60.0,
		Burst:     cfg.LLM.Burst,
	}, logger)
	if err != nil {
		if err == llm.ErrNoAPIKey {
			logger.Info("no llm api key configured, running rules-only")
		} else {
			logger.Warn("llm extractor unavailable, running rules-only", zap.Error(err))
		}
		return nil
	}
	return ex
}
