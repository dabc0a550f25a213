package bootstrap

import (
	"github.com/gin-gonic/gin"

	"nyaya-backend/internal/bench"
	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/llm/ollama"
	"nyaya-backend/internal/reviews"
	"nyaya-backend/internal/services/health"
	"nyaya-backend/internal/shared/config"
	"nyaya-backend/internal/shared/server"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	ModelClient   llm.Client
	Bench         *bench.Orchestrator
	HealthService *health.Service
	ReviewHandler *reviews.Handler
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	client llm.Client
	pinger health.Pinger
}

// WithModelClient replaces the Ollama client and the health probe.
func WithModelClient(client llm.Client, pinger health.Pinger) Option {
	return func(o *options) {
		o.client = client
		o.pinger = pinger
	}
}

// Build wires the model client, the bench and the HTTP router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.client == nil {
		ollamaClient, err := ollama.NewClient(cfg.OllamaURL, cfg.ModelName, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		o.client = ollamaClient
		o.pinger = ollamaClient
	}

	client := llm.Observed(o.client, cfg.ModelName)
	orchestrator := bench.New(client,
		bench.WithPacing(cfg.StreamPacing),
		bench.WithThoughts(cfg.StreamThoughts),
	)
	healthSvc := health.NewService(o.pinger)
	reviewHandler := reviews.NewHandler(orchestrator, cfg.CORSAllowOrigin)

	app := &App{
		Config:        cfg,
		ModelClient:   client,
		Bench:         orchestrator,
		HealthService: healthSvc,
		ReviewHandler: reviewHandler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Reviews: reviewHandler,
		Health:  healthSvc,
	})
	return app, nil
}
