// Package api exposes the predictor over HTTP with chi.
package api

import (
	"errors"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/serving"
)

// RouterConfig tunes the HTTP layer
type RouterConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter wires middleware and routes around a loaded predictor
func NewRouter(predictor *serving.Predictor, metrics *Metrics, logger *zap.Logger, cfg RouterConfig) (*chi.Mux, error) {
	if predictor == nil {
		return nil, errors.New("predictor cannot be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("api")
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger, metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	controller := NewController(predictor, serving.NewTranslator(), metrics, logger)

	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/", controller.Root)
		r.Get("/health", controller.Health)
		r.Get("/ready", controller.Ready)
		r.Get("/info", controller.Info)

		r.Post("/predict", controller.Predict)
		r.Post("/predict/display", controller.PredictDisplay)
	})

	return r, nil
}
