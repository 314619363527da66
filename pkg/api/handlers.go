package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/David-Botos/import-cif/pkg/features"
	"github.com/David-Botos/import-cif/pkg/serving"
)

const (
	serviceName    = "import-cif"
	serviceVersion = "1.0.0"

	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// ErrorResponse carries the reason a request was rejected
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RootResponse describes the service
type RootResponse struct {
	Service      string   `json:"service"`
	Version      string   `json:"version"`
	ModelVersion string   `json:"model_version"`
	Endpoints    []string `json:"endpoints"`
}

// HealthResponse is returned by /health and /ready
type HealthResponse struct {
	Status       string    `json:"status"`
	ModelLoaded  bool      `json:"model_loaded"`
	ModelVersion string    `json:"model_version"`
	Timestamp    time.Time `json:"timestamp"`
}

// InfoResponse adds the dashboard vocabulary to the model description
type InfoResponse struct {
	serving.Info
	Display DisplayVocabulary `json:"display"`
}

// DisplayVocabulary lists what /predict/display accepts
type DisplayVocabulary struct {
	Countries   []string `json:"countries"`
	ImportKinds []string `json:"import_kinds"`
}

// Controller serves the prediction endpoints
type Controller struct {
	predictor  *serving.Predictor
	translator *serving.Translator
	metrics    *Metrics
	logger     *zap.Logger
}

// NewController creates a controller over a loaded predictor
func NewController(predictor *serving.Predictor, translator *serving.Translator, metrics *Metrics, logger *zap.Logger) *Controller {
	return &Controller{
		predictor:  predictor,
		translator: translator,
		metrics:    metrics,
		logger:     logger,
	}
}

// Root lists the endpoints
func (c *Controller) Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, RootResponse{
		Service:      serviceName,
		Version:      serviceVersion,
		ModelVersion: c.predictor.ModelVersion(),
		Endpoints: []string{
			"GET /health",
			"GET /ready",
			"GET /info",
			"GET /metrics",
			"POST /predict",
			"POST /predict/display",
		},
	})
}

// Health reports liveness. The server never starts without a model, so a
// running process always has one loaded.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:       "healthy",
		ModelLoaded:  true,
		ModelVersion: c.predictor.ModelVersion(),
		Timestamp:    time.Now().UTC(),
	})
}

// Ready reports readiness
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:       "ready",
		ModelLoaded:  true,
		ModelVersion: c.predictor.ModelVersion(),
		Timestamp:    time.Now().UTC(),
	})
}

// Info returns vocabularies and stored metrics
func (c *Controller) Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, InfoResponse{
		Info: c.predictor.Info(),
		Display: DisplayVocabulary{
			Countries:   c.translator.Countries(),
			ImportKinds: c.translator.ImportKinds(),
		},
	})
}

// Predict scores a request expressed in the training vocabulary. month must
// be a JSON integer; 5.0 is rejected as a malformed body like any other
// non-integer.
func (c *Controller) Predict(w http.ResponseWriter, r *http.Request) {
	const endpoint = "predict"
	start := time.Now()

	var req serving.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		c.fail(w, r, endpoint, start, &decodeError{err: err})
		return
	}

	pred, err := c.predictor.Predict(req)
	if err != nil {
		c.fail(w, r, endpoint, start, err)
		return
	}

	c.metrics.observePrediction(endpoint, outcomeOK, time.Since(start).Seconds(), pred.Prediction)
	render.JSON(w, r, pred)
}

// PredictDisplay scores a request expressed in the dashboard vocabulary
func (c *Controller) PredictDisplay(w http.ResponseWriter, r *http.Request) {
	const endpoint = "predict_display"
	start := time.Now()

	var req serving.DisplayRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		c.fail(w, r, endpoint, start, &decodeError{err: err})
		return
	}

	translated, err := c.translator.Translate(req)
	if err != nil {
		c.fail(w, r, endpoint, start, err)
		return
	}

	pred, err := c.predictor.Predict(translated)
	if err != nil {
		c.fail(w, r, endpoint, start, err)
		return
	}

	c.metrics.observePrediction(endpoint, outcomeOK, time.Since(start).Seconds(), pred.Prediction)
	render.JSON(w, r, serving.DisplayPrediction{
		Prediction: pred,
		Country:    req.Country,
		Formatted:  c.translator.Format(pred.Prediction),
	})
}

// decodeError marks a malformed request body
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "malformed request body: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// fail maps validation and decode errors to 400 and everything else to 500
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, err error) {
	var de *decodeError
	switch {
	case errors.As(err, &de) || errors.Is(err, features.ErrValidation):
		c.metrics.observePrediction(endpoint, outcomeInvalid, time.Since(start).Seconds(), 0)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Detail: err.Error()})
	default:
		c.metrics.observePrediction(endpoint, outcomeError, time.Since(start).Seconds(), 0)
		c.logger.Error("Prediction failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Detail: "internal error"})
	}
}
