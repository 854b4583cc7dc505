package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"k2age/core/binary"
	"k2age/core/estimate"
	"k2age/core/grid"
	"k2age/core/star"
	"k2age/core/track"
	"k2age/model"
	"k2age/repository"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TrackInterpolator synthesizes a single-star track.
type TrackInterpolator interface {
	Interpolate(ctx context.Context, mass, metallicity float64) ([]float64, error)
}

// APIHandler serves the estimate API.
type APIHandler struct {
	est    *estimate.Estimator
	interp TrackInterpolator
	runs   repository.RunRepository
	logger *zap.Logger
}

// NewAPIHandler creates the handler. runs may be nil when no result store
// is configured; the /api/runs endpoints then answer 503.
func NewAPIHandler(est *estimate.Estimator, interp TrackInterpolator, runs repository.RunRepository, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{est: est, interp: interp, runs: runs, logger: logger}
}

type gridResponse struct {
	Masses        []float64 `json:"masses"`
	Metallicities []float64 `json:"metallicities"`
	LogAges       []float64 `json:"logAges"`
}

type trackResponse struct {
	Mass        float64   `json:"mass"`
	Metallicity float64   `json:"metallicity"`
	Ages        []float64 `json:"ages"`
	K2          []float64 `json:"k2"`
}

type binaryResponse struct {
	ID     string           `json:"id,omitempty"`
	Result *estimate.Result `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GridHandler describes the model grid.
func (h *APIHandler) GridHandler(w http.ResponseWriter, r *http.Request) {
	c := h.est.Catalog()
	writeJSON(w, http.StatusOK, gridResponse{
		Masses:        c.MassAxis().Values(),
		Metallicities: c.MetallicityAxis().Values(),
		LogAges:       c.LogAges(),
	})
}

// TrackHandler synthesizes the track at ?mass=&feh=.
func (h *APIHandler) TrackHandler(w http.ResponseWriter, r *http.Request) {
	mass, err := queryFloat(r, "mass")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	feh, err := queryFloat(r, "feh")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	k2, err := h.interp.Interpolate(r.Context(), mass, feh)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{
		Mass:        mass,
		Metallicity: feh,
		Ages:        h.est.Catalog().Ages(),
		K2:          k2,
	})
}

// BinaryHandler runs an estimate and stores it when a result store exists.
func (h *APIHandler) BinaryHandler(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.est.Run(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := binaryResponse{Result: res}
	if h.runs != nil {
		run := model.NewBinaryRun(req, res)
		if err := h.runs.Create(r.Context(), run); err != nil {
			// The estimate itself succeeded.
			h.logger.Error("store run", zap.Error(err))
		} else {
			resp.ID = run.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRunsHandler lists stored runs, newest first.
func (h *APIHandler) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireRuns(w) {
		return
	}
	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("offset must be a non-negative integer"))
			return
		}
		offset = n
	}

	runs, err := h.runs.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRunHandler returns one stored run with its track.
func (h *APIHandler) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireRuns(w) {
		return
	}
	run, err := h.runs.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, errors.New("run not found"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DeleteRunHandler removes a stored run.
func (h *APIHandler) DeleteRunHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireRuns(w) {
		return
	}
	if err := h.runs.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) requireRuns(w http.ResponseWriter) bool {
	if h.runs == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("result store not configured"))
		return false
	}
	return true
}

// fail maps domain errors onto HTTP status codes.
func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, err)
}

// StatusFor returns the HTTP status for an estimate error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, star.ErrMissingField),
		errors.Is(err, star.ErrInvalidField),
		errors.Is(err, binary.ErrInconsistentMetallicity):
		return http.StatusBadRequest
	case errors.Is(err, grid.ErrOutOfGridRange),
		errors.Is(err, grid.ErrUnknownGridPoint),
		errors.Is(err, track.ErrExtrapolation),
		errors.Is(err, binary.ErrNonMonotonicTrack),
		errors.Is(err, binary.ErrMismatchedTrackLength):
		return http.StatusUnprocessableEntity
	case errors.Is(err, track.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func queryFloat(r *http.Request, key string) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, &star.MissingFieldError{Object: "query", Field: key}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: query %s %q is not a number", star.ErrInvalidField, key, v)
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *APIHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
