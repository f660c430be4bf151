package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"titanic/db"
	"titanic/ml"
	"titanic/monitoring"
	"titanic/predict"
)

type Predictor interface {
	Predict(ctx context.Context, raw ml.RawPassengerInput) (*predict.Result, error)
	Encode(raw ml.RawPassengerInput) (ml.FeatureVector, error)
	Model() (ml.ModelInfo, error)
}

type History interface {
	RecentPredictions(ctx context.Context, limit int) ([]db.Record, error)
	Summary(ctx context.Context) (db.Summary, error)
}

// Handlers holds the collaborators of the API. History, Metrics and Feed are
// optional; their routes answer 404 when unset.
type Handlers struct {
	Predictor Predictor
	History   History
	Metrics   *monitoring.MetricsCollector
	Feed      *monitoring.WebSocketHub
	Logger    *zap.Logger
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("POST /api/encode", h.handleEncode)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/predictions/summary", h.handleSummary)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /api/ws/predictions", h.handleFeed)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type encodeResponse struct {
	Features ml.FeatureVector `json:"features"`
	Columns  []ml.Column      `json:"columns"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Predictor.Model(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodePassenger(w, r)
	if !ok {
		return
	}
	result, err := h.Predictor.Predict(r.Context(), raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleEncode(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodePassenger(w, r)
	if !ok {
		return
	}
	vector, err := h.Predictor.Encode(raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, encodeResponse{Features: vector, Columns: vector.Columns()})
}

func (h *Handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.Predictor.Model()
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusNotFound, "prediction history disabled")
		return
	}
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = l
	}
	records, err := h.History.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"data":  records,
	})
}

func (h *Handlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusNotFound, "prediction history disabled")
		return
	}
	summary, err := h.History.Summary(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Metrics == nil {
		writeError(w, http.StatusNotFound, "metrics disabled")
		return
	}
	if r.URL.Query().Get("format") == "prometheus" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte(h.Metrics.ExportPrometheus()))
		return
	}
	respondJSON(w, http.StatusOK, h.Metrics.Snapshot())
}

func (h *Handlers) handleFeed(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		writeError(w, http.StatusNotFound, "prediction feed disabled")
		return
	}
	h.Feed.HandleWebSocket(w, r)
}

func decodePassenger(w http.ResponseWriter, r *http.Request) (ml.RawPassengerInput, bool) {
	var raw ml.RawPassengerInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return raw, false
	}
	return raw, true
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ml.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, ml.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ml.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("request failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
