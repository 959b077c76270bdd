// Package api exposes the local HTTP surface used by the stats and settings
// windows: session commands, history, settings and a tick event stream.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/events"
	"github.com/Veraticus/stretchia/pkg/session"
	"github.com/Veraticus/stretchia/pkg/store"
	"github.com/Veraticus/stretchia/pkg/timer"
	"github.com/Veraticus/stretchia/pkg/types"
)

// Handler coordinates HTTP requests with the session service.
type Handler struct {
	service *session.Service
	hub     *events.Hub
	logger  logrus.FieldLogger
}

// NewHandler builds a Handler. hub may be nil, in which case /api/events
// is unavailable.
func NewHandler(service *session.Service, hub *events.Hub, logger logrus.FieldLogger) *Handler {
	return &Handler{service: service, hub: hub, logger: logger}
}

// Routes returns a mux with every endpoint registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", h.state)
	mux.HandleFunc("/api/events", h.events)
	mux.HandleFunc("/api/stretch", h.stretch)
	mux.HandleFunc("/api/treadmill/start", h.treadmillStart)
	mux.HandleFunc("/api/treadmill/stop", h.treadmillStop)
	mux.HandleFunc("/api/history/today", h.historyToday)
	mux.HandleFunc("/api/stats", h.stats)
	mux.HandleFunc("/api/workouts/", h.workoutByID)
	mux.HandleFunc("/api/settings", h.settings)
	mux.HandleFunc("/api/settings/apply", h.applySettings)
	mux.HandleFunc("/healthz", healthz)
	mux.Handle("/metrics", promhttp.Handler())
}

// healthz reports a simple OK status.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Current())
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "event stream disabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported")
		return
	}

	ch, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if latest, ok := h.hub.Latest(); ok {
		if err := writeEvent(w, latest); err != nil {
			return
		}
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case p, open := <-ch:
			if !open {
				return
			}
			if err := writeEvent(w, p); err != nil {
				h.logger.WithError(err).Debug("event stream closed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, p types.TickPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: timer-tick\ndata: %s\n\n", data)
	return err
}

func (h *Handler) stretch(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	done, err := h.service.RecordStretch(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (h *Handler) treadmillStart(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := h.service.StartTreadmill(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Current())
}

func (h *Handler) treadmillStop(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	done, err := h.service.StopTreadmill(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (h *Handler) historyToday(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	workouts, err := h.service.TodayHistory(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if workouts == nil {
		workouts = []types.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	stats, err := h.service.DayStats(r.Context(), day)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/workouts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}
	if !allow(w, r, http.MethodDelete) {
		return
	}
	if err := h.service.DeleteWorkout(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.service.Settings(r.Context())
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req settingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		if err := h.service.UpdateSetting(r.Context(), req.Key, req.Value); err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.Setting{Key: req.Key, Value: req.Value})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// ThresholdsView is the JSON form of the applied thresholds.
type ThresholdsView struct {
	AFKThresholdS uint64 `json:"afk_threshold_s"`
	WarnAtMin     uint64 `json:"warn_at_min"`
	ShakeAtMin    uint64 `json:"shake_at_min"`
}

func (h *Handler) applySettings(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	t := h.service.ApplySettings(r.Context())
	writeJSON(w, http.StatusOK, ThresholdsView{
		AFKThresholdS: t.AFKThresholdS,
		WarnAtMin:     t.WarnAtMin,
		ShakeAtMin:    t.ShakeAtMin,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, timer.ErrSecondaryActive):
		writeError(w, http.StatusConflict, "treadmill_active", err.Error())
	case errors.Is(err, timer.ErrNotSecondary):
		writeError(w, http.StatusConflict, "treadmill_inactive", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, session.ErrInvalidSetting):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, timer.ErrStateUnavailable):
		writeError(w, http.StatusServiceUnavailable, "state_unavailable", err.Error())
	default:
		h.logger.WithError(err).Warn("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
