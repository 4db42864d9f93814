package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aq-dashboard/internal/dashboard"
	"github.com/sells-group/aq-dashboard/internal/figure"
)

// eventResponse is the body of POST /api/events. A null figure leaves the
// corresponding chart as it is.
type eventResponse struct {
	Detail     *figure.PlotlyFigure `json:"detail"`
	Comparison *figure.PlotlyFigure `json:"comparison"`
	DetailID   string               `json:"detail_id"`
}

func newEventResponse(u dashboard.Update) eventResponse {
	resp := eventResponse{DetailID: u.DetailID}
	if u.Detail != nil {
		p := u.Detail.Plotly()
		resp.Detail = &p
	}
	if u.Comparison != nil {
		p := u.Comparison.Plotly()
		resp.Comparison = &p
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "dataset not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handlePollutants(w http.ResponseWriter, _ *http.Request) {
	d := s.dash.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"pollutants": d.Pollutants(),
		"default":    d.DefaultPollutant(),
	})
}

func (s *Server) handleRanges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Load().Ranges())
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) (*figure.Figure, bool) {
	d := s.dash.Load()
	pollutant := strings.TrimSpace(r.URL.Query().Get("pollutant"))
	if pollutant == "" {
		pollutant = d.DefaultPollutant()
	}
	fig, err := d.Overview(pollutant)
	if err != nil {
		if eris.Is(err, dashboard.ErrUnknownPollutant) {
			writeError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		zap.L().Error("overview failed", zap.String("pollutant", pollutant), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "overview failed")
		return nil, false
	}
	return fig, true
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	fig, ok := s.overview(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fig.Plotly())
}

func (s *Server) handleOverviewSVG(w http.ResponseWriter, r *http.Request) {
	fig, ok := s.overview(w, r)
	if !ok {
		return
	}
	writeSVG(w, fig)
}

func (s *Server) handleFigureSVG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fig, ok := s.dash.Load().Figure(id)
	if !ok {
		writeError(w, http.StatusNotFound, "figure not found or expired")
		return
	}
	writeSVG(w, fig)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		s.metrics.Events.WithLabelValues("unknown", "rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "too many events")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		s.reject(w, eris.Wrap(err, "read body"))
		return
	}
	ev, err := dashboard.ParseEvent(body)
	if err != nil {
		s.reject(w, err)
		return
	}

	u := s.dash.Load().Handle(r.Context(), ev)
	writeJSON(w, http.StatusOK, newEventResponse(u))
}

// reject answers a malformed event with 400 and a no-update body, so the
// page keeps its charts.
func (s *Server) reject(w http.ResponseWriter, err error) {
	s.metrics.Events.WithLabelValues("unknown", "rejected").Inc()
	zap.L().Info("event rejected", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, newEventResponse(dashboard.NoUpdate()))
}

func writeSVG(w http.ResponseWriter, fig *figure.Figure) {
	var buf bytes.Buffer
	if err := fig.RenderSVG(&buf); err != nil {
		zap.L().Error("render svg failed", zap.String("title", fig.Title), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client gone
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
