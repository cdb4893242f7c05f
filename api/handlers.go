package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

type ctxKey int

const controlsKey ctxKey = iota

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// withControls resolves the caller's role into a control surface. A missing
// header means viewer.
func (s *Server) withControls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := model.ParseRole(r.Header.Get(RoleHeader))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		c := engine.ControlsFor(role, s.eng, s.gate)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), controlsKey, c)))
	})
}

func controls(r *http.Request) engine.Controls {
	return r.Context().Value(controlsKey).(engine.Controls)
}

// writeControlResult maps a control error to a status code.
func (s *Server) writeControlResult(w http.ResponseWriter, r *http.Request, err error, body interface{}) {
	if errors.Is(err, engine.ErrReadOnly) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		s.log.Error("control failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"tick":   s.eng.TickCount(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.State())
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	st := s.eng.State()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tick":      st.Tick,
		"timestamp": st.Timestamp,
		"reading":   st.Reading,
		"status":    st.Status,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Alerts.Items())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	m, err := model.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metric": m,
		"unit":   m.Unit(),
		"points": s.eng.History.Series(m).Points(),
	})
}

func (s *Server) handleRUL(w http.ResponseWriter, r *http.Request) {
	rul := s.eng.RUL()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rul":     rul,
		"band":    model.BandForRUL(rul).String(),
		"verdict": model.RULVerdict(rul),
	})
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	eco := s.eng.EcoMode()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"power":      s.eng.Reading().Power,
		"efficiency": s.eng.Efficiency(),
		"eco_mode":   eco,
		"suggestion": model.EcoSuggestion(eco),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Logs.Entries())
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.MaintenanceTasks())
}

func (s *Server) voiceStatus() map[string]interface{} {
	if s.gate == nil {
		return map[string]interface{}{"enabled": false}
	}
	return map[string]interface{}{
		"enabled":           true,
		"paused":            s.gate.Paused(),
		"last_announced_id": s.gate.LastAnnouncedID(),
		"announcements":     s.gate.Announcements(),
	}
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.voiceStatus())
}

func (s *Server) handleEco(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, `body must be {"enabled": true|false}`)
		return
	}
	err := controls(r).SetEcoMode(*req.Enabled)
	s.writeControlResult(w, r, err, map[string]interface{}{"eco_mode": s.eng.EcoMode()})
}

func (s *Server) handleVoicePause(w http.ResponseWriter, r *http.Request) {
	err := controls(r).PauseAnnouncements()
	s.writeControlResult(w, r, err, s.voiceStatus())
}

func (s *Server) handleVoiceResume(w http.ResponseWriter, r *http.Request) {
	err := controls(r).ResumeAnnouncements()
	s.writeControlResult(w, r, err, s.voiceStatus())
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	err := controls(r).OptimizeMaintenanceTasks()
	s.writeControlResult(w, r, err, s.eng.MaintenanceTasks())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 32)}

	// Prime the client so it does not wait a full tick for its first frame.
	// The hub owns c.send only after add succeeds, so nothing else can
	// close it yet.
	if data, err := json.Marshal(map[string]interface{}{"type": "state", "payload": s.eng.State()}); err == nil {
		c.send <- data
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.registerTimeout)
	defer cancel()
	if !s.hub.add(ctx, c) {
		s.log.Warn("websocket client rejected, hub not running")
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}
