package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/core"
)

// Version info is injected from main via SetVersionInfo.
var (
	appVersion   = "dev"
	appCommit    = "unknown"
	appBuildDate = "unknown"
)

// SetVersionInfo sets the build metadata reported by /version.
func SetVersionInfo(version, commit, buildDate string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
}

type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type versionResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "healthy"
	code := http.StatusOK

	if s.store != nil && s.store.DB != nil {
		if err := s.store.DB.PingContext(r.Context()); err != nil {
			checks["store"] = "unhealthy: " + err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			checks["store"] = "healthy"
		}
	}

	writeJSON(w, code, healthResponse{
		Status:    status,
		Version:   appVersion,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Name:      "snackdeals",
		Version:   appVersion,
		Commit:    appCommit,
		BuildDate: appBuildDate,
		GoVersion: runtime.Version(),
	})
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	deals, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, "list deals", err)
		return
	}
	if deals == nil {
		deals = []core.Deal{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deals": deals,
		"count": len(deals),
	})
}

func (s *Server) handleBestDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := s.store.BestUnposted(r.Context())
	if err != nil {
		s.serverError(w, r, "query best deal", err)
		return
	}
	if deal == nil {
		writeError(w, r, http.StatusNotFound, "no_deals", "no unposted deals available")
		return
	}

	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handlePostedDeals(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "invalid_days", "days must be a positive integer")
			return
		}
		days = parsed
	}

	asins, err := s.store.PostedSince(r.Context(), days)
	if err != nil {
		s.serverError(w, r, "query posted deals", err)
		return
	}
	if asins == nil {
		asins = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":  days,
		"asins": asins,
		"count": len(asins),
	})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if s.logger != nil {
		s.logger.Error("Request failed",
			zap.String("action", action),
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
	}
	writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(r.Context()),
	}})
}
