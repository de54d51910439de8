package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/estimatorlab/scopegen/internal/core/domain"
	"github.com/estimatorlab/scopegen/internal/core/ports"
	"github.com/estimatorlab/scopegen/internal/export"
	"github.com/estimatorlab/scopegen/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	estimator  ports.ScopeEstimator
	browser    ports.ScopeBrowser
	demo       ports.DemoParser
	metrics    *metrics.HTTPServerMetrics
	logger     *slog.Logger
	authSecret string
}

func NewRouter(
	estimator ports.ScopeEstimator,
	browser ports.ScopeBrowser,
	demo ports.DemoParser,
	serverMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	authSecret string,
) *Router {
	return &Router{
		estimator:  estimator,
		browser:    browser,
		demo:       demo,
		metrics:    serverMetrics,
		logger:     logger,
		authSecret: authSecret,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/demo/parse", rt.demoParse)
	mux.Handle("/v1/scopes", authMiddleware(rt.authSecret, http.HandlerFunc(rt.scopesCollection)))
	mux.Handle("/v1/scopes/", authMiddleware(rt.authSecret, http.HandlerFunc(rt.scopeByID)))

	handler := rt.metrics.Middleware(serviceName, mux)
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) scopesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.generateScope(w, r)
	case http.MethodGet:
		rt.listScopes(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) generateScope(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawInput string `json:"raw_input"`
		Address  string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	count, err := rt.estimator.Generate(r.Context(), ownerIDFromContext(r.Context()), req.RawInput, req.Address)
	if err == nil {
		rt.metrics.RecordGeneration(serviceName, string(domain.StatusCompleted), count, time.Since(start))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if isTerminalGenerationFailure(err) {
		// The scope row already records FAILED; the caller observes the
		// outcome by re-reading, same as on success.
		rt.metrics.RecordGeneration(serviceName, string(domain.StatusFailed), 0, time.Since(start))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
}

func isTerminalGenerationFailure(err error) bool {
	return domain.IsKind(err, domain.ErrGenerationFailed) || domain.IsKind(err, domain.ErrNormalizationFailed)
}

func (rt *Router) listScopes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	var since time.Time
	if rawSince := r.URL.Query().Get("since"); rawSince != "" {
		parsed, err := time.Parse(time.RFC3339, rawSince)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
			return
		}
		since = parsed
	}

	scopes, err := rt.browser.List(r.Context(), ownerIDFromContext(r.Context()), limit, since)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scopes": scopes})
}

func (rt *Router) scopeByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/scopes/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scope id is required"})
		return
	}

	if id, ok := strings.CutSuffix(rest, "/export"); ok {
		rt.exportScope(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getScope(w, r, rest)
	case http.MethodDelete:
		rt.deleteScope(w, r, rest)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getScope(w http.ResponseWriter, r *http.Request, id string) {
	scope, err := rt.browser.Get(r.Context(), ownerIDFromContext(r.Context()), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, scope)
}

func (rt *Router) deleteScope(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.estimator.Delete(r.Context(), ownerIDFromContext(r.Context()), id); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportScope(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	scope, err := rt.browser.Get(r.Context(), ownerIDFromContext(r.Context()), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "tsv":
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		_, _ = w.Write([]byte(export.LineItemsTSV(scope.LineItems)))
	case "xlsx":
		workbook, err := export.LineItemsXLSX(scope.LineItems)
		if err != nil {
			rt.logger.Error("xlsx_export_failed", "scope_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="scope-`+id+`.xlsx"`)
		_, _ = w.Write(workbook)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be tsv or xlsx"})
	}
}

func (rt *Router) demoParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	items, err := rt.demo.Parse(r.Context(), req.Text, r.UserAgent())
	if err != nil {
		rt.metrics.RecordDemoRequest(serviceName, "error")
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": publicErrorMessage(err)})
		return
	}

	rt.metrics.RecordDemoRequest(serviceName, "ok")
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// publicErrorMessage keeps upstream details out of responses; causes go to
// the logs only.
func publicErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid input"
	case domain.IsKind(err, domain.ErrUnauthorized):
		return "unauthorized"
	case domain.IsKind(err, domain.ErrNotOwner):
		return "forbidden"
	case domain.IsKind(err, domain.ErrScopeNotFound):
		return "scope not found"
	case isTerminalGenerationFailure(err):
		return "generation failed"
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
