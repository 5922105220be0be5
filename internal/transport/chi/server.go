// Package chi is the viewer's HTTP transport: server-rendered pages with
// HTMX vote controls, a small JSON API, health and metrics endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/vote"
	logpkg "github.com/kailas-cloud/newsline/internal/logger"
	"github.com/kailas-cloud/newsline/internal/metrics"
	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/newsline/internal/usecase/health"
	searchuc "github.com/kailas-cloud/newsline/internal/usecase/search"
	"github.com/kailas-cloud/newsline/internal/version"
)

// maxFeedbackBody bounds feedback form and JSON bodies.
const maxFeedbackBody = 8 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ViewerOptions holds presentation settings.
type ViewerOptions struct {
	Title          string
	SearchBarWidth int
}

// Server serves the timeline viewer.
type Server struct {
	search        *searchuc.Service
	feedback      *feedbackuc.Service
	health        *healthuc.Service
	viewer        ViewerOptions
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the viewer HTTP server.
func NewServer(
	search *searchuc.Service,
	feedback *feedbackuc.Service,
	health *healthuc.Service,
	viewer ViewerOptions,
	logger *zap.Logger,
) *Server {
	if viewer.Title == "" {
		viewer.Title = "NewsLine"
	}
	if viewer.SearchBarWidth <= 0 {
		viewer.SearchBarWidth = 860
	}
	s := &Server{
		search:   search,
		feedback: feedback,
		health:   health,
		viewer:   viewer,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidVote, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidAction, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrMissingIdentifier, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrSearchFailed, http.StatusBadGateway, CodeSearchFailed),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable),
	}
	return s
}

// Router builds the chi router with the middleware chain.
// limiter guards the feedback endpoints; nil disables limiting.
func (s *Server) Router(limiter *RateLimiter) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/", s.Landing)
	r.Get("/search", s.SearchPage)
	r.With(limiter.Middleware).Post("/feedback", s.FeedbackForm)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Get("/search", s.SearchAPI)
		r.With(limiter.Middleware).Post("/feedback", s.FeedbackAPI)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/version", s.Version)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	})
	return r
}

// Landing handles GET /.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, landingView(s.viewer.Title, "", s.viewer.SearchBarWidth))
}

// SearchPage handles GET /search?q=...&n=...
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	q, n, err := bindSearchParams(r.URL.Query())
	if err != nil {
		s.renderPage(w, r, http.StatusBadRequest,
			resultsView(q, s.viewer.SearchBarWidth, nil, pageState{}, "Invalid search parameters."))
		return
	}
	if q == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	items, err := s.search.Search(r.Context(), q, n)
	if err != nil {
		status, msg := pageError(err)
		logpkg.FromContextOr(r.Context(), s.logger).Warn("Search failed", zap.String("query", q), zap.Error(err))
		s.renderPage(w, r, status, resultsView(q, s.viewer.SearchBarWidth, nil, pageState{}, msg))
		return
	}

	page := parsePageState(r.URL.Query())
	page.n = n
	s.renderPage(w, r, http.StatusOK, resultsView(q, s.viewer.SearchBarWidth, items, page, ""))
}

// FeedbackForm handles POST /feedback from the vote controls.
// HTMX requests get the re-rendered controls. Plain form posts are redirected
// back to the results page, with the new vote added to the page state.
func (s *Server) FeedbackForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFeedbackBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := feedbackRequest{
		DocID:  r.PostForm.Get("doc_id"),
		Query:  r.PostForm.Get("q"),
		Vote:   r.PostForm.Get("vote"),
		Action: r.PostForm.Get("action"),
	}
	v, err := s.applyFeedback(r, req)
	if err != nil {
		http.Error(w, safeDomainMessage(err), http.StatusBadRequest)
		return
	}

	pageField := r.PostForm.Get("page")
	if !isHTMX(r) {
		params, _ := url.ParseQuery(pageField)
		page := parsePageState(params).with(req.DocID, v)
		http.Redirect(w, r, page.searchURL(req.Query), http.StatusSeeOther)
		return
	}
	s.renderFragment(w, r, voteControlsView(req.DocID, req.Query, v, pageField))
}

// FeedbackAPI handles POST /api/v1/feedback.
func (s *Server) FeedbackAPI(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	v, err := s.applyFeedback(r, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{DocID: req.DocID, Query: req.Query, Vote: v.String()})
}

func (s *Server) applyFeedback(r *http.Request, req feedbackRequest) (vote.Vote, error) {
	current, err := vote.Parse(req.Vote)
	if err != nil {
		return "", err
	}
	action, err := vote.ParseAction(req.Action)
	if err != nil {
		return "", err
	}
	return s.feedback.SetRelevance(r.Context(), req.DocID, req.Query, current, action)
}

// SearchAPI handles GET /api/v1/search?q=...&n=...
func (s *Server) SearchAPI(w http.ResponseWriter, r *http.Request) {
	q, n, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	items, err := s.search.Search(r.Context(), q, n)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSearchResponse(q, items))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Get())
}

// bindSearchParams reads q and the optional n from the query string.
func bindSearchParams(params url.Values) (string, int, error) {
	var (
		q string
		n int
	)
	if err := runtime.BindQueryParameter("form", true, false, "q", params, &q); err != nil {
		return "", 0, err
	}
	if params.Get("n") != "" {
		if err := runtime.BindQueryParameter("form", true, false, "n", params, &n); err != nil {
			return strings.TrimSpace(q), 0, err
		}
	}
	return strings.TrimSpace(q), n, nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageView(s.viewer.Title, body).Render(r.Context(), w); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Error("Failed to render page", zap.Error(err))
	}
}

func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Error("Failed to render fragment", zap.Error(err))
	}
}

// pageError maps a search error to an HTTP status and a user-facing message.
func pageError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest, "Please enter a search query."
	case errors.Is(err, domain.ErrSearchFailed):
		return http.StatusBadGateway, "Search failed. Please try again."
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "The news service is unavailable right now."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrInvalidVote,
		domain.ErrInvalidAction,
		domain.ErrMissingIdentifier,
		domain.ErrSearchFailed,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
