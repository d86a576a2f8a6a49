package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appai "github.com/bryanwahyu/leakbridge/internal/application/ai"
	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
	domai "github.com/bryanwahyu/leakbridge/internal/domain/ai"
	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
	"github.com/bryanwahyu/leakbridge/internal/middleware"
)

// Deps is everything the HTTP surface needs. Advisor may be nil.
type Deps struct {
	Scans          *appscans.Service
	Advisor        *appai.Service
	Results        appscans.ResultStore
	Metrics        *middleware.Metrics
	Log            zerolog.Logger
	APIKeys        []string
	AllowedOrigins []string
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit int
	Checks    map[string]middleware.HealthChecker
}

type Router struct {
	http.Handler
	scansSvc *appscans.Service
	aiSvc    *appai.Service
	results  appscans.ResultStore
	metrics  *middleware.Metrics
	limiter  *middleware.RateLimiter
	log      zerolog.Logger

	// anonymous is set when no API keys are configured
	anonymous bool
}

func NewRouter(d Deps) *Router {
	r := &Router{
		scansSvc: d.Scans,
		aiSvc:    d.Advisor,
		results:  d.Results,
		metrics:  d.Metrics,
		log:      d.Log.With().Str("component", "router").Logger(),

		anonymous: len(d.APIKeys) == 0,
	}
	if r.metrics == nil {
		r.metrics = middleware.NewMetrics()
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	if len(d.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}
	mux.Use(middleware.Logging(d.Log))
	mux.Use(r.metrics.Middleware)
	mux.Use(middleware.APIKeyAuth(d.APIKeys))
	if d.RateLimit > 0 {
		r.limiter = middleware.NewRateLimiter(d.RateLimit*2, d.RateLimit)
		mux.Use(r.limiter.Middleware)
	}

	mux.Get("/health", middleware.HealthHandler(d.Checks))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", r.metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/scan/text", r.wrap(r.handleScanText))
		rt.Post("/scan/path", r.wrap(r.handleScanPath))
		rt.Post("/contains", r.wrap(r.handleContains))
		rt.Post("/redact", r.wrap(r.handleRedact))
		rt.Get("/results/last", r.wrap(r.handleLastResult))
		rt.Get("/results/{id}", r.wrap(r.handleResult))
		rt.Get("/version", r.wrap(r.handleVersion))
		rt.Post("/baseline", r.wrap(r.handleBaseline))
		rt.Get("/history", r.wrap(r.handleHistoryPage))
		rt.Get("/history/latest", r.wrap(r.handleHistoryLatest))
		rt.Get("/history/{id}", r.wrap(r.handleHistoryGet))
		rt.Post("/ai/advise", r.wrap(r.handleAdvise))
		rt.Get("/ai/advise/{id}", r.wrap(r.handleAdviceLatest))
	})

	r.Handler = mux
	return r
}

// Close stops background work started by the router.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Stop()
	}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks input errors.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

// forbidden marks requests that need an API key to be configured.
type forbidden struct{ what string }

func (e forbidden) Error() string {
	return e.what + " requires API key authentication"
}

// privileged refuses what would expose secrets or write files to
// anonymous callers.
func (r *Router) privileged(what string) error {
	if r.anonymous {
		return forbidden{what: what}
	}
	return nil
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var bad badRequest
		var denied forbidden
		switch {
		case errors.As(err, &bad), errors.Is(err, appscans.ErrNoBaselinePath):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &denied):
			http.Error(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, domain.ErrTargetNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, appscans.ErrNoResult), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrExecutableNotFound):
			http.Error(w, "gitleaks executable not available", http.StatusServiceUnavailable)
		case errors.Is(err, appscans.ErrHistoryDisabled):
			http.Error(w, err.Error(), http.StatusNotImplemented)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		default:
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, 2*middleware.MaxContentBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	return nil
}

// observe keeps the result for later lookup and counts it.
func (r *Router) observe(req *http.Request, done func(int, bool, error), res *appscans.Result, err error) {
	if err != nil {
		done(0, false, err)
		return
	}
	done(len(res.Findings), res.TimedOut, nil)
	if r.results != nil {
		if perr := r.results.Put(req.Context(), res); perr != nil {
			r.log.Warn().Err(perr).Str("scan_id", res.ID).Msg("caching result failed")
		}
	}
}

// response hides secrets unless the caller asks for them.
func response(res *appscans.Result, reveal bool) *appscans.Result {
	if reveal {
		out := *res
		out.Output = ""
		return &out
	}
	return res.Masked()
}

type textRequest struct {
	Content string `json:"content"`
	Name    string `json:"name"`
	Reveal  bool   `json:"reveal"`
}

func (r *Router) validateText(t *textRequest) error {
	if err := middleware.ValidateContent(t.Content); err != nil {
		return invalid("%v", err)
	}
	if t.Reveal {
		if err := r.privileged("reveal"); err != nil {
			return err
		}
	}
	t.Name = middleware.SanitizeLabel(t.Name)
	return nil
}

// POST /v1/scan/text
// Body: {"content": "...", "name": "config.env", "reveal": false}
func (r *Router) handleScanText(w http.ResponseWriter, req *http.Request) error {
	var body textRequest
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validateText(&body); err != nil {
		return err
	}

	done := r.metrics.ScanStarted()
	res, err := r.scansSvc.ScanBuffer(req.Context(), body.Name, strings.NewReader(body.Content))
	r.observe(req, done, res, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, response(res, body.Reveal))
}

// POST /v1/scan/path
// Body: {"path": "/srv/repo", "kind": "file|dir|git", "reveal": false}
func (r *Router) handleScanPath(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Path   string `json:"path"`
		Kind   string `json:"kind"`
		Reveal bool   `json:"reveal"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	kind, err := middleware.ValidateKind(body.Kind)
	if err != nil {
		return invalid("%v", err)
	}
	if err := middleware.ValidatePath(body.Path); err != nil {
		return invalid("%v", err)
	}
	if body.Path == "" && kind != string(domain.KindGit) {
		return invalid("path is required")
	}
	if body.Reveal {
		if err := r.privileged("reveal"); err != nil {
			return err
		}
	}

	done := r.metrics.ScanStarted()
	var res *appscans.Result
	switch kind {
	case "file":
		res, err = r.scansSvc.ScanFile(req.Context(), body.Path)
	case string(domain.KindGit):
		res, err = r.scansSvc.ScanGitRepository(req.Context(), body.Path)
	default:
		res, err = r.scansSvc.ScanDirectory(req.Context(), body.Path)
	}
	r.observe(req, done, res, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, response(res, body.Reveal))
}

// POST /v1/contains
func (r *Router) handleContains(w http.ResponseWriter, req *http.Request) error {
	var body textRequest
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validateText(&body); err != nil {
		return err
	}

	done := r.metrics.ScanStarted()
	res, err := r.scansSvc.ScanBuffer(req.Context(), body.Name, strings.NewReader(body.Content))
	r.observe(req, done, res, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"scan_id":  res.ID,
		"contains": res.HasFindings(),
	})
}

// POST /v1/redact
func (r *Router) handleRedact(w http.ResponseWriter, req *http.Request) error {
	var body textRequest
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validateText(&body); err != nil {
		return err
	}

	done := r.metrics.ScanStarted()
	redacted, res, err := r.scansSvc.RedactBuffer(req.Context(), body.Name, strings.NewReader(body.Content))
	r.observe(req, done, res, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"scan_id":  res.ID,
		"redacted": redacted,
		"findings": len(res.Findings),
	})
}

// GET /v1/results/last
func (r *Router) handleLastResult(w http.ResponseWriter, req *http.Request) error {
	if r.results == nil {
		return appscans.ErrNoResult
	}
	res, err := r.results.Last(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/results/{id}
func (r *Router) handleResult(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return invalid("%v", err)
	}
	if r.results == nil {
		return appscans.ErrNoResult
	}
	res, err := r.results.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/version
func (r *Router) handleVersion(w http.ResponseWriter, req *http.Request) error {
	select {
	case v := <-r.scansSvc.Version():
		if v.Err != nil {
			return v.Err
		}
		return writeJSON(w, http.StatusOK, map[string]any{
			"version":   v.Version,
			"exit_code": v.ExitCode,
			"timed_out": v.TimedOut,
		})
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

// POST /v1/baseline
// Body: {"kind": "dir|git", "target": "/srv/repo", "out": "/srv/repo/.gitleaks-baseline.json"}
func (r *Router) handleBaseline(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Kind   string `json:"kind"`
		Target string `json:"target"`
		Out    string `json:"out"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.privileged("baseline"); err != nil {
		return err
	}
	kind, err := middleware.ValidateKind(body.Kind)
	if err != nil || kind == "file" {
		return invalid("baseline kind must be dir or git")
	}
	for _, p := range []string{body.Target, body.Out} {
		if err := middleware.ValidatePath(p); err != nil {
			return invalid("%v", err)
		}
	}
	if err := middleware.ValidateOutput(body.Out, body.Target, r.scansSvc.Settings.BaselinePath); err != nil {
		return invalid("%v", err)
	}

	done := r.metrics.ScanStarted()
	res, err := r.scansSvc.GenerateBaseline(req.Context(), domain.Kind(kind), body.Target, body.Out)
	r.observe(req, done, res, err)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]any{
		"scan_id":  res.ID,
		"path":     res.ReportPath,
		"findings": len(res.Findings),
	})
}

// GET /v1/history/latest?limit=20
func (r *Router) handleHistoryLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.scansSvc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Scan{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/history?page=1&page_size=20&kind=git&status=failed&target=repo
// GET /v1/history?before=<RFC3339>&before_id=<id>&page_size=20
func (r *Router) handleHistoryPage(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	if before := q.Get("before"); before != "" {
		at, err := time.Parse(time.RFC3339Nano, before)
		if err != nil {
			return invalid("before must be an RFC3339 timestamp")
		}
		list, err := r.scansSvc.Before(req.Context(), at, q.Get("before_id"), middleware.ValidateLimit(size))
		if err != nil {
			return err
		}
		if list == nil {
			list = []*domain.Scan{}
		}
		return writeJSON(w, http.StatusOK, list)
	}

	filters := map[string]any{}
	for _, key := range []string{"kind", "status", "target"} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			filters[key] = v
		}
	}
	res, err := r.scansSvc.Page(req.Context(), page, middleware.ValidateLimit(size), filters)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/history/{id}
func (r *Router) handleHistoryGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return invalid("%v", err)
	}
	scan, err := r.scansSvc.Get(req.Context(), domain.ScanID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, scan)
}

// POST /v1/ai/advise
// Body: {"scan_id": "<id>"}
// Advice is built from the cached result; only rule ids, descriptions,
// files and lines are sent to the model.
func (r *Router) handleAdvise(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ScanID string `json:"scan_id"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateScanID(body.ScanID); err != nil {
		return invalid("%v", err)
	}
	if r.aiSvc == nil || r.results == nil {
		return appscans.ErrNoResult
	}
	res, err := r.results.Get(req.Context(), body.ScanID)
	if err != nil {
		return err
	}

	a, err := r.aiSvc.Advise(req.Context(), res.ID, res.Findings)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/ai/advise/{id}
func (r *Router) handleAdviceLatest(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return invalid("%v", err)
	}
	if r.aiSvc == nil {
		return appscans.ErrNoResult
	}
	a, err := r.aiSvc.Latest(req.Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		return appscans.ErrNoResult
	}
	return writeJSON(w, http.StatusOK, a)
}
