package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/observability"
	"github.com/aretw0/giveaibreak/pkg/ports"
	"github.com/aretw0/giveaibreak/pkg/runner"
	"github.com/aretw0/giveaibreak/pkg/service"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodySize bounds submission bodies.
const MaxBodySize = 64 << 10

// Server serves a PromptService over HTTP.
type Server struct {
	service  ports.PromptService
	logger   *slog.Logger
	metrics  *observability.Metrics
	version  string
	validate bool
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records every request and exposes /metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// WithoutValidation disables OpenAPI request validation.
func WithoutValidation() ServerOption {
	return func(s *Server) {
		s.validate = false
	}
}

// NewHandler builds the router for svc.
func NewHandler(svc ports.PromptService, opts ...ServerOption) (http.Handler, error) {
	s := &Server{
		service:  svc,
		logger:   logging.NewNop(),
		version:  "dev",
		validate: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(middleware.Heartbeat("/healthz"))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{
			"app":         "giveaibreak",
			"version":     strings.TrimSpace(s.version),
			"api_version": doc.Info.Version,
		})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	var validator func(http.Handler) http.Handler
	if s.validate {
		router, err := legacy.NewRouter(doc)
		if err != nil {
			return nil, fmt.Errorf("openapi router: %w", err)
		}
		validator = s.validateRequests(router)
	}
	r.Group(func(r chi.Router) {
		if validator != nil {
			r.Use(validator)
		}
		registerAPI(r, s, s.paramError)
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs and measures every request by its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, code, elapsed)
		}
		s.logger.Debug("request served",
			"method", r.Method,
			"route", route,
			"code", code,
			"elapsed", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) validateRequests(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				s.writeError(w, http.StatusNotFound, err.Error())
				return
			}
			in := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    &openapi3filter.Options{MultiError: false},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), in); err != nil {
				s.logger.Warn("request rejected", "route", route.Path, "err", err)
				s.writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, http.StatusBadRequest, err.Error())
}

// ListPrompts handles GET /api/prompts.
func (s *Server) ListPrompts(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.service.ListPrompts(r.Context())
	if err != nil {
		s.logger.Error("list prompts failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "could not list prompts")
		return
	}
	if slugs == nil {
		slugs = []string{}
	}
	s.writeJSON(w, http.StatusOK, slugs)
}

// GetPrompt handles GET /api/prompt/{slug}.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request, slug string) {
	p, err := s.service.GetPrompt(r.Context(), slug)
	if err != nil {
		s.fail(w, "get prompt", slug, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// SubmitResponse handles POST /api/submit/{slug}.
func (s *Server) SubmitResponse(w http.ResponseWriter, r *http.Request, slug string) {
	var sub domain.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&sub); err != nil {
		s.logger.Warn("invalid submission body", "slug", slug, "err", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clean, err := runner.SanitizeInput(sub.Response)
	if err != nil {
		s.logger.Warn("response rejected", "slug", slug, "err", err, "size", len(sub.Response))
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub.Response = clean

	score, err := s.service.Submit(r.Context(), slug, sub)
	if err != nil {
		s.fail(w, "submit", slug, err)
		return
	}
	score.Stars = domain.ClampStars(score.Stars)
	s.logger.Info("response scored", "slug", slug, "stars", score.Stars)
	s.writeJSON(w, http.StatusOK, score)
}

func (s *Server) fail(w http.ResponseWriter, op, slug string, err error) {
	switch {
	case errors.Is(err, domain.ErrPromptNotFound):
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown prompt %q", slug))
	case errors.Is(err, service.ErrBadSubmission):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(op+" failed", "slug", slug, "err", err)
		s.writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorBody{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>giveaibreak API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
