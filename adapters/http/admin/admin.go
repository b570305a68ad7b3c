// Package admin provides HTTP handlers for the admin API.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/formworks/formworks/adapters/metrics"
	"github.com/formworks/formworks/app"
)

type contextKey string

const ctxIdentityKey contextKey = "admin_identity"

// Handler provides admin API endpoints.
type Handler struct {
	auth        *app.AuthService
	forms       *app.FormService
	submissions *app.SubmissionService
	logger      zerolog.Logger
	metrics     *metrics.Collector
}

// Deps contains dependencies for the admin handler.
type Deps struct {
	Auth        *app.AuthService
	Forms       *app.FormService
	Submissions *app.SubmissionService
	Logger      zerolog.Logger
	Metrics     *metrics.Collector
}

// NewHandler creates a new admin API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		auth:        deps.Auth,
		forms:       deps.Forms,
		submissions: deps.Submissions,
		logger:      deps.Logger.With().Str("component", "admin_api").Logger(),
		metrics:     deps.Metrics,
	}
}

// Router returns the admin API router. Every route requires a bearer token;
// login lives outside this router under /api/auth.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.AuthMiddleware)

	r.Route("/forms", func(r chi.Router) {
		r.Post("/", h.CreateForm)
		r.Get("/", h.ListForms)

		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Put("/", h.UpdateForm)
			r.Delete("/", h.DeleteForm)

			r.Post("/versions", h.CreateVersion)

			r.Route("/fields", func(r chi.Router) {
				r.Post("/", h.CreateField)
				r.Get("/", h.ListFields)
				r.Patch("/reorder", h.ReorderFields)
				r.Get("/{fieldID}", h.GetField)
				r.Put("/{fieldID}", h.UpdateField)
				r.Delete("/{fieldID}", h.DeleteField)
			})

			r.Get("/submissions", h.ListSubmissions)
			r.Get("/submissions/export", h.ExportSubmissions)
		})
	})

	return r
}

// -----------------------------------------------------------------------------
// Authentication
// -----------------------------------------------------------------------------

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt"`
}

// Login authenticates an admin and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials", "Username and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrUnauthorized) {
			h.countAuthFailure("invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		Username:  result.Username,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// AuthMiddleware requires a valid bearer token and stores the verified
// identity in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			h.countAuthFailure("missing_token")
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		identity, err := h.auth.Verify(token)
		if err != nil {
			h.countAuthFailure("invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxIdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the verified admin identity, if any.
func IdentityFromContext(ctx context.Context) (app.Identity, bool) {
	identity, ok := ctx.Value(ctxIdentityKey).(app.Identity)
	return identity, ok
}

// actor names the admin behind a request for audit logging.
func actor(r *http.Request) string {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return "unknown"
	}
	return identity.Username
}

func (h *Handler) countAuthFailure(reason string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// -----------------------------------------------------------------------------
// Response helpers
// -----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeAppError maps the app error taxonomy to HTTP status codes.
func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{
				"code":    "validation_failed",
				"message": ve.Error(),
			},
			"errors": ve.Errors,
		})
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, app.ErrConflict):
		// Uniqueness violations are client errors, same bucket as validation.
		writeError(w, http.StatusBadRequest, "conflict", firstErrorLine(err))
	case errors.Is(err, app.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
	default:
		h.internalError(w, r, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func firstErrorLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
