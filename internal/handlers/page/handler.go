// Package page serves the HTTP API used by the companion script running in
// the host page and by the settings popup.
package page

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle"
	bridge "github.com/KirkDiggler/dice-bridge/internal/page"
	rollhistory "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
)

// Message names accepted on /v1/messages/{name}
const (
	MessageReloadDiceEngine = "reloadDiceEngine"
	MessagePreloadTheme     = "preloadTheme"
)

const (
	maxBodyBytes        = 4 << 20
	requestTimeout      = 60 * time.Second
	defaultNotifyLimit  = 20
	apiKeySetField      = "apiKeySet"
	contentTypeJSON     = "application/json"
	headerContentType   = "Content-Type"
	interceptURLParam   = "url"
	notifyLimitParam    = "limit"
	storageKeyURLParam  = "key"
	messageNameURLParam = "name"
)

// Config holds dependencies for the page handler
type Config struct {
	Lifecycle lifecycle.Service
	Bridge    *bridge.Bridge
	History   rollhistory.Repository
	Settings  settings.Store
	Notifier  notify.Notifier
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Lifecycle == nil {
		vb.RequiredField("Lifecycle")
	}
	if c.Bridge == nil {
		vb.RequiredField("Bridge")
	}
	if c.History == nil {
		vb.RequiredField("History")
	}
	if c.Settings == nil {
		vb.RequiredField("Settings")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}
	return vb.Build()
}

// Handler serves the page bridge API
type Handler struct {
	lifecycle lifecycle.Service
	bridge    *bridge.Bridge
	history   rollhistory.Repository
	settings  settings.Store
	notifier  notify.Notifier
}

// NewHandler creates a new page handler with the given configuration
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		lifecycle: cfg.Lifecycle,
		bridge:    cfg.Bridge,
		history:   cfg.History,
		settings:  cfg.Settings,
		notifier:  cfg.Notifier,
	}, nil
}

// Router builds the chi router with the standard middleware stack
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/page", func(r chi.Router) {
			r.Post("/navigate", h.navigate)
			r.Put("/storage/{key}", h.putStorage)
			r.Delete("/storage/{key}", h.removeStorage)
			r.Put("/document", h.putDocument)
			r.Post("/dom/press", h.press)
			r.Post("/dom/mutations", h.mutations)
			r.Get("/intercept", h.intercept)
		})
		r.Post("/messages/{name}", h.message)
		r.Get("/notifications", h.notifications)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.putSettings)
		r.Get("/status", h.status)
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// navigateRequest carries the new page URL. Storage is the page's current
// localStorage snapshot; it is mirrored before the lifecycle reacts so a
// storage watcher takes the existing history as its baseline.
type navigateRequest struct {
	URL     string            `json:"url"`
	Storage map[string]string `json:"storage,omitempty"`
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.URL == "" {
		writeError(w, errors.InvalidArgument("url is required"))
		return
	}

	for _, key := range slices.Sorted(maps.Keys(req.Storage)) {
		if key == "" {
			writeError(w, errors.InvalidArgument("storage key is required"))
			return
		}
		if _, err := h.history.Put(r.Context(), &rollhistory.PutInput{Key: key, Value: req.Storage[key]}); err != nil {
			writeError(w, err)
			return
		}
	}

	h.bridge.SetURL(req.URL)

	status, err := h.lifecycle.HandleNavigation(r.Context(), &lifecycle.HandleNavigationInput{URL: req.URL})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) putStorage(w http.ResponseWriter, r *http.Request) {
	value, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := h.history.Put(r.Context(), &rollhistory.PutInput{
		Key:   chi.URLParam(r, storageKeyURLParam),
		Value: string(value),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]time.Time{"updated_at": out.UpdatedAt})
}

func (h *Handler) removeStorage(w http.ResponseWriter, r *http.Request) {
	err := h.history.Remove(r.Context(), &rollhistory.RemoveInput{Key: chi.URLParam(r, storageKeyURLParam)})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) putDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.bridge.SetDocument(string(doc))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) press(w http.ResponseWriter, r *http.Request) {
	h.bridge.Press(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mutations(w http.ResponseWriter, r *http.Request) {
	var records []bridge.Mutation
	if err := decodeJSON(r, &records); err != nil {
		writeError(w, err)
		return
	}

	// submission outlives the page's request
	ctx := context.WithoutCancel(r.Context())
	for _, m := range records {
		h.bridge.Mutate(ctx, m)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) intercept(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get(interceptURLParam)
	if target == "" {
		writeError(w, errors.InvalidArgument("url is required"))
		return
	}

	resp, handled, err := h.bridge.HandleRequest(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}
	if !handled {
		// the page performs the original request
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set(headerContentType, resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type preloadThemeRequest struct {
	ThemeID string `json:"themeID"`
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	switch name := chi.URLParam(r, messageNameURLParam); name {
	case MessageReloadDiceEngine:
		status, err := h.lifecycle.ReloadEngine(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)

	case MessagePreloadTheme:
		var req preloadThemeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		theme, err := h.lifecycle.PreloadTheme(r.Context(), req.ThemeID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, theme)

	default:
		writeError(w, errors.NotFoundf("unknown message %q", name))
	}
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotifyLimit
	if raw := r.URL.Query().Get(notifyLimitParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, errors.InvalidArgumentf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	list, err := h.notifier.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": list})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make(map[string]interface{}, len(all)+1)
	for k, v := range all {
		if k == settings.KeyAPIKey {
			continue
		}
		out[string(k)] = v
	}
	out[apiKeySetField] = all[settings.KeyAPIKey] != ""

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	values := make(map[settings.Key]string, len(req))
	for k, v := range req {
		key := settings.Key(k)
		if !settings.IsKnown(key) {
			writeError(w, errors.InvalidArgumentf("unknown setting %q", k))
			return
		}
		values[key] = v
	}
	if len(values) == 0 {
		writeError(w, errors.InvalidArgument("no settings provided"))
		return
	}

	if err := h.settings.Set(r.Context(), values); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.lifecycle.Status())
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code.HTTPStatus() >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, code.HTTPStatus(), map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.InvalidArgumentf("invalid request body: %v", err)
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New(errors.CodeResourceExhausted, "request body too large")
	}
	return body, nil
}

// requestLogger logs one line per request through slog
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
