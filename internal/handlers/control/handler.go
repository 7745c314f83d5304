package control

import (
	"context"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle"
)

const defaultNotificationLimit = 20

// HandlerConfig holds dependencies for the control handler
type HandlerConfig struct {
	Lifecycle lifecycle.Service
	Notifier  notify.Notifier
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Lifecycle == nil {
		vb.RequiredField("Lifecycle")
	}
	if c.Notifier == nil {
		vb.RequiredField("Notifier")
	}
	return vb.Build()
}

// Handler implements the control gRPC service
type Handler struct {
	lifecycle lifecycle.Service
	notifier  notify.Notifier
}

var _ ControlServer = (*Handler)(nil)

// NewHandler creates a new control handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		lifecycle: cfg.Lifecycle,
		notifier:  cfg.Notifier,
	}, nil
}

// ReloadDiceEngine drops the engine handle and initializes it again
func (h *Handler) ReloadDiceEngine(ctx context.Context, _ *ReloadDiceEngineRequest) (*StatusResponse, error) {
	status, err := h.lifecycle.ReloadEngine(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return toStatusResponse(status), nil
}

// PreloadTheme warms a theme in the engine cache
func (h *Handler) PreloadTheme(ctx context.Context, req *PreloadThemeRequest) (*PreloadThemeResponse, error) {
	if req.ThemeID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("theme_id is required"))
	}

	theme, err := h.lifecycle.PreloadTheme(ctx, req.ThemeID)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &PreloadThemeResponse{Theme: theme}, nil
}

// GetStatus reports the current session
func (h *Handler) GetStatus(_ context.Context, _ *GetStatusRequest) (*StatusResponse, error) {
	return toStatusResponse(h.lifecycle.Status()), nil
}

// ListNotifications returns the most recent notifications
func (h *Handler) ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	if req.Limit < 0 {
		return nil, errors.ToGRPCError(errors.InvalidArgument("limit must not be negative"))
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultNotificationLimit
	}

	list, err := h.notifier.List(ctx, limit)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ListNotificationsResponse{Notifications: list}, nil
}

func toStatusResponse(status *lifecycle.Status) *StatusResponse {
	if status == nil {
		return &StatusResponse{}
	}
	return &StatusResponse{
		State:       string(status.State),
		GameSystem:  string(status.System),
		SessionID:   status.SessionID,
		EngineReady: status.EngineReady,
	}
}
