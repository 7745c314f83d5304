// Package control exposes the popup's runtime messages (reload the dice
// engine, preload a theme) and session status over gRPC.
package control

import (
	"context"

	"google.golang.org/grpc"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "dicebridge.control.v1.ControlService"

// Full method names
const (
	ReloadDiceEngineMethod  = "/" + ServiceName + "/ReloadDiceEngine"
	PreloadThemeMethod      = "/" + ServiceName + "/PreloadTheme"
	GetStatusMethod         = "/" + ServiceName + "/GetStatus"
	ListNotificationsMethod = "/" + ServiceName + "/ListNotifications"
)

// ReloadDiceEngineRequest asks for a fresh engine handle
type ReloadDiceEngineRequest struct{}

// PreloadThemeRequest names a theme to warm
type PreloadThemeRequest struct {
	ThemeID string `json:"theme_id"`
}

// PreloadThemeResponse returns the fetched theme
type PreloadThemeResponse struct {
	Theme *entities.Theme `json:"theme"`
}

// GetStatusRequest asks for the session snapshot
type GetStatusRequest struct{}

// StatusResponse is the session snapshot
type StatusResponse struct {
	State       string `json:"state"`
	GameSystem  string `json:"game_system"`
	SessionID   string `json:"session_id,omitempty"`
	EngineReady bool   `json:"engine_ready"`
}

// ListNotificationsRequest pages the recent notifications
type ListNotificationsRequest struct {
	Limit int `json:"limit"`
}

// ListNotificationsResponse holds notifications, newest first
type ListNotificationsResponse struct {
	Notifications []*notify.Notification `json:"notifications"`
}

// ControlServer is the server API for the control service
type ControlServer interface {
	ReloadDiceEngine(ctx context.Context, req *ReloadDiceEngineRequest) (*StatusResponse, error)
	PreloadTheme(ctx context.Context, req *PreloadThemeRequest) (*PreloadThemeResponse, error)
	GetStatus(ctx context.Context, req *GetStatusRequest) (*StatusResponse, error)
	ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error)
}

// RegisterControlServer registers srv on s
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the control service for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReloadDiceEngine", Handler: reloadDiceEngineHandler},
		{MethodName: "PreloadTheme", Handler: preloadThemeHandler},
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "ListNotifications", Handler: listNotificationsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dicebridge/control/v1",
}

func reloadDiceEngineHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReloadDiceEngineRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ReloadDiceEngine(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReloadDiceEngineMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).ReloadDiceEngine(ctx, req.(*ReloadDiceEngineRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func preloadThemeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PreloadThemeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).PreloadTheme(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PreloadThemeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).PreloadTheme(ctx, req.(*PreloadThemeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).GetStatus(ctx, req.(*GetStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listNotificationsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListNotificationsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ListNotifications(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListNotificationsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).ListNotifications(ctx, req.(*ListNotificationsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the control service
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps a connection to the control service
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// ReloadDiceEngine asks the bridge to rebuild its engine handle
func (c *Client) ReloadDiceEngine(ctx context.Context, in *ReloadDiceEngineRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, ReloadDiceEngineMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// PreloadTheme asks the bridge to warm a theme
func (c *Client) PreloadTheme(ctx context.Context, in *PreloadThemeRequest, opts ...grpc.CallOption) (*PreloadThemeResponse, error) {
	out := new(PreloadThemeResponse)
	if err := c.invoke(ctx, PreloadThemeMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStatus reads the session snapshot
func (c *Client) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	out := new(StatusResponse)
	if err := c.invoke(ctx, GetStatusMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNotifications reads recent notifications
func (c *Client) ListNotifications(ctx context.Context, in *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	out := new(ListNotificationsResponse)
	if err := c.invoke(ctx, ListNotificationsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.conn.Invoke(ctx, method, in, out, opts...)
}
