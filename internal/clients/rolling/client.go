// Package rolling is the HTTP client for the hosted dice-rolling service.
package rolling

//go:generate mockgen -destination=mock/mock_client.go -package=rollingmock github.com/KirkDiggler/dice-bridge/internal/clients/rolling Client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

const (
	// DefaultBaseURL is the public rolling service API
	DefaultBaseURL     = "https://dddice.com/api/1.0"
	defaultHTTPTimeout = 30 * time.Second
	tracerName         = "github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
)

// Client defines the rolling service operations the bridge uses
type Client interface {
	// CreateRoll submits dice to a room and returns the accepted roll
	CreateRoll(ctx context.Context, input *CreateRollInput) (*entities.Roll, error)

	// ListRooms returns rooms the user belongs to
	ListRooms(ctx context.Context) ([]*entities.Room, error)

	// CreateRoom creates a new room owned by the user
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*entities.Room, error)

	// GetRoom fetches a room with its participants
	GetRoom(ctx context.Context, slug string) (*entities.Room, error)

	// JoinRoom adds the user to a room
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*entities.Room, error)

	// UpdateParticipant renames the user's participant record in a room
	UpdateParticipant(ctx context.Context, input *UpdateParticipantInput) (*entities.Room, error)

	// ListThemes returns the themes in the user's dice box
	ListThemes(ctx context.Context) ([]*entities.Theme, error)

	// GetTheme fetches a single theme
	GetTheme(ctx context.Context, id string) (*entities.Theme, error)

	// GetUser returns the account that owns the API key
	GetUser(ctx context.Context) (*entities.User, error)
}

// CreateRollInput contains the dice and options for a roll
type CreateRollInput struct {
	RoomSlug string
	Label    string
	Dice     []entities.NormalizedDie
	Operator entities.Operator
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	Name string
}

// JoinRoomInput contains parameters for joining a room
type JoinRoomInput struct {
	RoomSlug string
	Passcode string
}

// UpdateParticipantInput contains the new username for a participant
type UpdateParticipantInput struct {
	RoomSlug      string
	ParticipantID string
	Username      string
}

// Config holds the client configuration
type Config struct {
	// APIKey authenticates every request
	APIKey string
	// BaseURL for the rolling API (optional, defaults to DefaultBaseURL)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// HTTPClient overrides the transport (optional)
	HTTPClient *http.Client
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if strings.TrimSpace(cfg.APIKey) == "" {
		vb.RequiredField("APIKey")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		vb.InvalidField("BaseURL", err.Error())
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return vb.Build()
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// New creates a rolling service client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

type rollDie struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
	Theme string `json:"theme,omitempty"`
	Label string `json:"label,omitempty"`
}

type rollRequest struct {
	Dice     []rollDie          `json:"dice"`
	Room     string             `json:"room"`
	Label    string             `json:"label,omitempty"`
	Operator *entities.Operator `json:"operator,omitempty"`
}

func (c *client) CreateRoll(ctx context.Context, input *CreateRollInput) (*entities.Roll, error) {
	if input == nil || input.RoomSlug == "" {
		return nil, errors.InvalidArgument("room is required")
	}
	if len(input.Dice) == 0 {
		return nil, errors.InvalidArgument("at least one die is required")
	}

	req := rollRequest{
		Room:  input.RoomSlug,
		Label: input.Label,
	}
	for _, d := range input.Dice {
		req.Dice = append(req.Dice, rollDie{Type: d.Type, Value: d.Value, Theme: d.Theme, Label: d.Label})
	}
	if !input.Operator.IsEmpty() {
		op := input.Operator
		req.Operator = &op
	}

	data, err := c.do(ctx, "CreateRoll", http.MethodPost, "/roll", req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create roll")
	}

	roll := &entities.Roll{
		UUID:  data.Get("uuid").String(),
		Label: data.Get("label").String(),
		Total: int(data.Get("total_value").Int()),
		Room:  data.Get("room.slug").String(),
	}
	for _, v := range data.Get("values").Array() {
		roll.Dice = append(roll.Dice, entities.NormalizedDie{
			Type:  v.Get("type").String(),
			Value: int(v.Get("value").Int()),
			Theme: v.Get("theme").String(),
		})
	}
	return roll, nil
}

func (c *client) ListRooms(ctx context.Context) ([]*entities.Room, error) {
	data, err := c.do(ctx, "ListRooms", http.MethodGet, "/room", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}

	var rooms []*entities.Room
	for _, r := range data.Array() {
		rooms = append(rooms, parseRoom(r))
	}
	return rooms, nil
}

func (c *client) CreateRoom(ctx context.Context, input *CreateRoomInput) (*entities.Room, error) {
	body := map[string]interface{}{"is_public": false}
	if input != nil && input.Name != "" {
		body["name"] = input.Name
	}

	data, err := c.do(ctx, "CreateRoom", http.MethodPost, "/room", body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create room")
	}
	return parseRoom(data), nil
}

func (c *client) GetRoom(ctx context.Context, slug string) (*entities.Room, error) {
	if slug == "" {
		return nil, errors.InvalidArgument("room slug is required")
	}

	data, err := c.do(ctx, "GetRoom", http.MethodGet, "/room/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get room %s", slug)
	}
	return parseRoom(data), nil
}

func (c *client) JoinRoom(ctx context.Context, input *JoinRoomInput) (*entities.Room, error) {
	if input == nil || input.RoomSlug == "" {
		return nil, errors.InvalidArgument("room slug is required")
	}

	body := map[string]interface{}{}
	if input.Passcode != "" {
		body["passcode"] = input.Passcode
	}

	path := "/room/" + url.PathEscape(input.RoomSlug) + "/participant"
	data, err := c.do(ctx, "JoinRoom", http.MethodPost, path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to join room %s", input.RoomSlug)
	}
	return parseRoom(data), nil
}

func (c *client) UpdateParticipant(ctx context.Context, input *UpdateParticipantInput) (*entities.Room, error) {
	if input == nil || input.RoomSlug == "" || input.ParticipantID == "" {
		return nil, errors.InvalidArgument("room slug and participant id are required")
	}

	path := "/room/" + url.PathEscape(input.RoomSlug) + "/participant/" + url.PathEscape(input.ParticipantID)
	data, err := c.do(ctx, "UpdateParticipant", http.MethodPatch, path, map[string]string{"username": input.Username})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update participant")
	}
	return parseRoom(data), nil
}

func (c *client) ListThemes(ctx context.Context) ([]*entities.Theme, error) {
	data, err := c.do(ctx, "ListThemes", http.MethodGet, "/dice-box", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list themes")
	}

	var themes []*entities.Theme
	for _, t := range data.Array() {
		themes = append(themes, parseTheme(t))
	}
	return themes, nil
}

func (c *client) GetTheme(ctx context.Context, id string) (*entities.Theme, error) {
	if id == "" {
		return nil, errors.InvalidArgument("theme id is required")
	}

	data, err := c.do(ctx, "GetTheme", http.MethodGet, "/dice-box/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get theme %s", id)
	}
	return parseTheme(data), nil
}

func (c *client) GetUser(ctx context.Context) (*entities.User, error) {
	data, err := c.do(ctx, "GetUser", http.MethodGet, "/user", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return &entities.User{
		UUID:     data.Get("uuid").String(),
		Username: data.Get("username").String(),
		Name:     data.Get("name").String(),
	}, nil
}

// do sends a request and returns the "data" member of the response envelope
func (c *client) do(ctx context.Context, op, method, path string, body interface{}) (gjson.Result, error) {
	ctx, span := c.tracer.Start(ctx, "rolling."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("rolling.path", path),
		))
	defer span.End()

	result, err := c.send(ctx, method, path, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.UserMessage(err))
		slog.Debug("Rolling service call failed",
			"operation", op,
			"path", path,
			"error", err)
		return gjson.Result{}, err
	}
	return result, nil
}

func (c *client) send(ctx context.Context, method, path string, body interface{}) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return gjson.Result{}, errors.WrapWithCode(err, errors.CodeDeadlineExceeded, "rolling service timeout")
		}
		return gjson.Result{}, errors.WrapWithCode(err, errors.CodeUnavailable, "rolling service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read rolling service response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, remoteError(resp.StatusCode, raw)
	}

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, errors.Internal("rolling service returned malformed JSON")
	}
	return gjson.GetBytes(raw, "data"), nil
}

// remoteError surfaces the service's nested human-readable message
func remoteError(status int, raw []byte) error {
	msg := ""
	if gjson.ValidBytes(raw) {
		for _, path := range []string{"data.message", "message", "error"} {
			if m := strings.TrimSpace(gjson.GetBytes(raw, path).String()); m != "" {
				msg = m
				break
			}
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errors.Remote(errors.CodeFromHTTPStatus(status), msg).WithMeta("status", status)
}

func parseRoom(r gjson.Result) *entities.Room {
	room := &entities.Room{
		Slug: r.Get("slug").String(),
		Name: r.Get("name").String(),
	}
	for _, p := range r.Get("participants").Array() {
		room.Participants = append(room.Participants, &entities.Participant{
			ID:       p.Get("id").String(),
			UserUUID: p.Get("user.uuid").String(),
			Username: p.Get("username").String(),
		})
	}
	return room
}

// parseTheme accepts available_dice entries as strings or objects
func parseTheme(t gjson.Result) *entities.Theme {
	theme := &entities.Theme{
		ID:   t.Get("id").String(),
		Name: t.Get("name").String(),
	}
	for _, d := range t.Get("available_dice").Array() {
		id := d.String()
		if d.IsObject() {
			id = d.Get("id").String()
			if id == "" {
				id = d.Get("type").String()
			}
		}
		if id != "" {
			theme.DieTypes = append(theme.DieTypes, id)
		}
	}
	return theme
}
