package rolling_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]interface{}
}

type ClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	requests []recordedRequest
	client   rolling.Client
	ctx      context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.requests = nil
	s.handler = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		s.requests = append(s.requests, rec)
		s.handler(w, r)
	}))

	client, err := rolling.New(&rolling.Config{
		APIKey:  "key-123",
		BaseURL: s.server.URL,
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) respond(status int, body string) {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (s *ClientTestSuite) TestNewValidation() {
	s.Run("requires config", func() {
		_, err := rolling.New(nil)
		s.Error(err)
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("requires api key", func() {
		_, err := rolling.New(&rolling.Config{})
		s.Error(err)
		s.Contains(err.Error(), "APIKey")
	})

	s.Run("applies defaults", func() {
		cfg := &rolling.Config{APIKey: "k"}
		s.NoError(cfg.Validate())
		s.Equal(rolling.DefaultBaseURL, cfg.BaseURL)
		s.Equal(30*time.Second, cfg.HTTPTimeout)
	})
}

func (s *ClientTestSuite) TestCreateRoll() {
	s.respond(http.StatusCreated, `{"type":"roll","data":{
		"uuid":"r-1","label":"Attack","total_value":17,"room":{"slug":"abc"},
		"values":[{"type":"d20","value":14,"theme":"t1"},{"type":"mod","value":3}]}}`)

	roll, err := s.client.CreateRoll(s.ctx, &rolling.CreateRollInput{
		RoomSlug: "abc",
		Label:    "Attack",
		Dice: []entities.NormalizedDie{
			{Type: "d20", Value: 14, Theme: "t1"},
			{Type: "mod", Value: 3, Theme: "t1"},
		},
		Operator: entities.Operator{Keep: entities.KeepHighestOne},
	})
	s.Require().NoError(err)

	s.Equal("r-1", roll.UUID)
	s.Equal(17, roll.Total)
	s.Equal("abc", roll.Room)
	s.Len(roll.Dice, 2)

	s.Require().Len(s.requests, 1)
	req := s.requests[0]
	s.Equal(http.MethodPost, req.method)
	s.Equal("/roll", req.path)
	s.Equal("Bearer key-123", req.auth)
	s.Equal("abc", req.body["room"])
	s.Equal("Attack", req.body["label"])
	s.Len(req.body["dice"], 2)
	s.Equal(map[string]interface{}{"k": "h1"}, req.body["operator"])
}

func (s *ClientTestSuite) TestCreateRollOmitsEmptyOperator() {
	s.respond(http.StatusOK, `{"data":{"uuid":"r-2"}}`)

	_, err := s.client.CreateRoll(s.ctx, &rolling.CreateRollInput{
		RoomSlug: "abc",
		Dice:     []entities.NormalizedDie{{Type: "d6", Value: 2}},
	})
	s.Require().NoError(err)
	s.Require().Len(s.requests, 1)
	_, ok := s.requests[0].body["operator"]
	s.False(ok)
}

func (s *ClientTestSuite) TestCreateRollRequiresInput() {
	s.Run("room", func() {
		_, err := s.client.CreateRoll(s.ctx, &rolling.CreateRollInput{
			Dice: []entities.NormalizedDie{{Type: "d6", Value: 1}},
		})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("dice", func() {
		_, err := s.client.CreateRoll(s.ctx, &rolling.CreateRollInput{RoomSlug: "abc"})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Empty(s.requests)
}

func (s *ClientTestSuite) TestRemoteErrorMessage() {
	s.respond(http.StatusUnprocessableEntity, `{"type":"error","data":{"message":"Room is full"}}`)

	_, err := s.client.CreateRoll(s.ctx, &rolling.CreateRollInput{
		RoomSlug: "abc",
		Dice:     []entities.NormalizedDie{{Type: "d6", Value: 1}},
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal("Room is full", errors.UserMessage(err))
	s.Equal(http.StatusUnprocessableEntity, errors.GetMeta(err)["status"])
}

func (s *ClientTestSuite) TestStatusMapping() {
	testCases := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, check: errors.IsUnauthenticated},
		{name: "not found", status: http.StatusNotFound, check: errors.IsNotFound},
		{name: "unavailable", status: http.StatusServiceUnavailable, check: errors.IsUnavailable},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.respond(tc.status, `{}`)
			_, err := s.client.GetUser(s.ctx)
			s.Require().Error(err)
			s.True(tc.check(err))
			s.Equal(http.StatusText(tc.status), errors.UserMessage(err))
		})
	}
}

func (s *ClientTestSuite) TestUnreachable() {
	s.server.Close()

	_, err := s.client.GetUser(s.ctx)
	s.Require().Error(err)
	s.True(errors.IsUnavailable(err))
	s.True(errors.IsConnectionError(err))
}

func (s *ClientTestSuite) TestGetRoom() {
	s.respond(http.StatusOK, `{"data":{"slug":"abc","name":"Table","participants":[
		{"id":"11","username":"Old","user":{"uuid":"u-1"}},
		{"id":"12","username":"Other","user":{"uuid":"u-2"}}]}}`)

	room, err := s.client.GetRoom(s.ctx, "abc")
	s.Require().NoError(err)

	s.Equal("abc", room.Slug)
	s.Equal("Table", room.Name)
	s.Require().Len(room.Participants, 2)
	s.Equal("11", room.Participants[0].ID)
	s.Equal("u-1", room.Participants[0].UserUUID)
	s.Equal("Old", room.Participants[0].Username)
	s.Equal("/room/abc", s.requests[0].path)
}

func (s *ClientTestSuite) TestListRooms() {
	s.respond(http.StatusOK, `{"data":[{"slug":"a"},{"slug":"b"}]}`)

	rooms, err := s.client.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal("b", rooms[1].Slug)
}

func (s *ClientTestSuite) TestCreateAndJoinRoom() {
	s.respond(http.StatusCreated, `{"data":{"slug":"new"}}`)

	room, err := s.client.CreateRoom(s.ctx, &rolling.CreateRoomInput{Name: "Bridge"})
	s.Require().NoError(err)
	s.Equal("new", room.Slug)
	s.Equal("Bridge", s.requests[0].body["name"])

	room, err = s.client.JoinRoom(s.ctx, &rolling.JoinRoomInput{RoomSlug: "new", Passcode: "pw"})
	s.Require().NoError(err)
	s.Equal("new", room.Slug)
	s.Equal("/room/new/participant", s.requests[1].path)
	s.Equal("pw", s.requests[1].body["passcode"])
}

func (s *ClientTestSuite) TestUpdateParticipant() {
	s.respond(http.StatusOK, `{"data":{"slug":"abc","participants":[{"id":"11","username":"Kaladin","user":{"uuid":"u-1"}}]}}`)

	room, err := s.client.UpdateParticipant(s.ctx, &rolling.UpdateParticipantInput{
		RoomSlug:      "abc",
		ParticipantID: "11",
		Username:      "Kaladin",
	})
	s.Require().NoError(err)
	s.Equal("Kaladin", room.Participants[0].Username)

	req := s.requests[0]
	s.Equal(http.MethodPatch, req.method)
	s.Equal("/room/abc/participant/11", req.path)
	s.Equal("Kaladin", req.body["username"])
}

func (s *ClientTestSuite) TestThemes() {
	s.Run("list accepts string dice", func() {
		s.respond(http.StatusOK, `{"data":[{"id":"t1","name":"Gold","available_dice":["d20","d6"]}]}`)

		themes, err := s.client.ListThemes(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(themes, 1)
		s.Equal([]string{"d20", "d6"}, themes[0].DieTypes)
	})

	s.Run("get accepts object dice", func() {
		s.respond(http.StatusOK, `{"data":{"id":"t2","available_dice":[{"id":"dpl"},{"type":"d6"}]}}`)

		theme, err := s.client.GetTheme(s.ctx, "t2")
		s.Require().NoError(err)
		s.Equal("t2", theme.ID)
		s.True(theme.HasDie("dpl"))
		s.True(theme.HasDie("d6"))
	})
}

func (s *ClientTestSuite) TestGetUser() {
	s.respond(http.StatusOK, `{"data":{"uuid":"u-1","username":"dicer","name":"Dice Person"}}`)

	user, err := s.client.GetUser(s.ctx)
	s.Require().NoError(err)
	s.Equal("u-1", user.UUID)
	s.Equal("dicer", user.Username)
	s.Equal("/user", s.requests[0].path)
}

func (s *ClientTestSuite) TestMalformedResponse() {
	s.respond(http.StatusOK, `not json`)

	_, err := s.client.GetUser(s.ctx)
	s.Require().Error(err)
	s.Equal(errors.CodeInternal, errors.GetCode(err))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
