package page_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	pagehandler "github.com/KirkDiggler/dice-bridge/internal/handlers/page"
	"github.com/KirkDiggler/dice-bridge/internal/notify"
	notifymock "github.com/KirkDiggler/dice-bridge/internal/notify/mock"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle"
	lifecyclemock "github.com/KirkDiggler/dice-bridge/internal/orchestrators/lifecycle/mock"
	"github.com/KirkDiggler/dice-bridge/internal/page"
	rollhistory "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history"
	rollhistorymock "github.com/KirkDiggler/dice-bridge/internal/repositories/roll_history/mock"
	"github.com/KirkDiggler/dice-bridge/internal/repositories/settings"
	settingsmock "github.com/KirkDiggler/dice-bridge/internal/repositories/settings/mock"
)

const sheetURL = "https://app.demiplane.com/nexus/daggerheart/character-sheet/abc"

type HandlerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockLifecycle *lifecyclemock.MockService
	mockHistory   *rollhistorymock.MockRepository
	mockSettings  *settingsmock.MockStore
	mockNotifier  *notifymock.MockNotifier
	bridge        *page.Bridge
	router        http.Handler
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockLifecycle = lifecyclemock.NewMockService(s.ctrl)
	s.mockHistory = rollhistorymock.NewMockRepository(s.ctrl)
	s.mockSettings = settingsmock.NewMockStore(s.ctrl)
	s.mockNotifier = notifymock.NewMockNotifier(s.ctrl)
	s.bridge = page.NewBridge()

	h, err := pagehandler.NewHandler(&pagehandler.Config{
		Lifecycle: s.mockLifecycle,
		Bridge:    s.bridge,
		History:   s.mockHistory,
		Settings:  s.mockSettings,
		Notifier:  s.mockNotifier,
	})
	s.Require().NoError(err)
	s.router = h.Router()
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonString(v string) string {
	out, _ := json.Marshal(v)
	return string(out)
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v))
}

func (s *HandlerTestSuite) TestHealthz() {
	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *HandlerTestSuite) TestNavigate() {
	s.Run("hands the url to the lifecycle", func() {
		s.mockLifecycle.EXPECT().
			HandleNavigation(gomock.Any(), &lifecycle.HandleNavigationInput{URL: sheetURL}).
			Return(&lifecycle.Status{
				State:     lifecycle.StateWatching,
				System:    entities.GameSystemDaggerheart,
				SessionID: "abc",
			}, nil)

		rec := s.do(http.MethodPost, "/v1/page/navigate", `{"url":"`+sheetURL+`"}`)

		s.Equal(http.StatusOK, rec.Code)
		var status lifecycle.Status
		s.decode(rec, &status)
		s.Equal(lifecycle.StateWatching, status.State)
		s.Equal(sheetURL, s.bridge.URL())
	})

	s.Run("maps lifecycle errors to status codes", func() {
		s.mockLifecycle.EXPECT().
			HandleNavigation(gomock.Any(), gomock.Any()).
			Return(nil, errors.Unauthenticated("invalid api key"))

		rec := s.do(http.MethodPost, "/v1/page/navigate", `{"url":"`+sheetURL+`"}`)

		s.Equal(http.StatusUnauthorized, rec.Code)
		s.JSONEq(`{"error":{"code":"UNAUTHENTICATED","message":"invalid api key"}}`, rec.Body.String())
	})

	s.Run("mirrors the storage snapshot before the lifecycle sees the url", func() {
		history := `[{"name":"Old Roll"}]`
		gomock.InOrder(
			s.mockHistory.EXPECT().
				Put(gomock.Any(), &rollhistory.PutInput{Key: "daggerheart-roll-history-abc", Value: history}).
				Return(&rollhistory.PutOutput{}, nil),
			s.mockHistory.EXPECT().
				Put(gomock.Any(), &rollhistory.PutInput{Key: "theme", Value: "dark"}).
				Return(&rollhistory.PutOutput{}, nil),
			s.mockLifecycle.EXPECT().
				HandleNavigation(gomock.Any(), &lifecycle.HandleNavigationInput{URL: sheetURL}).
				Return(&lifecycle.Status{State: lifecycle.StateWatching}, nil),
		)

		body := `{"url":"` + sheetURL + `","storage":{"theme":"dark","daggerheart-roll-history-abc":` + jsonString(history) + `}}`
		rec := s.do(http.MethodPost, "/v1/page/navigate", body)

		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("does not navigate when the snapshot cannot be stored", func() {
		s.mockHistory.EXPECT().
			Put(gomock.Any(), gomock.Any()).
			Return(nil, errors.Unavailable("redis down"))

		rec := s.do(http.MethodPost, "/v1/page/navigate", `{"url":"`+sheetURL+`","storage":{"k":"v"}}`)

		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})

	s.Run("rejects a missing url", func() {
		rec := s.do(http.MethodPost, "/v1/page/navigate", `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects malformed json", func() {
		rec := s.do(http.MethodPost, "/v1/page/navigate", `{`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerTestSuite) TestStorageMirror() {
	s.Run("put", func() {
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		s.mockHistory.EXPECT().
			Put(gomock.Any(), &rollhistory.PutInput{Key: "roll-history-abc", Value: `[{"name":"Agility"}]`}).
			Return(&rollhistory.PutOutput{UpdatedAt: at}, nil)

		rec := s.do(http.MethodPut, "/v1/page/storage/roll-history-abc", `[{"name":"Agility"}]`)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"updated_at":"2026-01-02T03:04:05Z"}`, rec.Body.String())
	})

	s.Run("remove", func() {
		s.mockHistory.EXPECT().
			Remove(gomock.Any(), &rollhistory.RemoveInput{Key: "roll-history-abc"}).
			Return(nil)

		rec := s.do(http.MethodDelete, "/v1/page/storage/roll-history-abc", "")
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *HandlerTestSuite) TestDocumentAndDOMFeed() {
	rec := s.do(http.MethodPut, "/v1/page/document", `<h1 class="character-name">Vex</h1>`)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(`<h1 class="character-name">Vex</h1>`, s.bridge.Document())

	var pressed bool
	s.bridge.OnPress(func(context.Context) { pressed = true })
	var seen []page.Mutation
	s.bridge.Observe(func(_ context.Context, m page.Mutation) { seen = append(seen, m) })

	rec = s.do(http.MethodPost, "/v1/page/dom/press", "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.True(pressed)

	rec = s.do(http.MethodPost, "/v1/page/dom/mutations",
		`[{"type":"childList","html":"<div></div>"},{"type":"attributes"}]`)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal([]page.Mutation{
		{Type: page.MutationChildList, HTML: "<div></div>"},
		{Type: "attributes"},
	}, seen)
}

func (s *HandlerTestSuite) TestIntercept() {
	s.bridge.Intercept(func(_ context.Context, req *page.InterceptRequest) (*page.InterceptResponse, bool, error) {
		switch req.URL.Query().Get("dice") {
		case "":
			return nil, false, nil
		case "bad":
			return nil, true, errors.InvalidArgument("unsupported dice expression")
		}
		return &page.InterceptResponse{ContentType: "application/json", Body: []byte(`{"total":12}`)}, true, nil
	})

	s.Run("claimed", func() {
		rec := s.do(http.MethodGet, "/v1/page/intercept?url=https%3A%2F%2Fpb.example%2Froll%3Fdice%3D2d6", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("application/json", rec.Header().Get("Content-Type"))
		s.Equal(`{"total":12}`, rec.Body.String())
	})

	s.Run("passed through", func() {
		rec := s.do(http.MethodGet, "/v1/page/intercept?url=https%3A%2F%2Fpb.example%2Fcharacter", "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("interceptor error", func() {
		rec := s.do(http.MethodGet, "/v1/page/intercept?url=https%3A%2F%2Fpb.example%2Froll%3Fdice%3Dbad", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing url", func() {
		rec := s.do(http.MethodGet, "/v1/page/intercept", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerTestSuite) TestMessages() {
	s.Run("reload dice engine", func() {
		s.mockLifecycle.EXPECT().
			ReloadEngine(gomock.Any()).
			Return(&lifecycle.Status{State: lifecycle.StateInitializing}, nil)

		rec := s.do(http.MethodPost, "/v1/messages/reloadDiceEngine", "")

		s.Equal(http.StatusOK, rec.Code)
		var status lifecycle.Status
		s.decode(rec, &status)
		s.Equal(lifecycle.StateInitializing, status.State)
	})

	s.Run("preload theme", func() {
		s.mockLifecycle.EXPECT().
			PreloadTheme(gomock.Any(), "dddice-bees").
			Return(&entities.Theme{ID: "dddice-bees", DieTypes: []string{"d20"}}, nil)

		rec := s.do(http.MethodPost, "/v1/messages/preloadTheme", `{"themeID":"dddice-bees"}`)

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"id":"dddice-bees","dieTypes":["d20"]}`, rec.Body.String())
	})

	s.Run("unknown message", func() {
		rec := s.do(http.MethodPost, "/v1/messages/selfDestruct", "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerTestSuite) TestNotifications() {
	s.Run("default limit", func() {
		s.mockNotifier.EXPECT().List(gomock.Any(), 20).Return([]*notify.Notification{
			{ID: "n_1", Level: notify.LevelInfo, Message: "Agility: 14"},
		}, nil)

		rec := s.do(http.MethodGet, "/v1/notifications", "")

		s.Equal(http.StatusOK, rec.Code)
		var body struct {
			Notifications []*notify.Notification `json:"notifications"`
		}
		s.decode(rec, &body)
		s.Require().Len(body.Notifications, 1)
		s.Equal("Agility: 14", body.Notifications[0].Message)
	})

	s.Run("invalid limit", func() {
		rec := s.do(http.MethodGet, "/v1/notifications?limit=zero", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerTestSuite) TestSettings() {
	s.Run("never returns the api key", func() {
		s.mockSettings.EXPECT().All(gomock.Any()).Return(map[settings.Key]string{
			settings.KeyAPIKey: "secret",
			settings.KeyTheme:  `{"id":"dddice-bees"}`,
		}, nil)

		rec := s.do(http.MethodGet, "/v1/settings", "")

		s.Equal(http.StatusOK, rec.Code)
		s.NotContains(rec.Body.String(), "secret")
		s.JSONEq(`{"theme":"{\"id\":\"dddice-bees\"}","apiKeySet":true}`, rec.Body.String())
	})

	s.Run("writes known keys", func() {
		s.mockSettings.EXPECT().
			Set(gomock.Any(), map[settings.Key]string{settings.KeyAPIKey: "new-key"}).
			Return(nil)

		rec := s.do(http.MethodPut, "/v1/settings", `{"apiKey":"new-key"}`)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("rejects unknown keys", func() {
		rec := s.do(http.MethodPut, "/v1/settings", `{"favoriteColor":"red"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerTestSuite) TestStatus() {
	s.mockLifecycle.EXPECT().Status().Return(&lifecycle.Status{
		State:       lifecycle.StateTornDown,
		System:      entities.GameSystemUnknown,
		EngineReady: false,
	})

	rec := s.do(http.MethodGet, "/v1/status", "")

	s.Equal(http.StatusOK, rec.Code)
	var status lifecycle.Status
	s.decode(rec, &status)
	s.Equal(lifecycle.StateTornDown, status.State)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
