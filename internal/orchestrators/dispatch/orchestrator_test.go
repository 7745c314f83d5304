package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/dice-bridge/internal/clients/rolling"
	rollingmock "github.com/KirkDiggler/dice-bridge/internal/clients/rolling/mock"
	enginemock "github.com/KirkDiggler/dice-bridge/internal/engine/mock"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/errors"
	notifymock "github.com/KirkDiggler/dice-bridge/internal/notify/mock"
	"github.com/KirkDiggler/dice-bridge/internal/orchestrators/dispatch"
	"github.com/KirkDiggler/dice-bridge/internal/pkg/idgen"
	settingsmock "github.com/KirkDiggler/dice-bridge/internal/repositories/settings/mock"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
	"github.com/KirkDiggler/dice-bridge/internal/testutils/mocks"
)

const fearRoll = `{"dice":[{"die":"d20","value":-3,"config":{"name":"Fear"}}],"modifiersParsed":[{"purpose":"add","value":2}]}`

const strikeRoll = `{
	"name":"Strike: Longsword",
	"results":[
		{"slug":"main-d20-group","label":"Attack","dice":[{"die":"d20","value":14,"config":{"keep":"highest"}},{"die":"d20","value":9}],"modifiersParsed":[{"purpose":"add","value":4}]},
		{"slug":"damage-group","label":"Damage","dice":[{"die":"d8","value":6}]},
		{"slug":"plot-die","dice":[{"die":"d6","value":1}]}
	]
}`

type DispatchTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockEngine   *enginemock.MockEngine
	mockSettings *settingsmock.MockStore
	mockNotifier *notifymock.MockNotifier
	mockClient   *rollingmock.MockClient
	bus          events.EventBus
	orchestrator dispatch.Service
	ctx          context.Context
	room         *entities.Room
	themes       entities.ThemeSelection
}

func (s *DispatchTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEngine = enginemock.NewMockEngine(s.ctrl)
	s.mockSettings = settingsmock.NewMockStore(s.ctrl)
	s.mockNotifier = notifymock.NewMockNotifier(s.ctrl)
	s.mockClient = rollingmock.NewMockClient(s.ctrl)
	s.bus = events.NewBus()
	s.ctx = context.Background()
	s.room = &entities.Room{Slug: "table-1"}
	s.themes = entities.ThemeSelection{
		Default: &entities.Theme{ID: "gold"},
		PlotDie: &entities.Theme{ID: "plot", DieTypes: []string{"dpl"}},
	}

	orch, err := dispatch.NewOrchestrator(&dispatch.Config{
		Engine:        s.mockEngine,
		Settings:      s.mockSettings,
		Notifier:      s.mockNotifier,
		EventBus:      s.bus,
		IDGenerator:   idgen.NewSequential("roll"),
		ReadyInterval: time.Millisecond,
		ReadyAttempts: 3,
	})
	s.Require().NoError(err)
	s.orchestrator = orch
}

func (s *DispatchTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DispatchTestSuite) system(id entities.GameSystem) *systems.GameSystemConfig {
	for _, sys := range systems.DefaultSystems() {
		if sys.ID == id {
			return sys
		}
	}
	s.FailNow("unknown system", string(id))
	return nil
}

func (s *DispatchTestSuite) raw(data string) systems.RawRoll {
	roll, err := systems.ParseRawRoll([]byte(data))
	s.Require().NoError(err)
	return roll
}

func (s *DispatchTestSuite) expectReadyEngine() {
	mocks.ExpectConnectedEngine(s.mockEngine, s.mockClient)
	mocks.ExpectRoomSelection(s.mockSettings, s.room, s.themes)
}

func (s *DispatchTestSuite) TestNewOrchestratorValidation() {
	_, err := dispatch.NewOrchestrator(&dispatch.Config{})
	s.Require().Error(err)
	s.Contains(err.Error(), "Engine")
	s.Contains(err.Error(), "Notifier")
	s.Contains(err.Error(), "IDGenerator")
}

func (s *DispatchTestSuite) TestRequiresSystem() {
	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *DispatchTestSuite) TestNotInitialized() {
	s.mockEngine.EXPECT().Initialized().Return(false)
	s.mockNotifier.EXPECT().Error(gomock.Any(), dispatch.MessageNotInitialized)

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *DispatchTestSuite) TestNoRoomSelected() {
	s.mockEngine.EXPECT().Initialized().Return(true)
	s.mockSettings.EXPECT().Room(gomock.Any()).Return(nil, nil)
	s.mockNotifier.EXPECT().Error(gomock.Any(), dispatch.MessageNoRoom)

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *DispatchTestSuite) TestSubmitsSingleRoll() {
	s.expectReadyEngine()
	s.mockClient.EXPECT().CreateRoll(gomock.Any(), &rolling.CreateRollInput{
		RoomSlug: "table-1",
		Label:    "Roll",
		Dice: []entities.NormalizedDie{
			{Type: "d20", Value: 3, Theme: "gold", Label: "Fear"},
			{Type: "mod", Value: 2, Theme: "gold"},
		},
		Operator: entities.Operator{Invert: []int{0}},
	}).Return(&entities.Roll{UUID: "r-1", Total: -1}, nil)
	s.mockNotifier.EXPECT().Info(gomock.Any(), "Roll: -1")

	var created []string
	s.bus.SubscribeFunc(dispatch.EventRollCreated, 0, func(_ context.Context, e events.Event) error {
		label, _ := e.Context().Get(dispatch.ContextLabel)
		created = append(created, label.(string))
		return nil
	})

	out, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.Require().NoError(err)
	s.Equal("roll_1", out.CorrelationID)
	s.Require().Len(out.Rolls, 1)
	s.Equal("r-1", out.Rolls[0].UUID)
	s.Equal([]string{"Roll"}, created)
}

func (s *DispatchTestSuite) TestSplitsCosmereRollInOrder() {
	s.expectReadyEngine()

	var labels []string
	record := func(_ context.Context, in *rolling.CreateRollInput) (*entities.Roll, error) {
		labels = append(labels, in.Label)
		return &entities.Roll{UUID: in.Label, Total: 1}, nil
	}

	gomock.InOrder(
		s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, in *rolling.CreateRollInput) (*entities.Roll, error) {
				s.Equal(entities.KeepHighestOne, in.Operator.Keep)
				s.Len(in.Dice, 3)
				return record(ctx, in)
			}),
		s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, in *rolling.CreateRollInput) (*entities.Roll, error) {
				s.True(in.Operator.IsEmpty())
				return record(ctx, in)
			}),
		s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, in *rolling.CreateRollInput) (*entities.Roll, error) {
				s.Require().Len(in.Dice, 1)
				s.Equal("dpl", in.Dice[0].Type)
				s.Equal("plot", in.Dice[0].Theme)
				return record(ctx, in)
			}),
	)
	s.mockNotifier.EXPECT().Info(gomock.Any(), gomock.Any()).Times(3)

	out, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemCosmereRPG),
		Raw:    s.raw(strikeRoll),
	})
	s.Require().NoError(err)
	s.Len(out.Rolls, 3)
	s.Equal([]string{
		"Strike: Longsword",
		"Strike: Longsword: Damage",
		"Strike: Longsword: Plot Die Complication",
	}, labels)
}

func (s *DispatchTestSuite) TestSplitFailureKeepsEarlierRolls() {
	s.expectReadyEngine()
	gomock.InOrder(
		s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).Return(&entities.Roll{UUID: "r-1"}, nil),
		s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).
			Return(nil, errors.Remote(errors.CodeInvalidArgument, "Invalid dice")),
	)
	s.mockNotifier.EXPECT().Info(gomock.Any(), gomock.Any())
	s.mockNotifier.EXPECT().Error(gomock.Any(), "Invalid dice")

	var failed int
	s.bus.SubscribeFunc(dispatch.EventRollFailed, 0, func(context.Context, events.Event) error {
		failed++
		return nil
	})

	out, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemCosmereRPG),
		Raw:    s.raw(strikeRoll),
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Require().NotNil(out)
	s.Len(out.Rolls, 1)
	s.Equal(1, failed)
}

func (s *DispatchTestSuite) TestConnectionFailureReconnects() {
	s.expectReadyEngine()
	s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("rolling service unreachable"))
	s.mockNotifier.EXPECT().Error(gomock.Any(), "rolling service unreachable")
	s.mockEngine.EXPECT().Reconnect(gomock.Any()).Return(nil)

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.True(errors.IsUnavailable(err))
}

func (s *DispatchTestSuite) TestWaitsForReadyEngine() {
	s.mockEngine.EXPECT().Initialized().Return(true)
	s.mockSettings.EXPECT().Room(gomock.Any()).Return(s.room, nil)
	s.mockSettings.EXPECT().Themes(gomock.Any()).Return(s.themes, nil)
	gomock.InOrder(
		s.mockEngine.EXPECT().Ready().Return(false),
		s.mockEngine.EXPECT().Ready().Return(true),
	)
	s.mockEngine.EXPECT().Client().Return(s.mockClient)
	s.mockClient.EXPECT().CreateRoll(gomock.Any(), gomock.Any()).Return(&entities.Roll{UUID: "r-1"}, nil)
	s.mockNotifier.EXPECT().Info(gomock.Any(), gomock.Any())

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.NoError(err)
}

func (s *DispatchTestSuite) TestReadyTimeout() {
	s.mockEngine.EXPECT().Initialized().Return(true)
	s.mockSettings.EXPECT().Room(gomock.Any()).Return(s.room, nil)
	s.mockSettings.EXPECT().Themes(gomock.Any()).Return(s.themes, nil)
	s.mockEngine.EXPECT().Ready().Return(false).Times(4)
	s.mockNotifier.EXPECT().Error(gomock.Any(), dispatch.MessageNotReady)

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(fearRoll),
	})
	s.True(errors.IsDeadlineExceeded(err))
}

func (s *DispatchTestSuite) TestPreprocessedRollBypassesAdapter() {
	s.expectReadyEngine()
	s.mockClient.EXPECT().CreateRoll(gomock.Any(), &rolling.CreateRollInput{
		RoomSlug: "table-1",
		Label:    "Dexterity + Athletics",
		Dice: []entities.NormalizedDie{
			{Type: "d10", Value: 7, Theme: "gold"},
			{Type: "d10", Value: 10, Theme: "gold", Label: "Hunger"},
		},
	}).Return(&entities.Roll{UUID: "r-1", Total: 17}, nil)
	s.mockNotifier.EXPECT().Info(gomock.Any(), "Dexterity + Athletics: 17")

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemVampire5e),
		Processed: &systems.ProcessedRoll{Dice: []entities.NormalizedDie{
			{Type: "d10", Value: 7},
			{Type: "d10", Value: 10, Label: "Hunger"},
		}},
		Label: "Dexterity + Athletics",
	})
	s.NoError(err)
}

func (s *DispatchTestSuite) TestEmptyRollIsSkipped() {
	s.mockEngine.EXPECT().Initialized().Return(true)
	s.mockSettings.EXPECT().Room(gomock.Any()).Return(s.room, nil)
	s.mockSettings.EXPECT().Themes(gomock.Any()).Return(s.themes, nil)

	_, err := s.orchestrator.SubmitRoll(s.ctx, &dispatch.SubmitRollInput{
		System: s.system(entities.GameSystemGeneric),
		Raw:    s.raw(`{"name":"Nothing"}`),
	})
	s.True(errors.IsInvalidArgument(err))
}

func TestDispatchTestSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}
