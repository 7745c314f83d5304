package systems_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

type AdapterTestSuite struct {
	suite.Suite
	base        systems.Adapter
	daggerheart systems.Adapter
	cosmere     systems.Adapter
	avatar      systems.Adapter
	pathfinder  systems.Adapter
	themes      entities.ThemeSelection
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

func (s *AdapterTestSuite) SetupTest() {
	s.base = adapterFor(s.T(), entities.GameSystemGeneric)
	s.daggerheart = adapterFor(s.T(), entities.GameSystemDaggerheart)
	s.cosmere = adapterFor(s.T(), entities.GameSystemCosmereRPG)
	s.avatar = adapterFor(s.T(), entities.GameSystemAvatarLegends)
	s.pathfinder = adapterFor(s.T(), entities.GameSystemPathfinder2e)
	s.themes = entities.ThemeSelection{
		Default: &entities.Theme{ID: "default-theme"},
		Hope:    &entities.Theme{ID: "hope-theme"},
		Fear:    &entities.Theme{ID: "fear-theme"},
	}
}

func (s *AdapterTestSuite) TestBaseNegativeDieBecomesInversion() {
	roll := mustRoll(s.T(), `{
		"dice":[{"die":"d20","value":-3,"config":{"name":"Fear"}}],
		"modifiersParsed":[{"purpose":"add","value":2}]
	}`)

	out := s.base.ProcessDice(roll)

	s.Assert().Equal([]entities.NormalizedDie{
		{Type: "d20", Value: 3, Label: "Fear"},
		{Type: "mod", Value: 2},
	}, out.Dice)
	s.Assert().Equal(entities.Operator{Invert: []int{0}}, out.Operator)
	s.Assert().Equal(`{"*":{"-1":[0]}}`, out.Operator.String())
	s.Assert().Nil(out.PlotDice)
}

func (s *AdapterTestSuite) TestBaseZeroModifierNeverMaterializes() {
	roll := mustRoll(s.T(), `{
		"dice":[{"die":"d6","value":4}],
		"modifiersParsed":[{"purpose":"add","value":0},{"purpose":"label","value":"Sneak"}]
	}`)

	out := s.base.ProcessDice(roll)
	s.Assert().Len(out.Dice, 1)
	s.Assert().True(out.Operator.IsEmpty())
}

func (s *AdapterTestSuite) TestBaseModDieKeepsSign() {
	roll := mustRoll(s.T(), `{"dice":[{"die":"d8","value":5},{"die":"mod","value":-2}]}`)

	out := s.base.ProcessDice(roll)
	s.Assert().Equal(-2, out.Dice[1].Value)
	s.Assert().Empty(out.Operator.Invert)
	s.Assert().Equal(3, out.Total())
}

func (s *AdapterTestSuite) TestBaseKeepQualifier() {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "highest",
			raw:      `{"dice":[{"die":"d20","value":4,"config":{"keep":"highest"}},{"die":"d20","value":15}]}`,
			expected: `{"k":"h1"}`,
		},
		{
			name:     "lowest with inversion",
			raw:      `{"dice":[{"die":"d20","value":4},{"die":"d20","value":15,"config":{"keep":"lowest"}},{"die":"d4","value":-2}]}`,
			expected: `{"*":{"-1":[2]},"k":"l1"}`,
		},
		{
			name:     "first qualifier wins",
			raw:      `{"dice":[{"die":"d20","value":4,"config":{"keep":"lowest"}},{"die":"d20","value":15,"config":{"keep":"highest"}}]}`,
			expected: `{"k":"l1"}`,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out := s.base.ProcessDice(mustRoll(s.T(), tc.raw))
			s.Assert().JSONEq(tc.expected, out.Operator.String())
		})
	}
}

func (s *AdapterTestSuite) TestBasePartsTakePrecedenceAndCarrySign() {
	roll := mustRoll(s.T(), `{
		"dice":[{"die":"d100","value":99}],
		"modifiersParsed":[{"purpose":"add","value":40}],
		"rawDice":{"parts":[
			{"type":"dice","die":"d20","value":[12]},
			{"type":"operator","value":"-"},
			{"type":"constant","value":1},
			{"type":"dice","die":"d4","value":[3]},
			{"type":"operator","value":"+"},
			{"type":"constant","value":5}
		]}
	}`)

	out := s.base.ProcessDice(roll)

	s.Assert().Equal([]entities.NormalizedDie{
		{Type: "d20", Value: 12},
		{Type: "d4", Value: 3},
		{Type: "mod", Value: 4},
	}, out.Dice)
	s.Assert().Equal([]int{1}, out.Operator.Invert)
	s.Assert().Equal(13, out.Total())
}

func (s *AdapterTestSuite) TestBaseMalformedRecordsYieldNoDice() {
	testCases := map[string]string{
		"no dice":          `{"name":"x"}`,
		"dice not array":   `{"dice":"nope"}`,
		"entry not object": `{"dice":[1,2,"d6"]}`,
		"missing die code": `{"dice":[{"value":3}]}`,
		"empty parts":      `{"rawDice":{"parts":[]}}`,
	}

	for name, raw := range testCases {
		s.Run(name, func() {
			out := s.base.ProcessDice(mustRoll(s.T(), raw))
			s.Assert().Empty(out.Dice)
		})
	}

	s.Assert().Empty(s.base.ProcessDice(systems.RawRoll{}).Dice)
}

func (s *AdapterTestSuite) TestProcessDiceIsPure() {
	raw := `{
		"name":"Strike",
		"results":[
			{"slug":"main-d20-group","dice":[{"die":"d20","value":-7,"config":{"keep":"highest"}}],"modifiersParsed":[{"purpose":"add","value":3}]},
			{"slug":"damage-group","dice":[{"die":"d8","value":6}]},
			{"slug":"plot-die","dice":[{"die":"d6","value":5}]}
		]
	}`

	for _, adapter := range []systems.Adapter{s.base, s.daggerheart, s.cosmere, s.avatar, s.pathfinder} {
		roll := mustRoll(s.T(), raw)
		first := adapter.ProcessDice(roll)
		second := adapter.ProcessDice(roll)
		s.Assert().Equal(first, second)

		first.Dice = append(first.Dice, entities.NormalizedDie{Type: "d4"})
		s.Assert().NotEqual(first, adapter.ProcessDice(roll))
	}
}

func (s *AdapterTestSuite) TestRollName() {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"label annotation", `{"name":"Base","modifiersParsed":[{"purpose":"add","value":1},{"purpose":"label","value":"Sneak Attack"}]}`, "Sneak Attack"},
		{"empty label falls back", `{"name":"Base","modifiersParsed":[{"purpose":"label","value":"  "}]}`, "Base"},
		{"name only", `{"name":"Agility"}`, "Agility"},
		{"nothing", `{}`, "Roll"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.expected, s.base.RollName(mustRoll(s.T(), tc.raw)))
		})
	}
}

func (s *AdapterTestSuite) TestDaggerheartTypeResult() {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"status hope", `{"status":{"slug":"roll-with-hope"}}`, " with Hope"},
		{"status fear", `{"status":{"slug":"roll-with-fear"}}`, " with Fear"},
		{"status critical", `{"status":{"slug":"critical-success"}}`, " Critical Success"},
		{"faces hope higher", dualityRoll(9, 4), " with Hope"},
		{"faces fear higher", dualityRoll(2, 11), " with Fear"},
		{"faces equal", dualityRoll(6, 6), " Critical Success"},
		{"no duality dice", `{"dice":[{"die":"d20","value":5}]}`, ""},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.expected, s.daggerheart.TypeResult(mustRoll(s.T(), tc.raw)))
		})
	}
}

func (s *AdapterTestSuite) TestDaggerheartHopeTheme() {
	roll := mustRoll(s.T(), `{
		"name":"Agility",
		"dice":[{"die":"d12","value":8,"config":{"name":"Hope"}},{"die":"d12","value":3,"config":{"name":"Fear"}},{"die":"d6","value":2}],
		"status":{"slug":"roll-with-hope"}
	}`)

	themed := systems.AssignThemes(s.daggerheart, s.daggerheart.ProcessDice(roll), s.themes)

	s.Assert().Equal("hope-theme", themed.Dice[0].Theme)
	s.Assert().Equal("fear-theme", themed.Dice[1].Theme)
	s.Assert().Equal("default-theme", themed.Dice[2].Theme)
	s.Assert().Equal("Agility with Hope", systems.RollLabel(s.daggerheart, roll))
}

func (s *AdapterTestSuite) TestDaggerheartThemeFallsBackToDefault() {
	themes := entities.ThemeSelection{Default: &entities.Theme{ID: "default-theme"}}
	die := entities.NormalizedDie{Type: "d12", Label: "Hope"}
	s.Assert().Equal("default-theme", s.daggerheart.ThemeFor(die, themes))
}

func (s *AdapterTestSuite) TestAvatarHitTiers() {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"strong hit", `{"total":11}`, " (Strong Hit)"},
		{"weak hit upper bound", `{"total":10}`, " (Weak Hit)"},
		{"weak hit lower bound", `{"total":8}`, " (Weak Hit)"},
		{"miss", `{"total":7}`, " (Miss)"},
		{"computed total", `{"dice":[{"die":"d6","value":6},{"die":"d6","value":5}],"modifiersParsed":[{"purpose":"add","value":-1}]}`, " (Weak Hit)"},
		{"computed with inversion", `{"dice":[{"die":"d6","value":6},{"die":"d6","value":6},{"die":"d6","value":-1}]}`, " (Strong Hit)"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.expected, s.avatar.TypeResult(mustRoll(s.T(), tc.raw)))
		})
	}
}

func (s *AdapterTestSuite) TestPathfinderCrits() {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{"natural 20", `{"dice":[{"die":"d20","value":20}]}`, " Critical Success"},
		{"natural 1", `{"dice":[{"die":"d20","value":1}]}`, " Critical Failure"},
		{"ordinary", `{"dice":[{"die":"d20","value":11}]}`, ""},
		{"keep highest picks 20", `{"dice":[{"die":"d20","value":1,"config":{"keep":"highest"}},{"die":"d20","value":20}]}`, " Critical Success"},
		{"keep lowest picks 1", `{"dice":[{"die":"d20","value":20,"config":{"keep":"lowest"}},{"die":"d20","value":1}]}`, " Critical Failure"},
		{"no d20", `{"dice":[{"die":"d6","value":1}]}`, ""},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Assert().Equal(tc.expected, s.pathfinder.TypeResult(mustRoll(s.T(), tc.raw)))
		})
	}
}

func dualityRoll(hope, fear int) string {
	return `{"dice":[` +
		`{"die":"d12","value":` + itoa(hope) + `,"config":{"name":"Hope"}},` +
		`{"die":"d12","value":` + itoa(fear) + `,"config":{"name":"Fear"}}]}`
}
