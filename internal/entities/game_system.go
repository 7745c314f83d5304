package entities

// GameSystem identifies the host page's game system
type GameSystem string

// Known game systems
const (
	GameSystemDaggerheart   GameSystem = "DAGGERHEART"
	GameSystemCosmereRPG    GameSystem = "COSMERERPG"
	GameSystemAvatarLegends GameSystem = "AVATARLEGENDS"
	GameSystemPathfinder2e  GameSystem = "PATHFINDER2E"
	GameSystemVampire5e     GameSystem = "VAMPIRE5E"
	GameSystemPathbuilder2e GameSystem = "PATHBUILDER2E"
	GameSystemGeneric       GameSystem = "GENERIC"
	GameSystemUnknown       GameSystem = "UNKNOWN"
)

// String returns the identifier
func (g GameSystem) String() string {
	return string(g)
}
