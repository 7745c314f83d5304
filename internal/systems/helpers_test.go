package systems_test

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/dice-bridge/internal/entities"
	settingsmock "github.com/KirkDiggler/dice-bridge/internal/repositories/settings/mock"
	"github.com/KirkDiggler/dice-bridge/internal/systems"
)

func mustRoll(t *testing.T, raw string) systems.RawRoll {
	t.Helper()
	roll, err := systems.ParseRawRoll([]byte(raw))
	require.NoError(t, err)
	return roll
}

func adapterFor(t *testing.T, id entities.GameSystem) systems.Adapter {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := settingsmock.NewMockStore(ctrl)
	store.EXPECT().SetGameSystem(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	registry, err := systems.NewRegistry(&systems.RegistryConfig{Settings: store})
	require.NoError(t, err)
	return registry.Adapter(id)
}

func sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// scriptedRoller returns queued faces in order
type scriptedRoller struct {
	faces []int
}

func (r *scriptedRoller) Roll(size int) (int, error) {
	if len(r.faces) == 0 {
		return size, nil
	}
	face := r.faces[0]
	r.faces = r.faces[1:]
	return face, nil
}

func (r *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		face, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out = append(out, face)
	}
	return out, nil
}
