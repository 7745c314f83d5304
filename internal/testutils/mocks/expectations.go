// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"go.uber.org/mock/gomock"

	rollingmock "github.com/KirkDiggler/dice-bridge/internal/clients/rolling/mock"
	enginemock "github.com/KirkDiggler/dice-bridge/internal/engine/mock"
	"github.com/KirkDiggler/dice-bridge/internal/entities"
	settingsmock "github.com/KirkDiggler/dice-bridge/internal/repositories/settings/mock"
)

// ExpectConnectedEngine sets up one submission's worth of engine checks on
// an engine that is initialized, ready and holds client
func ExpectConnectedEngine(mockEngine *enginemock.MockEngine, client *rollingmock.MockClient) {
	mockEngine.EXPECT().Initialized().Return(true)
	mockEngine.EXPECT().Ready().Return(true)
	mockEngine.EXPECT().Client().Return(client)
}

// ExpectRoomSelection sets up the settings reads a submission makes
func ExpectRoomSelection(mockSettings *settingsmock.MockStore, room *entities.Room, themes entities.ThemeSelection) {
	mockSettings.EXPECT().Room(gomock.Any()).Return(room, nil)
	mockSettings.EXPECT().Themes(gomock.Any()).Return(themes, nil)
}
