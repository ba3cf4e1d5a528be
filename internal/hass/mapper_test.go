package hass

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/pdegbridge/internal/protocol/command"
)

func bri(v int) *int { return &v }

func TestMapLightOnWithBrightness(t *testing.T) {
	call, err := Map(command.Command{Entity: "light.bulb1", Action: command.ActionOn, Brightness: bri(200)})
	require.NoError(t, err)
	assert.Equal(t, DomainLight, call.Domain)
	assert.Equal(t, ServiceTurnOn, call.Service)
	assert.Equal(t, map[string]any{"entity_id": "light.bulb1", "brightness": 200}, call.Payload)
	assert.Equal(t, "/api/services/light/turn_on", call.Path())
}

func TestMapLightWithoutBrightness(t *testing.T) {
	call, err := Map(command.Command{Entity: "light.bulb1", Action: command.ActionOn})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"entity_id": "light.bulb1"}, call.Payload)

	call, err = Map(command.Command{Entity: "light.bulb1", Action: command.ActionOff, Brightness: bri(10)})
	require.NoError(t, err)
	assert.Equal(t, ServiceTurnOff, call.Service)
	assert.NotContains(t, call.Payload, FieldBrightness)
}

func TestMapSwitchOff(t *testing.T) {
	call, err := Map(command.Command{Entity: "switch.fan1", Action: command.ActionOff})
	require.NoError(t, err)
	assert.Equal(t, DomainSwitch, call.Domain)
	assert.Equal(t, ServiceTurnOff, call.Service)
	assert.Equal(t, map[string]any{"entity_id": "switch.fan1"}, call.Payload)
}

func TestMapSwitchIgnoresBrightness(t *testing.T) {
	call, err := Map(command.Command{Entity: "switch.fan1", Action: command.ActionOn, Brightness: bri(99)})
	require.NoError(t, err)
	assert.Equal(t, ServiceTurnOn, call.Service)
	assert.NotContains(t, call.Payload, FieldBrightness)
}

func TestMapFallsBackToHomeAssistant(t *testing.T) {
	call, err := Map(command.Command{Entity: "fan.x", Action: command.ActionOn, Brightness: bri(50)})
	require.NoError(t, err)
	assert.Equal(t, DomainHomeAssistant, call.Domain)
	assert.Equal(t, ServiceTurnOn, call.Service)
	assert.Equal(t, map[string]any{"entity_id": "fan.x"}, call.Payload)
}

func TestMapRejectsEntityWithoutDomain(t *testing.T) {
	for _, entity := range []string{"noseparator", ".bulb", "light.", ""} {
		_, err := Map(command.Command{Entity: entity, Action: command.ActionOn})
		require.Error(t, err, "entity=%q", entity)
		assert.True(t, errors.Is(err, ErrDomain), "entity=%q", entity)

		var derr *DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, entity, derr.Entity)
	}
}

func TestEntityDomainRejectsExtraSeparators(t *testing.T) {
	_, err := EntityDomain("light.hall.ceiling")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomain)

	dom, err := EntityDomain("light.hall_ceiling")
	require.NoError(t, err)
	assert.Equal(t, "light", dom)
}
