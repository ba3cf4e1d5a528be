package hass

import (
	"strings"

	"github.com/danmuck/pdegbridge/internal/protocol/command"
)

const (
	DomainLight         = "light"
	DomainSwitch        = "switch"
	DomainHomeAssistant = "homeassistant"

	ServiceTurnOn  = "turn_on"
	ServiceTurnOff = "turn_off"

	FieldEntityID   = "entity_id"
	FieldBrightness = "brightness"
)

// ServiceCall is one hub service invocation.
type ServiceCall struct {
	Domain  string         `json:"domain"`
	Service string         `json:"service"`
	Payload map[string]any `json:"payload"`
}

// Path is the REST path of the call below the hub base url.
func (c ServiceCall) Path() string {
	return "/api/services/" + c.Domain + "/" + c.Service
}

// EntityDomain returns the domain of a "<domain>.<name>" entity reference.
// Exactly one '.' with text on both sides is accepted.
func EntityDomain(entity string) (string, error) {
	dom, rest, ok := strings.Cut(entity, ".")
	if !ok || dom == "" || rest == "" || strings.Contains(rest, ".") {
		return "", &DomainError{Entity: entity}
	}
	return dom, nil
}

// Map turns a parsed command into the hub service call it drives.
// Lights take brightness on turn_on, switches ignore it and every other
// domain goes through the generic homeassistant service.
func Map(cmd command.Command) (ServiceCall, error) {
	dom, err := EntityDomain(cmd.Entity)
	if err != nil {
		return ServiceCall{}, err
	}

	call := ServiceCall{
		Service: ServiceTurnOff,
		Payload: map[string]any{FieldEntityID: cmd.Entity},
	}
	if cmd.Action == command.ActionOn {
		call.Service = ServiceTurnOn
	}

	switch dom {
	case DomainLight:
		call.Domain = DomainLight
		if cmd.Action == command.ActionOn && cmd.Brightness != nil {
			call.Payload[FieldBrightness] = *cmd.Brightness
		}
	case DomainSwitch:
		call.Domain = DomainSwitch
	default:
		call.Domain = DomainHomeAssistant
	}
	return call, nil
}
