package hass

import (
	"errors"
	"fmt"
)

var (
	ErrDomain  = errors.New("hass: entity has no domain")
	ErrService = errors.New("hass: service call failed")
)

// DomainError rejects an entity reference without a "<domain>.<name>" shape.
type DomainError struct {
	Entity string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("hass: entity_id %q must include domain, e.g. 'light.shelly_bulb_1'", e.Entity)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// ServiceError reports a hub call that was rejected or never reached the hub.
type ServiceError struct {
	Kind       OutcomeKind
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("hass: %s: %s", e.Kind, e.Detail)
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}
