package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks every configuration rejected before a run starts.
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError names the offending field of a rejected SimulationConfig.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
