package domain

import (
	"fmt"
	"strings"
)

// Strategy selects how the signal controller times service at the intersection.
type Strategy string

const (
	StrategyFixed    Strategy = "Fixed"
	StrategyAdaptive Strategy = "Adaptive"
)

// AdaptiveServiceFactor scales the mean service time under the Adaptive strategy.
const AdaptiveServiceFactor = 0.8

// ParseStrategy accepts any letter case ("adaptive", "FIXED").
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return StrategyFixed, nil
	case "adaptive":
		return StrategyAdaptive, nil
	}
	return "", &ConfigError{Field: "strategy", Value: s, Reason: "must be Fixed or Adaptive"}
}

func (s Strategy) Valid() bool {
	return s == StrategyFixed || s == StrategyAdaptive
}

func (s Strategy) String() string { return string(s) }

// Scale returns the effective service mean for this strategy.
func (s Strategy) Scale(serviceMean float64) float64 {
	if s == StrategyAdaptive {
		return serviceMean * AdaptiveServiceFactor
	}
	return serviceMean
}

// UnmarshalText lets strategies decode case-insensitively from JSON and YAML.
func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return fmt.Errorf("decode strategy: %w", err)
	}
	*s = parsed
	return nil
}
