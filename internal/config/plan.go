package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"traffic-signal-sim/internal/domain"

	"gopkg.in/yaml.v3"
)

// Plan is a batch of experiments described in YAML.
type Plan struct {
	Experiments []PlanExperiment `yaml:"experiments"`
}

type PlanExperiment struct {
	ArrivalMean float64         `yaml:"arrival_mean"`
	ServiceMean float64         `yaml:"service_mean"`
	Capacity    int             `yaml:"capacity"`
	Strategy    domain.Strategy `yaml:"strategy"`
	Seed        uint64          `yaml:"seed"`
}

// Configs converts the plan into validated simulation configs.
func (p Plan) Configs() ([]domain.SimulationConfig, error) {
	out := make([]domain.SimulationConfig, 0, len(p.Experiments))
	for i, e := range p.Experiments {
		cfg := domain.SimulationConfig{
			ArrivalMean: e.ArrivalMean,
			ServiceMean: e.ServiceMean,
			Capacity:    e.Capacity,
			Strategy:    e.Strategy,
			Seed:        e.Seed,
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("plan experiment %d: %w", i+1, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// ParsePlan decodes a YAML plan, rejecting unknown fields.
func ParsePlan(r io.Reader) (Plan, error) {
	var p Plan

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Plan{}, errors.New("parse plan: document is empty")
		}
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}

	if len(p.Experiments) == 0 {
		return Plan{}, errors.New("parse plan: no experiments listed")
	}
	return p, nil
}

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(path string) ([]domain.SimulationConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: read %q: %w", path, err)
	}

	p, err := ParsePlan(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", path, err)
	}

	cfgs, err := p.Configs()
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", path, err)
	}
	return cfgs, nil
}
