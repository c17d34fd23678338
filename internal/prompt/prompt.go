package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"traffic-signal-sim/internal/domain"
)

// ErrAborted is returned when input ends before a session completes.
var ErrAborted = errors.New("prompt: input ended")

// Session asks for experiment parameters line by line, re-asking until
// each answer is valid.
type Session struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewScanner(in), out: out}
}

func (s *Session) ask(question string) (string, error) {
	if _, err := fmt.Fprint(s.out, question); err != nil {
		return "", fmt.Errorf("prompt: write: %w", err)
	}
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("prompt: read: %w", err)
		}
		return "", ErrAborted
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Session) warn(msg string) {
	fmt.Fprintln(s.out, "⚠️ "+msg)
}

func (s *Session) positiveFloat(question string) (float64, error) {
	for {
		line, err := s.ask(question)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(line, 64)
		if err == nil && v > 0 && !math.IsInf(v, 0) {
			return v, nil
		}
		s.warn("Enter a positive number!")
	}
}

// Experiments runs a full session: the experiment count, then the
// parameters of every experiment.
func (s *Session) Experiments() ([]domain.SimulationConfig, error) {
	var n int
	for {
		line, err := s.ask("Enter number of experiments to run: ")
		if err != nil {
			return nil, err
		}
		n, err = strconv.Atoi(line)
		if err == nil && n > 0 {
			break
		}
		s.warn("Enter a positive whole number!")
	}

	cfgs := make([]domain.SimulationConfig, 0, n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(s.out, "\nExperiment %d:\n", i+1)

		cfg, err := s.Experiment()
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i+1, err)
		}
		cfgs = append(cfgs, cfg)
	}

	return cfgs, nil
}

// Experiment asks for the parameters of a single experiment.
func (s *Session) Experiment() (domain.SimulationConfig, error) {
	var cfg domain.SimulationConfig
	var err error

	cfg.ArrivalMean, err = s.positiveFloat("Enter vehicle arrival rate (seconds between arrivals, e.g., 10): ")
	if err != nil {
		return cfg, err
	}

	cfg.ServiceMean, err = s.positiveFloat("Enter average service time (seconds per vehicle, e.g., 5): ")
	if err != nil {
		return cfg, err
	}

	for {
		line, err := s.ask("Enter number of lanes (1–3): ")
		if err != nil {
			return cfg, err
		}
		c, err := strconv.Atoi(line)
		if err == nil && c >= domain.MinCapacity && c <= domain.MaxCapacity {
			cfg.Capacity = c
			break
		}
		s.warn("Enter 1, 2, or 3!")
	}

	for {
		line, err := s.ask("Enter strategy (Fixed/Adaptive): ")
		if err != nil {
			return cfg, err
		}
		st, err := domain.ParseStrategy(line)
		if err == nil {
			cfg.Strategy = st
			break
		}
		s.warn("Strategy must be 'Fixed' or 'Adaptive'!")
	}

	return cfg, nil
}
