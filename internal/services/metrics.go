package services

// Metrics accumulates per-vehicle outcomes for a single run.
// It is written only by completed vehicles and read only after the horizon.
type Metrics struct {
	horizon     float64
	waitTimes   []float64
	completions int
	served      int
}

func NewMetrics(horizon float64) *Metrics {
	return &Metrics{horizon: horizon, waitTimes: make([]float64, 0, 512)}
}

// Record one vehicle that finished service after waiting wait seconds.
func (m *Metrics) Record(wait float64) {
	m.waitTimes = append(m.waitTimes, wait)
	m.completions++
	m.served++
}

func (m *Metrics) Served() int { return m.served }

// WaitTimes returns a copy of the recorded waits in completion order.
func (m *Metrics) WaitTimes() []float64 {
	out := make([]float64, len(m.waitTimes))
	copy(out, m.waitTimes)
	return out
}

type Summary struct {
	AvgWait        float64
	Throughput     float64
	VehiclesServed int
}

// Summarize derives the run summary. With no completions every field is zero.
func (m *Metrics) Summarize() Summary {
	if len(m.waitTimes) == 0 {
		return Summary{}
	}

	total := 0.0
	for _, w := range m.waitTimes {
		total += w
	}

	return Summary{
		AvgWait:        total / float64(len(m.waitTimes)),
		Throughput:     float64(m.completions) / m.horizon,
		VehiclesServed: m.served,
	}
}
