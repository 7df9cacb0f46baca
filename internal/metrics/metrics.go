package metrics

import "math"

// Metric observes per-timestep scalars from a run and reduces them to a
// single reported value.
type Metric interface {
	Name() string
	Observe(step int, energy, virialTrace float64)
	Value() float64
	Reset()
}

// MeanEnergy reports the average total potential energy over the run.
type MeanEnergy struct {
	samples int
	total   float64
}

func NewMeanEnergy() *MeanEnergy { return &MeanEnergy{} }

func (m *MeanEnergy) Name() string { return "mean_energy" }

func (m *MeanEnergy) Observe(step int, energy, virialTrace float64) {
	m.total += energy
	m.samples++
}

func (m *MeanEnergy) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanEnergy) Reset() {
	m.total = 0
	m.samples = 0
}

// EnergyDrift reports the maximum relative deviation of the total energy
// from its first observed value.
type EnergyDrift struct {
	samples  int
	initial  float64
	maxDrift float64
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(step int, energy, virialTrace float64) {
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.samples = 0
	e.initial = 0
	e.maxDrift = 0
}

// Pressure reports the mean virial-trace pressure proxy tr(W)/(3V).
type Pressure struct {
	volume  float64
	samples int
	total   float64
}

func NewPressure(volume float64) *Pressure { return &Pressure{volume: volume} }

func (p *Pressure) Name() string { return "pressure" }

func (p *Pressure) Observe(step int, energy, virialTrace float64) {
	if p.volume > 0 {
		p.total += virialTrace / (3.0 * p.volume)
		p.samples++
	}
}

func (p *Pressure) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.total / float64(p.samples)
}

func (p *Pressure) Reset() {
	p.total = 0
	p.samples = 0
}
