package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution samples non-negative durations (service times, inter-arrival times).
// Every stage and every severity level owns one Distribution that can be
// swapped at runtime; tasks already scheduled keep the value they drew.
type Distribution interface {
	// Sample returns a non-negative real value.
	Sample() float64
	// Mean returns the expected value of Sample.
	Mean() float64
}

// Distribution kinds accepted by NewDistribution.
const (
	DistDeterministic = "deterministic"
	DistUniform       = "uniform"
	DistExponential   = "exponential"
)

// DeterministicDistribution always returns the same fixed value.
type DeterministicDistribution struct {
	value float64
}

// NewDeterministic returns a distribution that always samples value.
func NewDeterministic(value float64) (*DeterministicDistribution, error) {
	if !isFinite(value) || value < 0 {
		return nil, fmt.Errorf("deterministic value must be a non-negative number, got %v: %w", value, ErrInvalidParams)
	}
	return &DeterministicDistribution{value: value}, nil
}

func (d *DeterministicDistribution) Sample() float64 { return d.value }
func (d *DeterministicDistribution) Mean() float64   { return d.value }
func (d *DeterministicDistribution) String() string {
	return fmt.Sprintf("deterministic(%g)", d.value)
}

// UniformDistribution draws uniformly from [low, high].
type UniformDistribution struct {
	dist distuv.Uniform
}

// NewUniform returns a uniform distribution on [low, high] drawing from src.
func NewUniform(low, high float64, src rand.Source) (*UniformDistribution, error) {
	if !isFinite(low) || !isFinite(high) || low < 0 || high < 0 {
		return nil, fmt.Errorf("uniform bounds must be non-negative numbers, got [%v, %v]: %w", low, high, ErrInvalidParams)
	}
	if high < low {
		return nil, fmt.Errorf("uniform upper bound %v is below lower bound %v: %w", high, low, ErrInvalidParams)
	}
	return &UniformDistribution{dist: distuv.Uniform{Min: low, Max: high, Src: src}}, nil
}

func (u *UniformDistribution) Sample() float64 {
	if u.dist.Min == u.dist.Max {
		return u.dist.Min
	}
	return u.dist.Rand()
}

func (u *UniformDistribution) Mean() float64 { return u.dist.Mean() }
func (u *UniformDistribution) String() string {
	return fmt.Sprintf("uniform(%g, %g)", u.dist.Min, u.dist.Max)
}

// ExponentialDistribution draws from an exponential law with the given rate.
type ExponentialDistribution struct {
	dist distuv.Exponential
}

// NewExponential returns an exponential distribution of the given rate drawing from src.
func NewExponential(rate float64, src rand.Source) (*ExponentialDistribution, error) {
	if !isFinite(rate) || rate <= 0 {
		return nil, fmt.Errorf("exponential rate must be positive, got %v: %w", rate, ErrInvalidParams)
	}
	return &ExponentialDistribution{dist: distuv.Exponential{Rate: rate, Src: src}}, nil
}

func (e *ExponentialDistribution) Sample() float64 { return e.dist.Rand() }
func (e *ExponentialDistribution) Mean() float64   { return e.dist.Mean() }
func (e *ExponentialDistribution) String() string {
	return fmt.Sprintf("exponential(%g)", e.dist.Rate)
}

// DistSpec is the primitive form of a distribution, as found in scenario
// files and command arguments.
type DistSpec struct {
	Type   string    `yaml:"type"`
	Params []float64 `yaml:"params"`
}

// NewDistribution builds a Distribution from a kind name and positional parameters:
//
//	deterministic <value>
//	uniform <high> | uniform <low> <high>
//	exponential <rate>
//
// Kind names are case-insensitive. Errors wrap ErrInvalidParams.
func NewDistribution(kind string, params []float64, src rand.Source) (Distribution, error) {
	switch strings.ToLower(kind) {
	case DistDeterministic:
		if len(params) != 1 {
			return nil, fmt.Errorf("deterministic distribution takes 1 parameter, got %d: %w", len(params), ErrInvalidParams)
		}
		return NewDeterministic(params[0])
	case DistUniform:
		switch len(params) {
		case 1:
			return NewUniform(0, params[0], src)
		case 2:
			return NewUniform(params[0], params[1], src)
		default:
			return nil, fmt.Errorf("uniform distribution takes 1 or 2 parameters, got %d: %w", len(params), ErrInvalidParams)
		}
	case DistExponential:
		if len(params) != 1 {
			return nil, fmt.Errorf("exponential distribution takes 1 parameter, got %d: %w", len(params), ErrInvalidParams)
		}
		return NewExponential(params[0], src)
	default:
		return nil, fmt.Errorf("unknown distribution type %q: %w", kind, ErrInvalidParams)
	}
}

// Build creates the Distribution described by s.
func (s DistSpec) Build(src rand.Source) (Distribution, error) {
	return NewDistribution(s.Type, s.Params, src)
}

// describeDistribution renders a distribution for snapshots.
func describeDistribution(d Distribution) string {
	if d == nil {
		return "none"
	}
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T(mean=%g)", d, d.Mean())
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
