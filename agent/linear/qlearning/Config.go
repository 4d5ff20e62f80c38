package qlearning

import (
	"fmt"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/utils/matutils/initializers/weights"
)

// Default hyperparameters for the Config
const (
	DefaultLearningRate = 0.01
	DefaultGamma        = 0.99
	DefaultEpsilon      = 0.1
	DefaultEpsilonDecay = 0.995
	DefaultEpsilonMin   = 0.01
	DefaultMaxDelta     = 100.0
)

// Config represents a configuration for the QLearning agent
type Config struct {
	// LearningRate scales each temporal-difference update
	LearningRate float64

	// Gamma is the discount factor, in (0, 1]
	Gamma float64

	// Epsilon is the initial exploration rate of the behaviour policy
	Epsilon float64

	// EpsilonDecay multiplies Epsilon after every episode
	EpsilonDecay float64

	// EpsilonMin is the floor Epsilon decays toward
	EpsilonMin float64

	// MaxDelta bounds the magnitude of the temporal-difference error
	// used in each update. Unbounded TD errors can make the linear
	// weights diverge; the exact bound is a tuning concern.
	MaxDelta float64
}

// NewConfig returns a Config holding the documented default
// hyperparameters
func NewConfig() Config {
	return Config{
		LearningRate: DefaultLearningRate,
		Gamma:        DefaultGamma,
		Epsilon:      DefaultEpsilon,
		EpsilonDecay: DefaultEpsilonDecay,
		EpsilonMin:   DefaultEpsilonMin,
		MaxDelta:     DefaultMaxDelta,
	}
}

// CreateAgent creates the agent from the Config. Agent weights are
// always initialized to zero using this function. To initialize from
// some other distribution, use the agent's constructor manually.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {

	// Create the zero weight initializer
	rand := weights.NewZeroUV() // Zero RNG
	init := weights.NewLinearUV(rand)

	return New(env, c, init, seed)
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v",
			c.LearningRate)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0, 1], got %v", c.Gamma)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], got %v", c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("epsilon decay must be in (0, 1], got %v",
			c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("epsilon min must be in [0, epsilon], got %v",
			c.EpsilonMin)
	}
	if c.MaxDelta <= 0 {
		return fmt.Errorf("max delta must be positive, got %v", c.MaxDelta)
	}
	return nil
}
