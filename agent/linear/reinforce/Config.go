package reinforce

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/utils/matutils/initializers/weights"
)

// Default hyperparameters for the Config
const (
	DefaultLearningRate  = 0.001
	DefaultGamma         = 0.99
	DefaultBaselineDecay = 0.9

	// initStdDev is the standard deviation of the small random values
	// the policy weights are initialized with under CreateAgent
	initStdDev = 0.01
)

// Config represents a configuration for the REINFORCE agent
type Config struct {
	// LearningRate scales each policy-gradient ascent step
	LearningRate float64

	// Gamma is the discount factor applied when computing per-step
	// returns, in (0, 1]
	Gamma float64

	// BaselineDecay controls the exponential moving average of
	// episode returns used as the variance-reduction baseline, in
	// [0, 1). Larger values average over more episodes.
	BaselineDecay float64
}

// NewConfig returns a Config holding the documented default
// hyperparameters
func NewConfig() Config {
	return Config{
		LearningRate:  DefaultLearningRate,
		Gamma:         DefaultGamma,
		BaselineDecay: DefaultBaselineDecay,
	}
}

// CreateAgent creates the agent from the Config. Policy weights are
// initialized with small zero-mean Gaussian values so that the initial
// softmax policy is near-uniform without being exactly symmetric.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {

	dist := distuv.Normal{
		Mu:    0,
		Sigma: initStdDev,
		Src:   rand.NewSource(seed),
	}
	init := weights.NewLinearUV(dist)

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
	if c.BaselineDecay < 0 || c.BaselineDecay >= 1 {
		return fmt.Errorf("baseline decay must be in [0, 1), got %v",
			c.BaselineDecay)
	}
	return nil
}
