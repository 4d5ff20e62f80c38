// Package reinforce implements the Monte-Carlo policy-gradient
// (REINFORCE) algorithm with a linear softmax policy.
//
// Transitions are buffered during the episode. When the terminal
// transition arrives, the discounted return at each step is computed,
// a running baseline is subtracted to reduce gradient variance, and a
// single policy-gradient ascent step is applied over the whole
// episode. The baseline is an exponential moving average of episode
// returns, updated after each episode.
package reinforce

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/agent/linear/policy"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/utils/matutils/initializers/weights"
)

// REINFORCE implements the Monte-Carlo policy-gradient algorithm
type REINFORCE struct {
	*policy.Softmax
	weights *mat.Dense
	config  Config
	seed    uint64

	buffer       []timestep.Transition
	baseline     float64
	baselineSet  bool
	lastReturn   float64
	episodeEnded bool
}

// New creates a new REINFORCE agent on the argument environment. The
// init argument determines how the policy weights are initialized.
func New(env environment.Environment, config Config,
	init weights.Initializer, seed uint64) (*REINFORCE, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("reinforce: invalid config: %w", err)
	}

	pol, err := policy.NewSoftmax(seed, env)
	if err != nil {
		return nil, fmt.Errorf("reinforce: %w", err)
	}

	w := pol.Weights()[policy.WeightsKey]
	init.Initialize(w)

	return &REINFORCE{
		Softmax: pol,
		weights: w,
		config:  config,
		seed:    seed,
	}, nil
}

// Learn buffers the argument transition. When the transition is
// terminal the buffered episode is consumed by a single policy-gradient
// update and the buffer is cleared.
func (r *REINFORCE) Learn(t timestep.Transition) error {
	numActions, features := r.weights.Dims()
	if t.State.Len() != features {
		return fmt.Errorf("reinforce: feature vector length mismatch: "+
			"want %d, have %d", features, t.State.Len())
	}
	if t.Action < 0 || t.Action >= numActions {
		return fmt.Errorf("reinforce: action %d outside action space of "+
			"size %d", t.Action, numActions)
	}

	r.buffer = append(r.buffer, t)

	if t.Terminal {
		r.update()
		r.buffer = r.buffer[:0]
		r.episodeEnded = true
	}
	return nil
}

// update applies the episode's policy-gradient ascent step
func (r *REINFORCE) update() {
	if len(r.buffer) == 0 {
		return
	}

	// Discounted return at each step, computed backwards
	returns := make([]float64, len(r.buffer))
	g := 0.0
	for i := len(r.buffer) - 1; i >= 0; i-- {
		g = r.buffer[i].Reward + r.config.Gamma*g
		returns[i] = g
	}
	r.lastReturn = returns[0]

	baseline := r.baseline
	if !r.baselineSet {
		// No history yet; a zero baseline would make the first
		// episode's advantage its raw return
		baseline = 0
	}

	numActions, _ := r.weights.Dims()
	for i, t := range r.buffer {
		adv := returns[i] - baseline
		probs := r.Probabilities(t.State)

		// ∇ log π(a|s) for a linear softmax policy is
		// (1{a} - π(·|s)) ⊗ s; ascend along adv * ∇ log π
		for a := 0; a < numActions; a++ {
			coeff := -probs[a]
			if a == t.Action {
				coeff++
			}

			row := r.weights.RowView(a)
			newRow := mat.NewVecDense(row.Len(), nil)
			newRow.AddScaledVec(row, r.config.LearningRate*adv*coeff, t.State)
			r.weights.SetRow(a, mat.Col(nil, 0, newRow))
		}
	}
}

// EndEpisode folds the just-completed episode's total return into the
// exponential moving average baseline. An episode abandoned before its
// terminal transition contributes nothing; its buffered transitions
// are dropped.
func (r *REINFORCE) EndEpisode() {
	if r.episodeEnded {
		if !r.baselineSet {
			r.baseline = r.lastReturn
			r.baselineSet = true
		} else {
			d := r.config.BaselineDecay
			r.baseline = d*r.baseline + (1-d)*r.lastReturn
		}
		r.episodeEnded = false
	}
	r.buffer = r.buffer[:0]
}

// Baseline returns the current variance-reduction baseline
func (r *REINFORCE) Baseline() float64 {
	return r.baseline
}

// gobState is the serialized form of the agent's learned parameters
type gobState struct {
	Rows        int
	Cols        int
	Weights     []float64
	Baseline    float64
	BaselineSet bool
}

// GobEncode serializes the agent's learned parameters
func (r *REINFORCE) GobEncode() ([]byte, error) {
	rows, cols := r.weights.Dims()
	state := gobState{
		Rows:        rows,
		Cols:        cols,
		Weights:     r.weights.RawMatrix().Data,
		Baseline:    r.baseline,
		BaselineSet: r.baselineSet,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("reinforce: could not encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode restores the agent's learned parameters. The stored weight
// dimensions must match the agent's current ones.
func (r *REINFORCE) GobDecode(data []byte) error {
	var state gobState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("reinforce: could not decode state: %w", err)
	}

	rows, cols := r.weights.Dims()
	if state.Rows != rows || state.Cols != cols {
		return fmt.Errorf("reinforce: checkpoint dimensions (%d x %d) do "+
			"not match agent dimensions (%d x %d)", state.Rows, state.Cols,
			rows, cols)
	}

	copy(r.weights.RawMatrix().Data, state.Weights)
	r.baseline = state.Baseline
	r.baselineSet = state.BaselineSet
	return nil
}
