// Package qlearning implements the Q-Learning algorithm with linear
// function approximation.
//
// The agent keeps one weight vector per action over the environment's
// observation features and follows an ε-greedy behaviour policy. Each
// transition is consumed immediately by a one-step temporal-difference
// update; ε decays multiplicatively toward a floor once per episode.
package qlearning

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/agent/linear/policy"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/utils/floatutils"
	"github.com/deepsaia/tinydsl/utils/matutils/initializers/weights"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*policy.EGreedy
	weights *mat.Dense
	config  Config
	seed    uint64
}

// New creates a new QLearning agent on the argument environment. The
// init argument determines how the linear weights are initialized.
func New(env environment.Environment, config Config,
	init weights.Initializer, seed uint64) (*QLearning, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("qlearning: invalid config: %w", err)
	}

	behaviour, err := policy.NewEGreedy(config.Epsilon, seed, env)
	if err != nil {
		return nil, fmt.Errorf("qlearning: %w", err)
	}

	w := behaviour.Weights()[policy.WeightsKey]
	init.Initialize(w)

	return &QLearning{
		EGreedy: behaviour,
		weights: w,
		config:  config,
		seed:    seed,
	}, nil
}

// Learn performs a one-step temporal-difference update from the
// argument transition. The TD error is clipped to the configured
// MaxDelta before the gradient step to guard against divergence of
// the linear weights.
func (q *QLearning) Learn(t timestep.Transition) error {
	_, features := q.weights.Dims()
	if t.State.Len() != features || t.NextState.Len() != features {
		return fmt.Errorf("qlearning: feature vector length mismatch: "+
			"want %d, have (%d, %d)", features, t.State.Len(),
			t.NextState.Len())
	}
	numActions, _ := q.weights.Dims()
	if t.Action < 0 || t.Action >= numActions {
		return fmt.Errorf("qlearning: action %d outside action space of "+
			"size %d", t.Action, numActions)
	}

	// Create the update target
	target := t.Reward
	if !t.Terminal {
		// Maximum action value in the next state
		actionValues := q.ActionValues(t.NextState)
		target += q.config.Gamma * mat.Max(actionValues)
	}

	// Find the current estimate of the taken action
	row := q.weights.RowView(t.Action)
	currentEstimate := mat.Dot(row, t.State)

	delta := floatutils.Clip(target-currentEstimate, -q.config.MaxDelta,
		q.config.MaxDelta)

	// Construct the scaling factor of the gradient
	scale := q.config.LearningRate * delta

	// Perform the gradient step: weights[action] += scale * state
	newRow := mat.NewVecDense(row.Len(), nil)
	newRow.AddScaledVec(row, scale, t.State)
	q.weights.SetRow(t.Action, mat.Col(nil, 0, newRow))

	return nil
}

// EndEpisode decays the exploration rate multiplicatively toward its
// floor. Decay happens once per episode, not per step.
func (q *QLearning) EndEpisode() {
	decayed := q.Epsilon() * q.config.EpsilonDecay
	q.SetEpsilon(floatutils.Max(q.config.EpsilonMin, decayed))
}

// gobState is the serialized form of the agent's learned parameters
type gobState struct {
	Rows    int
	Cols    int
	Weights []float64
	Epsilon float64
}

// GobEncode serializes the agent's learned parameters
func (q *QLearning) GobEncode() ([]byte, error) {
	rows, cols := q.weights.Dims()
	state := gobState{
		Rows:    rows,
		Cols:    cols,
		Weights: q.weights.RawMatrix().Data,
		Epsilon: q.Epsilon(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("qlearning: could not encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode restores the agent's learned parameters. The stored weight
// dimensions must match the agent's current ones.
func (q *QLearning) GobDecode(data []byte) error {
	var state gobState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("qlearning: could not decode state: %w", err)
	}

	rows, cols := q.weights.Dims()
	if state.Rows != rows || state.Cols != cols {
		return fmt.Errorf("qlearning: checkpoint dimensions (%d x %d) do "+
			"not match agent dimensions (%d x %d)", state.Rows, state.Cols,
			rows, cols)
	}

	copy(q.weights.RawMatrix().Data, state.Weights)
	q.SetEpsilon(state.Epsilon)
	return nil
}
