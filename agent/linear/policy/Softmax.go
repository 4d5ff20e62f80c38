package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/utils/floatutils"
	"github.com/deepsaia/tinydsl/utils/matutils"
)

// Softmax implements a softmax policy over linear action preferences.
// Actions are sampled from the softmax distribution over the logits
// produced by the weight matrix; the stochasticity is part of the
// algorithm, not exploration noise. In evaluation mode the modal
// (argmax) action is chosen instead.
type Softmax struct {
	weights *mat.Dense
	eval    bool
	seed    rand.Source
}

// NewSoftmax constructs a new Softmax policy. The weight matrix has
// one row per action and one column per observation feature.
func NewSoftmax(seed uint64, env environment.Environment) (*Softmax, error) {
	source := rand.NewSource(seed)

	if env.ActionSpec().Shape.Len() != 1 {
		return nil, fmt.Errorf("softmax: can only be used with " +
			"1-dimensional actions")
	}
	if env.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("softmax: can only be used with discrete " +
			"actions")
	}

	actions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1
	features := env.ObservationSpec().Shape.Len()

	weights := mat.NewDense(actions, features, nil)

	return &Softmax{weights: weights, seed: source}, nil
}

// Weights gets and returns the weights of the Softmax policy as a
// string description -> weights
func (p *Softmax) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)
	weights[WeightsKey] = p.weights

	return weights
}

// Probabilities returns the softmax action distribution in the
// argument observation
func (p *Softmax) Probabilities(obs mat.Vector) []float64 {
	numActions, _ := p.weights.Dims()
	logits := mat.NewVecDense(numActions, nil)
	logits.MulVec(p.weights, obs)
	return matutils.Softmax(logits)
}

// SelectAction samples an action from the policy's softmax
// distribution, or returns the modal action in evaluation mode. Modal
// ties break to the lowest action index.
func (p *Softmax) SelectAction(t timestep.TimeStep) int {
	probs := p.Probabilities(t.Observation)

	if p.eval {
		_, indices := floatutils.MaxSlice(probs)
		return indices[0]
	}

	dist := distuv.NewCategorical(probs, p.seed)
	return int(dist.Rand())
}

// Eval sets the policy to evaluation mode
func (p *Softmax) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *Softmax) Train() { p.eval = false }

// IsEval indicates if the policy is in evaluation mode
func (p *Softmax) IsEval() bool { return p.eval }
