package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/agent/linear/policy"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/environment/dslenv"
	"github.com/deepsaia/tinydsl/executor/literal"
	"github.com/deepsaia/tinydsl/reward"
	"github.com/deepsaia/tinydsl/task"
	"github.com/deepsaia/tinydsl/timestep"
)

func newTestEnv(t *testing.T) environment.Environment {
	t.Helper()

	catalog := task.NewMemCatalog()
	catalog.Add("literal", task.Descriptor{ID: "emit", ExpectedOutput: "42"})

	env, err := dslenv.New(dslenv.Config{
		DSL:        "literal",
		TaskID:     "emit",
		Vocabulary: []string{"4", "2", "END"},
		MaxSteps:   5,
		EndToken:   literal.EndToken,
		Separator:  " ",
	}, reward.NewCorrectness(), literal.New(), catalog)
	require.NoError(t, err)
	return env
}

// stepWithObs wraps an observation in a TimeStep for action selection
func stepWithObs(obs mat.Vector) timestep.TimeStep {
	return timestep.New(timestep.First, 0, 1.0, obs, 0)
}

func TestEGreedyWeightDimensions(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(0.1, 1, env)
	require.NoError(t, err)

	w := p.Weights()[policy.WeightsKey]
	rows, cols := w.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, dslenv.ObservationSize, cols)
}

func TestEGreedyGreedySelection(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(0.0, 1, env)
	require.NoError(t, err)

	// Put all the value on action 1 through the bias feature
	w := p.Weights()[policy.WeightsKey]
	w.Set(1, dslenv.ObservationSize-4, 2.0)

	obs := env.Reset().Observation
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, p.SelectAction(stepWithObs(obs)))
	}
}

func TestEGreedyEvalModeIsGreedy(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(1.0, 1, env)
	require.NoError(t, err)

	w := p.Weights()[policy.WeightsKey]
	w.Set(2, dslenv.ObservationSize-4, 5.0)

	p.Eval()
	require.True(t, p.IsEval())

	obs := env.Reset().Observation
	for i := 0; i < 10; i++ {
		assert.Equal(t, 2, p.SelectAction(stepWithObs(obs)))
	}

	p.Train()
	assert.False(t, p.IsEval())
}

func TestEGreedyTiesBreakToLowestIndex(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(0.0, 1, env)
	require.NoError(t, err)

	// All-zero weights value every action equally
	obs := env.Reset().Observation
	assert.Equal(t, 0, p.SelectAction(stepWithObs(obs)))
}

func TestEGreedyExplores(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(1.0, 1, env)
	require.NoError(t, err)

	// Fully random behaviour must reach every action eventually
	obs := env.Reset().Observation
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[p.SelectAction(stepWithObs(obs))] = true
	}
	assert.Len(t, seen, 3)
}

func TestEGreedySetEpsilon(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewEGreedy(0.5, 1, env)
	require.NoError(t, err)

	assert.Equal(t, 0.5, p.Epsilon())
	p.SetEpsilon(0.25)
	assert.Equal(t, 0.25, p.Epsilon())
}

func TestSoftmaxProbabilities(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewSoftmax(1, env)
	require.NoError(t, err)

	obs := env.Reset().Observation
	probs := p.Probabilities(obs)
	require.Len(t, probs, 3)

	// Zero weights give the uniform distribution
	sum := 0.0
	for _, prob := range probs {
		assert.InDelta(t, 1.0/3.0, prob, 1e-12)
		sum += prob
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSoftmaxSkewedWeights(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewSoftmax(1, env)
	require.NoError(t, err)

	w := p.Weights()[policy.WeightsKey]
	w.Set(0, dslenv.ObservationSize-4, 10.0)

	obs := env.Reset().Observation
	probs := p.Probabilities(obs)
	assert.Greater(t, probs[0], 0.99)
}

func TestSoftmaxEvalModeIsModal(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewSoftmax(1, env)
	require.NoError(t, err)

	w := p.Weights()[policy.WeightsKey]
	w.Set(2, dslenv.ObservationSize-4, 3.0)

	p.Eval()
	obs := env.Reset().Observation
	for i := 0; i < 10; i++ {
		assert.Equal(t, 2, p.SelectAction(stepWithObs(obs)))
	}
}

func TestSoftmaxModalTiesBreakToLowestIndex(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewSoftmax(1, env)
	require.NoError(t, err)

	// All-zero weights leave every action equally probable
	p.Eval()
	obs := env.Reset().Observation
	assert.Equal(t, 0, p.SelectAction(stepWithObs(obs)))
}

func TestSoftmaxSamplesAllActions(t *testing.T) {
	env := newTestEnv(t)

	p, err := policy.NewSoftmax(1, env)
	require.NoError(t, err)

	obs := env.Reset().Observation
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[p.SelectAction(stepWithObs(obs))] = true
	}
	assert.Len(t, seen, 3)
}
