package reinforce_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/agent/linear/policy"
	"github.com/deepsaia/tinydsl/agent/linear/reinforce"
	"github.com/deepsaia/tinydsl/checkpoint"
	"github.com/deepsaia/tinydsl/environment/dslenv"
	"github.com/deepsaia/tinydsl/executor/literal"
	"github.com/deepsaia/tinydsl/reward"
	"github.com/deepsaia/tinydsl/task"
	"github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/utils/matutils/initializers/weights"
)

func newTestEnv(t *testing.T) *dslenv.Env {
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

// newZeroAgent creates a REINFORCE agent with zero-initialized weights
// so that update effects can be checked against a uniform starting
// policy
func newZeroAgent(t *testing.T, config reinforce.Config) (*reinforce.REINFORCE,
	*dslenv.Env) {

	t.Helper()
	env := newTestEnv(t)

	init := weights.NewLinearUV(weights.NewZeroUV())
	r, err := reinforce.New(env, config, init, 1)
	require.NoError(t, err)
	return r, env
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*reinforce.Config)
	}{
		{"zero learning rate", func(c *reinforce.Config) { c.LearningRate = 0 }},
		{"zero gamma", func(c *reinforce.Config) { c.Gamma = 0 }},
		{"gamma above one", func(c *reinforce.Config) { c.Gamma = 1.1 }},
		{"negative baseline decay", func(c *reinforce.Config) { c.BaselineDecay = -0.1 }},
		{"baseline decay of one", func(c *reinforce.Config) { c.BaselineDecay = 1.0 }},
	}

	require.NoError(t, reinforce.NewConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := reinforce.NewConfig()
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLearnBuffersUntilTerminal(t *testing.T) {
	r, env := newZeroAgent(t, reinforce.NewConfig())
	state := env.Reset().Observation

	w := r.Weights()[policy.WeightsKey]
	before := mat.DenseCopyOf(w)

	// Non-terminal transitions are buffered, not consumed
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Learn(timestep.Transition{
			State: state, Action: 0, Reward: 1.0, NextState: state,
		}))
		assert.True(t, mat.Equal(before, w))
	}

	// The terminal transition triggers the episode update
	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 0, Reward: 1.0, NextState: state,
		Terminal: true,
	}))
	assert.False(t, mat.Equal(before, w))
}

func TestUpdateIncreasesRewardedActionProbability(t *testing.T) {
	config := reinforce.NewConfig()
	config.LearningRate = 0.1

	r, env := newZeroAgent(t, config)
	state := env.Reset().Observation

	before := r.Probabilities(state)
	require.InDelta(t, 1.0/3.0, before[1], 1e-12)

	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 1, Reward: 10.0, NextState: state,
		Terminal: true,
	}))

	after := r.Probabilities(state)
	assert.Greater(t, after[1], before[1])
	assert.Less(t, after[0], before[0])
	assert.Less(t, after[2], before[2])
}

func TestNegativeAdvantageDecreasesActionProbability(t *testing.T) {
	config := reinforce.NewConfig()
	config.LearningRate = 0.1

	r, env := newZeroAgent(t, config)
	state := env.Reset().Observation

	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 1, Reward: -10.0, NextState: state,
		Terminal: true,
	}))

	after := r.Probabilities(state)
	assert.Less(t, after[1], 1.0/3.0)
}

func TestBaselineIsMovingAverageOfReturns(t *testing.T) {
	config := reinforce.NewConfig()
	config.BaselineDecay = 0.5

	r, env := newZeroAgent(t, config)
	state := env.Reset().Observation

	// First episode's return seeds the baseline directly
	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 0, Reward: 10.0, NextState: state,
		Terminal: true,
	}))
	r.EndEpisode()
	assert.InDelta(t, 10.0, r.Baseline(), 1e-12)

	// Subsequent episodes fold in with the decay factor
	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 0, Reward: 0.0, NextState: state,
		Terminal: true,
	}))
	r.EndEpisode()
	assert.InDelta(t, 5.0, r.Baseline(), 1e-12)
}

func TestAbandonedEpisodeIsDropped(t *testing.T) {
	r, env := newZeroAgent(t, reinforce.NewConfig())
	state := env.Reset().Observation

	w := r.Weights()[policy.WeightsKey]
	before := mat.DenseCopyOf(w)

	// An episode abandoned before its terminal transition must not
	// touch the weights or the baseline
	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 0, Reward: 5.0, NextState: state,
	}))
	r.EndEpisode()

	assert.True(t, mat.Equal(before, w))
	assert.Zero(t, r.Baseline())

	// The next episode starts from a clean buffer: only its own
	// transition contributes to the update
	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 1, Reward: 10.0, NextState: state,
		Terminal: true,
	}))
	r.EndEpisode()
	assert.InDelta(t, 10.0, r.Baseline(), 1e-12)
}

func TestLearnValidatesTransition(t *testing.T) {
	r, env := newZeroAgent(t, reinforce.NewConfig())
	state := env.Reset().Observation
	short := mat.NewVecDense(3, nil)

	assert.Error(t, r.Learn(timestep.Transition{
		State: short, Action: 0, NextState: state,
	}))
	assert.Error(t, r.Learn(timestep.Transition{
		State: state, Action: 99, NextState: state,
	}))
	assert.Error(t, r.Learn(timestep.Transition{
		State: state, Action: -1, NextState: state,
	}))
}

func TestCheckpointRoundTrip(t *testing.T) {
	config := reinforce.NewConfig()
	config.LearningRate = 0.1

	r, env := newZeroAgent(t, config)
	state := env.Reset().Observation

	require.NoError(t, r.Learn(timestep.Transition{
		State: state, Action: 1, Reward: 10.0, NextState: state,
		Terminal: true,
	}))
	r.EndEpisode()

	path := filepath.Join(t.TempDir(), "agent.gob")
	require.NoError(t, checkpoint.Save(path, r))

	restored, _ := newZeroAgent(t, config)
	require.NoError(t, checkpoint.Load(path, restored))

	assert.True(t, mat.Equal(
		r.Weights()[policy.WeightsKey],
		restored.Weights()[policy.WeightsKey],
	))
	assert.Equal(t, r.Baseline(), restored.Baseline())
	assert.Equal(t, r.Probabilities(state), restored.Probabilities(state))
}

func TestCreateAgentInitializesNearUniform(t *testing.T) {
	env := newTestEnv(t)

	a, err := reinforce.NewConfig().CreateAgent(env, 1)
	require.NoError(t, err)
	r := a.(*reinforce.REINFORCE)

	// Small random initialization keeps the starting policy close to
	// uniform without being exactly symmetric
	probs := r.Probabilities(env.Reset().Observation)
	for _, p := range probs {
		assert.InDelta(t, 1.0/3.0, p, 0.05)
	}
}
