package trainer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepsaia/tinydsl/agent/linear/qlearning"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/environment/dslenv"
	"github.com/deepsaia/tinydsl/executor/literal"
	"github.com/deepsaia/tinydsl/reward"
	"github.com/deepsaia/tinydsl/task"
	"github.com/deepsaia/tinydsl/trainer"
)

// curriculumEnvBuilder returns a makeEnv over a two-task catalog: a
// one-token task followed by a harder two-token task
func curriculumEnvBuilder(t *testing.T) func(string) (environment.Environment, error) {
	t.Helper()

	catalog := task.NewMemCatalog()
	catalog.Add("literal", task.Descriptor{ID: "easy", ExpectedOutput: "4"})
	catalog.Add("literal", task.Descriptor{ID: "hard", ExpectedOutput: "42"})

	return func(taskID string) (environment.Environment, error) {
		return dslenv.New(dslenv.Config{
			DSL:        "literal",
			TaskID:     taskID,
			Vocabulary: []string{"4", "2", "END"},
			MaxSteps:   3,
			EndToken:   literal.EndToken,
			Separator:  " ",
		}, reward.NewCorrectness(), literal.New(), catalog)
	}
}

func TestCurriculumTrainsOneAgentAcrossStages(t *testing.T) {
	makeEnv := curriculumEnvBuilder(t)
	logDir := t.TempDir()

	first, err := makeEnv("easy")
	require.NoError(t, err)
	a, err := qlearning.NewConfig().CreateAgent(first, 1)
	require.NoError(t, err)

	episodesPerStage := 6
	results, err := trainer.Curriculum(a, makeEnv,
		[]string{"easy", "hard"}, episodesPerStage, 0, 3, logDir,
		trainer.WithLogger(quietLogger()))
	require.NoError(t, err)

	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, i+1, r.Stage)
		assert.Equal(t, episodesPerStage, r.Stats.TotalEpisodes)
	}
	assert.Equal(t, "easy", results[0].TaskID)
	assert.Equal(t, "hard", results[1].TaskID)

	// The same agent learned through both stages: exploration decayed
	// once per episode across the whole curriculum
	q := a.(*qlearning.QLearning)
	wantEpsilon := qlearning.DefaultEpsilon
	for i := 0; i < 2*episodesPerStage; i++ {
		wantEpsilon *= qlearning.DefaultEpsilonDecay
	}
	assert.InDelta(t, wantEpsilon, q.Epsilon(), 1e-12)

	// Each stage checkpointed into its own log directory
	for _, stage := range []string{"stage_1_task_easy", "stage_2_task_hard"} {
		checkpoints, err := filepath.Glob(
			filepath.Join(logDir, stage, "checkpoint-*.gob"))
		require.NoError(t, err)
		assert.Len(t, checkpoints, 2, "stage %v", stage)
	}
}

func TestCurriculumRequiresTasks(t *testing.T) {
	makeEnv := curriculumEnvBuilder(t)

	first, err := makeEnv("easy")
	require.NoError(t, err)
	a, err := qlearning.NewConfig().CreateAgent(first, 1)
	require.NoError(t, err)

	_, err = trainer.Curriculum(a, makeEnv, nil, 5, 0, 0, t.TempDir(),
		trainer.WithLogger(quietLogger()))
	assert.Error(t, err)
}

func TestCurriculumStopsOnUnknownTask(t *testing.T) {
	makeEnv := curriculumEnvBuilder(t)

	first, err := makeEnv("easy")
	require.NoError(t, err)
	a, err := qlearning.NewConfig().CreateAgent(first, 1)
	require.NoError(t, err)

	results, err := trainer.Curriculum(a, makeEnv,
		[]string{"easy", "missing"}, 4, 0, 0, t.TempDir(),
		trainer.WithLogger(quietLogger()))
	require.Error(t, err)

	// The completed first stage survives the failure
	require.Len(t, results, 1)
	assert.Equal(t, "easy", results[0].TaskID)
}
