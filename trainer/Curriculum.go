package trainer

import (
	"fmt"
	"path/filepath"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/environment"
)

// StageResult records one completed curriculum stage
type StageResult struct {
	// Stage is the 1-based position of the task in the curriculum
	Stage int

	// TaskID identifies the task trained on during this stage
	TaskID string

	// Stats aggregates the stage's training run
	Stats Stats
}

// Curriculum trains a single agent across an ordered sequence of
// tasks, easiest first. Each stage builds a fresh environment from
// makeEnv and runs a full training pass under its own log directory
// (logDir/stage_<n>_task_<id>); the agent's parameters carry over
// from stage to stage, so every environment the sequence produces
// must expose the same observation and action specs.
//
// A stage failure stops the curriculum; the results of the completed
// stages are returned alongside the error.
func Curriculum(a agent.Agent,
	makeEnv func(taskID string) (environment.Environment, error),
	taskIDs []string, episodesPerStage, evalEvery, saveEvery int,
	logDir string, opts ...Option) ([]StageResult, error) {

	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("trainer: curriculum needs at least one task")
	}

	results := make([]StageResult, 0, len(taskIDs))
	for i, taskID := range taskIDs {
		env, err := makeEnv(taskID)
		if err != nil {
			return results, fmt.Errorf("trainer: could not create "+
				"environment for task %q: %w", taskID, err)
		}

		stageDir := filepath.Join(logDir,
			fmt.Sprintf("stage_%d_task_%v", i+1, taskID))
		t, err := New(env, a, stageDir, opts...)
		if err != nil {
			return results, err
		}

		stats, err := t.Train(episodesPerStage, evalEvery, saveEvery)
		if err != nil {
			return results, err
		}

		results = append(results, StageResult{
			Stage:  i + 1,
			TaskID: taskID,
			Stats:  stats,
		})
	}

	return results, nil
}
