// Package trainer drives repeated training episodes against one
// environment/agent pair, periodically evaluating the frozen agent and
// checkpointing its parameters.
//
// Episodes run sequentially on the calling goroutine: an environment's
// episode state is owned by exactly one training loop, and agent
// parameter updates are read-modify-write sequences that must not
// interleave.
package trainer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/checkpoint"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/evaluator"
	ts "github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/tracker"
	"github.com/deepsaia/tinydsl/utils/progressbar"
)

// Default trainer settings
const (
	// DefaultWindow is the number of trailing episodes the rolling
	// success rate and rolling mean reward aggregate over
	DefaultWindow = 100

	// DefaultEvalEpisodes is the number of frozen-agent episodes run
	// at each periodic evaluation
	DefaultEvalEpisodes = 10

	checkpointExtension = ".gob"
)

// EpisodeStats records one completed training episode. The trainer's
// statistics sequence is append-only; records are never mutated after
// the episode completes.
type EpisodeStats struct {
	Episode int
	Return  float64
	Steps   int
	Success bool
}

// Stats aggregates a completed training run
type Stats struct {
	// RunID identifies the training run; checkpoint files carry it
	RunID string

	// TotalEpisodes is the number of episodes completed
	TotalEpisodes int

	// Elapsed is the wall-clock duration of the run
	Elapsed time.Duration

	// FinalSuccessRate is the fraction of the trailing window of
	// episodes that terminated in task success
	FinalSuccessRate float64

	// FinalAvgReward is the mean return over the trailing window of
	// episodes
	FinalAvgReward float64

	// LastEval holds the most recent periodic evaluation result
	LastEval evaluator.Metrics

	// Episodes holds the per-episode records for the whole run
	Episodes []EpisodeStats
}

// Option configures a Trainer
type Option func(*Trainer)

// WithLogger sets the structured logger the trainer reports progress
// and failures through
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) { t.logger = logger }
}

// WithTrackers registers trackers that receive every environment
// timestep; their data is saved when training finishes
func WithTrackers(trackers ...tracker.Tracker) Option {
	return func(t *Trainer) { t.trackers = trackers }
}

// WithWindow sets the trailing-episode window for rolling statistics
func WithWindow(k int) Option {
	return func(t *Trainer) { t.window = k }
}

// WithEvalEpisodes sets how many frozen-agent episodes each periodic
// evaluation runs
func WithEvalEpisodes(n int) Option {
	return func(t *Trainer) { t.evalEpisodes = n }
}

// WithProgressBar renders a progress bar to stderr during training
func WithProgressBar() Option {
	return func(t *Trainer) { t.progress = true }
}

// ContinueOnCheckpointError makes the trainer log checkpoint write
// failures and keep training instead of aborting the run. The failure
// is still reported; it is never silent.
func ContinueOnCheckpointError() Option {
	return func(t *Trainer) { t.continueOnCheckpointErr = true }
}

// Trainer drives the training loop for one environment/agent pair
type Trainer struct {
	env    environment.Environment
	agent  agent.Agent
	logDir string

	runID        string
	logger       *slog.Logger
	trackers     []tracker.Tracker
	window       int
	evalEpisodes int
	progress     bool

	continueOnCheckpointErr bool
	checkpointName          func() string

	stats []EpisodeStats
}

// New creates a Trainer for the argument environment/agent pair.
// Checkpoints and tracker data are written under logDir, which is
// created if it does not exist.
func New(env environment.Environment, a agent.Agent, logDir string,
	opts ...Option) (*Trainer, error) {

	if env == nil {
		return nil, fmt.Errorf("trainer: environment cannot be nil")
	}
	if a == nil {
		return nil, fmt.Errorf("trainer: agent cannot be nil")
	}
	if logDir == "" {
		logDir = filepath.Join("output", "rl_logs")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("trainer: could not create log dir: %w", err)
	}

	runID := uuid.NewString()

	t := &Trainer{
		env:          env,
		agent:        a,
		logDir:       logDir,
		runID:        runID,
		logger:       slog.Default(),
		window:       DefaultWindow,
		evalEpisodes: DefaultEvalEpisodes,
	}
	t.checkpointName = checkpoint.FilenameEnumerator(0,
		filepath.Join(logDir, "checkpoint-"+runID+"-"), checkpointExtension)

	for _, opt := range opts {
		opt(t)
	}

	if t.window <= 0 {
		return nil, fmt.Errorf("trainer: window must be positive, got %d",
			t.window)
	}
	if t.evalEpisodes < 0 {
		return nil, fmt.Errorf("trainer: eval episodes cannot be negative, "+
			"got %d", t.evalEpisodes)
	}

	return t, nil
}

// RunID returns the unique identifier of this training run
func (t *Trainer) RunID() string {
	return t.runID
}

// Train runs numEpisodes sequential training episodes. Every evalEvery
// episodes the agent is frozen and evaluated without learning; every
// saveEvery episodes its parameters are checkpointed. Pass zero to
// disable either cadence.
//
// A checkpoint write failure aborts the run with an error unless the
// trainer was built with ContinueOnCheckpointError; the statistics
// accumulated in memory are returned either way.
func (t *Trainer) Train(numEpisodes, evalEvery, saveEvery int) (Stats, error) {
	if numEpisodes <= 0 {
		return Stats{}, fmt.Errorf("trainer: number of episodes must be "+
			"positive, got %d", numEpisodes)
	}

	t.logger.Info("training started",
		"run_id", t.runID,
		"episodes", numEpisodes,
		"eval_every", evalEvery,
		"save_every", saveEvery,
	)

	var bar *progressbar.ProgressBar
	if t.progress {
		bar = progressbar.New(40, numEpisodes, os.Stderr)
	}

	start := time.Now()
	var lastEval evaluator.Metrics

	for episode := 1; episode <= numEpisodes; episode++ {
		stats, err := t.runEpisode(episode)
		if err != nil {
			return t.finalStats(start, lastEval), err
		}
		t.stats = append(t.stats, stats)
		t.agent.EndEpisode()

		if bar != nil {
			bar.Increment()
			bar.Display()
		}

		if evalEvery > 0 && episode%evalEvery == 0 {
			lastEval = evaluator.EvaluateAgent(t.agent, t.env, t.evalEpisodes)
			t.logger.Info("evaluation",
				"run_id", t.runID,
				"episode", episode,
				"success_rate", lastEval.SuccessRate,
				"mean_reward", lastEval.MeanReward,
				"mean_length", lastEval.MeanLength,
				"rolling_success_rate", t.rollingSuccessRate(),
				"rolling_mean_reward", t.rollingMeanReward(),
			)
		}

		if saveEvery > 0 && episode%saveEvery == 0 {
			if err := t.checkpointAgent(episode); err != nil {
				if !t.continueOnCheckpointErr {
					return t.finalStats(start, lastEval), err
				}
				t.logger.Error("checkpoint failed, continuing",
					"run_id", t.runID, "episode", episode, "error", err)
			}
		}
	}

	if err := t.saveTrackers(); err != nil {
		t.logger.Error("could not save tracker data",
			"run_id", t.runID, "error", err)
	}

	stats := t.finalStats(start, lastEval)
	t.logger.Info("training finished",
		"run_id", t.runID,
		"episodes", stats.TotalEpisodes,
		"elapsed", stats.Elapsed,
		"final_success_rate", stats.FinalSuccessRate,
		"final_avg_reward", stats.FinalAvgReward,
	)
	return stats, nil
}

// runEpisode drives one full episode of agent-environment interaction.
// A learning-update failure is an agent/environment mismatch that
// construction should have rejected; it aborts the run.
func (t *Trainer) runEpisode(episode int) (EpisodeStats, error) {
	step := t.env.Reset()
	t.track(step)

	episodeReturn := 0.0
	last := false

	for !last {
		action := t.agent.SelectAction(step)

		var nextStep ts.TimeStep
		nextStep, last = t.env.Step(action)
		t.track(nextStep)

		if err := t.agent.Learn(ts.FromSteps(step, action, nextStep)); err != nil {
			return EpisodeStats{}, fmt.Errorf("trainer: learning update "+
				"failed in episode %d: %w", episode, err)
		}

		episodeReturn += nextStep.Reward
		step = nextStep
	}

	return EpisodeStats{
		Episode: episode,
		Return:  episodeReturn,
		Steps:   step.Number,
		Success: step.Termination == ts.Success,
	}, nil
}

// checkpointAgent persists the agent's parameters if the agent
// supports serialization
func (t *Trainer) checkpointAgent(episode int) error {
	s, ok := t.agent.(checkpoint.Serializable)
	if !ok {
		t.logger.Debug("agent is not serializable, skipping checkpoint",
			"run_id", t.runID, "episode", episode)
		return nil
	}

	path := t.checkpointName()
	if err := checkpoint.Save(path, s); err != nil {
		return fmt.Errorf("trainer: %w", err)
	}

	t.logger.Info("checkpoint saved",
		"run_id", t.runID, "episode", episode, "path", path)
	return nil
}

func (t *Trainer) track(step ts.TimeStep) {
	for _, tr := range t.trackers {
		tr.Track(step)
	}
}

func (t *Trainer) saveTrackers() error {
	for _, tr := range t.trackers {
		if err := tr.Save(); err != nil {
			return err
		}
	}
	return nil
}

// rollingSuccessRate returns the success fraction over the trailing
// window of completed episodes
func (t *Trainer) rollingSuccessRate() float64 {
	window := t.tail()
	if len(window) == 0 {
		return 0
	}

	successes := 0
	for _, s := range window {
		if s.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(window))
}

// rollingMeanReward returns the mean return over the trailing window
// of completed episodes
func (t *Trainer) rollingMeanReward() float64 {
	window := t.tail()
	if len(window) == 0 {
		return 0
	}

	total := 0.0
	for _, s := range window {
		total += s.Return
	}
	return total / float64(len(window))
}

func (t *Trainer) tail() []EpisodeStats {
	if len(t.stats) <= t.window {
		return t.stats
	}
	return t.stats[len(t.stats)-t.window:]
}

func (t *Trainer) finalStats(start time.Time, lastEval evaluator.Metrics) Stats {
	episodes := make([]EpisodeStats, len(t.stats))
	copy(episodes, t.stats)

	return Stats{
		RunID:            t.runID,
		TotalEpisodes:    len(t.stats),
		Elapsed:          time.Since(start),
		FinalSuccessRate: t.rollingSuccessRate(),
		FinalAvgReward:   t.rollingMeanReward(),
		LastEval:         lastEval,
		Episodes:         episodes,
	}
}
