// Package dslenv implements a token-emission environment over an
// external DSL executor. An agent builds a program one vocabulary
// token per step; the partial program is executed after every step and
// the episode ends when the program's output matches the task's
// expected output, when a designated end-of-program token is emitted,
// or when the step ceiling is reached.
package dslenv

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/executor"
	"github.com/deepsaia/tinydsl/reward"
	"github.com/deepsaia/tinydsl/task"
	"github.com/deepsaia/tinydsl/timestep"
)

// Observation encoding layout. The observation is a fixed-size vector
// holding a sliding window of the most recent tokens, each one-hot
// folded into a slot of slotWidth positions, followed by four scalar
// features: a constant bias, normalized progress, normalized program
// length, and a terminal flag. The bias keeps the initial observation
// non-zero so linear agents can learn a first-token preference. The
// encoding is a pure function of the episode history, so identical
// histories always produce identical observations.
const (
	tokenWindow  = 10
	slotWidth    = 10
	tailFeatures = 4

	// ObservationSize is the fixed length of every observation vector
	ObservationSize = tokenWindow*slotWidth + tailFeatures
)

// Config configures a DSL environment. All fields are validated
// eagerly by New.
type Config struct {
	// DSL names the language whose task catalog entry is bound to
	// this environment
	DSL string

	// TaskID identifies the task within the DSL's catalog
	TaskID string

	// Vocabulary is the ordered action space: every emittable token.
	// It is fixed for the lifetime of the environment.
	Vocabulary []string

	// MaxSteps is the episode step ceiling
	MaxSteps int

	// EndToken is the token whose emission naturally ends the episode.
	// Leave empty for no natural-stop token.
	EndToken string

	// Separator joins emitted tokens into the program text handed to
	// the executor
	Separator string
}

// Validate returns an error describing why the Config is invalid, or
// nil if it is valid
func (c Config) Validate() error {
	if c.DSL == "" {
		return fmt.Errorf("no DSL name specified")
	}
	if c.TaskID == "" {
		return fmt.Errorf("no task ID specified")
	}
	if len(c.Vocabulary) == 0 {
		return fmt.Errorf("vocabulary cannot be empty")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	seen := make(map[string]bool, len(c.Vocabulary))
	for _, tok := range c.Vocabulary {
		if seen[tok] {
			return fmt.Errorf("duplicate vocabulary token %q", tok)
		}
		seen[tok] = true
	}
	return nil
}

// Env is a token-emission environment bound to a single task. An Env
// owns its episode state exclusively and must be driven by one
// goroutine at a time.
type Env struct {
	config   Config
	task     task.Descriptor
	exec     executor.Executor
	rewardFn reward.Reward

	program   []string
	stepCount int
	done      bool
}

// New creates a new Env bound to the task the Config names. The task
// descriptor is loaded from the catalog once; an unknown task is a
// configuration error.
func New(config Config, rewardFn reward.Reward, exec executor.Executor,
	catalog task.Catalog) (*Env, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("dslenv: invalid config: %w", err)
	}
	if rewardFn == nil {
		return nil, fmt.Errorf("dslenv: reward function cannot be nil")
	}
	if exec == nil {
		return nil, fmt.Errorf("dslenv: executor cannot be nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("dslenv: task catalog cannot be nil")
	}

	desc, err := catalog.LoadTask(config.DSL, config.TaskID)
	if err != nil {
		return nil, fmt.Errorf("dslenv: %w", err)
	}

	env := &Env{
		config:   config,
		task:     desc,
		exec:     exec,
		rewardFn: rewardFn,
	}
	env.Reset()
	return env, nil
}

// Reset begins a new episode, discarding the previous episode's state
func (e *Env) Reset() timestep.TimeStep {
	e.program = nil
	e.stepCount = 0
	e.done = false

	return timestep.New(timestep.First, 0, 1.0, e.observation(), 0)
}

// Step advances the episode by emitting one token.
//
// An out-of-range action is a syntax-error event, not a fault: no
// token is appended, execution is not attempted, the reward function
// sees an error outcome, and the episode continues (subject to the
// step ceiling). Termination precedence is Success, then NaturalStop,
// then MaxSteps; success is re-checked on every step by executing the
// partial program.
//
// Step panics if called after the episode has ended; callers must
// Reset between episodes.
func (e *Env) Step(action int) (timestep.TimeStep, bool) {
	if e.done {
		panic("dslenv: Step called on finished episode; call Reset")
	}

	e.stepCount++

	var out reward.Outcome
	var token string
	naturalStop := false

	if action < 0 || action >= len(e.config.Vocabulary) {
		out.InvalidAction = true
	} else {
		token = e.config.Vocabulary[action]
		e.program = append(e.program, token)
		naturalStop = e.config.EndToken != "" && token == e.config.EndToken

		result := e.exec.Execute(e.programText())
		out.Attempted = true
		out.Output = result.Output
		out.Error = result.Error
		if result.Success {
			out.Similarity = e.exec.Similarity(result.Output,
				e.task.ExpectedOutput)
			out.Success = matches(result.Output, e.task.ExpectedOutput)
		}
	}

	// Determine termination; exactly one reason holds
	var reason timestep.TerminationReason
	switch {
	case out.Success:
		reason = timestep.Success
	case naturalStop:
		reason = timestep.NaturalStop
	case e.stepCount >= e.config.MaxSteps:
		reason = timestep.MaxSteps
	}
	e.done = reason != timestep.None

	r := e.rewardFn.Reward(e.program, token, out, e.task.ExpectedOutput)

	stepType := timestep.Mid
	if e.done {
		stepType = timestep.Last
	}

	step := timestep.New(stepType, r, 1.0, e.observation(), e.stepCount)
	step.Termination = reason
	step.Info = timestep.Info{
		ExecutionAttempted: out.Attempted,
		ExecutionSucceeded: out.Attempted && out.Error == "",
		Similarity:         out.Similarity,
		Program:            e.programText(),
		InvalidAction:      out.InvalidAction,
	}

	return step, e.done
}

// ObservationSpec describes the fixed-size observation vector
func (e *Env) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationSize, nil)

	low := mat.NewVecDense(ObservationSize, nil)
	high := mat.NewVecDense(ObservationSize, nil)
	for i := 0; i < ObservationSize; i++ {
		high.SetVec(i, 1.0)
	}

	return environment.Spec{
		Shape:       shape,
		Type:        environment.Observation,
		LowerBound:  low,
		UpperBound:  high,
		Cardinality: environment.Continuous,
	}
}

// ActionSpec describes the discrete action space: one action per
// vocabulary token
func (e *Env) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	low := mat.NewVecDense(1, []float64{0})
	high := mat.NewVecDense(1, []float64{float64(len(e.config.Vocabulary) - 1)})

	return environment.Spec{
		Shape:       shape,
		Type:        environment.Action,
		LowerBound:  low,
		UpperBound:  high,
		Cardinality: environment.Discrete,
	}
}

// Vocabulary returns a copy of the environment's ordered token set
func (e *Env) Vocabulary() []string {
	vocab := make([]string, len(e.config.Vocabulary))
	copy(vocab, e.config.Vocabulary)
	return vocab
}

// Task returns the task descriptor this environment is bound to
func (e *Env) Task() task.Descriptor {
	return e.task
}

// Render returns the current episode state as a human-readable string
func (e *Env) Render() string {
	return fmt.Sprintf("Step %d/%d\n%v", e.stepCount, e.config.MaxSteps,
		e.programText())
}

func (e *Env) programText() string {
	return strings.Join(e.program, e.config.Separator)
}

// observation encodes the current episode state into the fixed-size
// observation vector
func (e *Env) observation() *mat.VecDense {
	obs := mat.NewVecDense(ObservationSize, nil)

	// One-hot fold the trailing token window into fixed-width slots
	start := 0
	if len(e.program) > tokenWindow {
		start = len(e.program) - tokenWindow
	}
	for i, token := range e.program[start:] {
		idx := e.tokenIndex(token)
		if idx >= 0 {
			obs.SetVec(i*slotWidth+idx%slotWidth, 1.0)
		}
	}

	maxSteps := float64(e.config.MaxSteps)
	obs.SetVec(ObservationSize-4, 1.0)
	obs.SetVec(ObservationSize-3, float64(e.stepCount)/maxSteps)
	obs.SetVec(ObservationSize-2, float64(len(e.program))/maxSteps)
	if e.done {
		obs.SetVec(ObservationSize-1, 1.0)
	}

	return obs
}

func (e *Env) tokenIndex(token string) int {
	for i, t := range e.config.Vocabulary {
		if t == token {
			return i
		}
	}
	return -1
}

func matches(output, expected string) bool {
	return strings.TrimSpace(output) == strings.TrimSpace(expected)
}
