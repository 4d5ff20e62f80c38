// Command tinydsl trains and evaluates reinforcement-learning agents
// that generate DSL programs token by token. It is a thin driver over
// the library packages: it translates flags into constructor calls and
// owns no training logic itself.
//
// The command uses the built-in literal executor; real DSL
// interpreters are external collaborators wired in through the
// executor.Executor interface.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/agent/linear/qlearning"
	"github.com/deepsaia/tinydsl/agent/linear/reinforce"
	"github.com/deepsaia/tinydsl/agent/random"
	"github.com/deepsaia/tinydsl/checkpoint"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/environment/dslenv"
	"github.com/deepsaia/tinydsl/evaluator"
	"github.com/deepsaia/tinydsl/executor/literal"
	"github.com/deepsaia/tinydsl/reward"
	"github.com/deepsaia/tinydsl/task"
	"github.com/deepsaia/tinydsl/tracker"
	"github.com/deepsaia/tinydsl/trainer"
)

type options struct {
	dsl          string
	taskID       string
	taskSequence string
	tasksDir     string
	expected     string
	vocab        string
	agentName    string
	rewardName   string
	targetLength int
	maxSteps     int
	episodes     int
	evalEvery    int
	saveEvery    int
	evalEpisodes int
	logDir       string
	checkpoint   string
	seed         uint64

	learningRate float64
	gamma        float64
	epsilon      float64
	epsilonDecay float64
	epsilonMin   float64
}

func main() {
	for _, envFile := range []string{".env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tinydsl",
		Short: "Train RL agents to generate DSL programs token by token",
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dsl, "dsl", "literal", "DSL name used for task catalog lookup")
	flags.StringVar(&opts.taskID, "task", "", "task ID within the DSL's catalog")
	flags.StringVar(&opts.tasksDir, "tasks-dir", envOr("TINYDSL_TASKS_DIR", "data"), "directory holding <dsl>_tasks.json catalogs")
	flags.StringVar(&opts.expected, "expected", "", "define an ad-hoc task with this expected output instead of using the catalog")
	flags.StringVar(&opts.vocab, "vocab", "", "comma-separated vocabulary tokens (the END token ends a program)")
	flags.StringVar(&opts.rewardName, "reward", "correctness", "reward shaping: correctness or efficiency")
	flags.IntVar(&opts.targetLength, "target-length", reward.DefaultTargetLength, "target program length for the efficiency reward")
	flags.IntVar(&opts.maxSteps, "max-steps", 50, "episode step ceiling")
	flags.IntVar(&opts.evalEpisodes, "eval-episodes", trainer.DefaultEvalEpisodes, "episodes per evaluation pass")
	flags.StringVar(&opts.logDir, "log-dir", envOr("TINYDSL_LOG_DIR", filepath.Join("output", "rl_logs")), "directory for logs, trackers and checkpoints")
	flags.Uint64Var(&opts.seed, "seed", 42, "random seed")

	flags.Float64Var(&opts.learningRate, "lr", qlearning.DefaultLearningRate, "learning rate")
	flags.Float64Var(&opts.gamma, "gamma", qlearning.DefaultGamma, "discount factor")
	flags.Float64Var(&opts.epsilon, "epsilon", qlearning.DefaultEpsilon, "initial exploration rate (Q-learning)")
	flags.Float64Var(&opts.epsilonDecay, "epsilon-decay", qlearning.DefaultEpsilonDecay, "per-episode exploration decay (Q-learning)")
	flags.Float64Var(&opts.epsilonMin, "epsilon-min", qlearning.DefaultEpsilonMin, "exploration floor (Q-learning)")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train one agent on one task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(opts)
		},
	}
	trainCmd.Flags().StringVar(&opts.agentName, "agent", "qlearning", "agent: random, qlearning or reinforce")
	trainCmd.Flags().IntVar(&opts.episodes, "episodes", 1000, "number of training episodes")
	trainCmd.Flags().IntVar(&opts.evalEvery, "eval-every", 100, "evaluate every N episodes (0 disables)")
	trainCmd.Flags().IntVar(&opts.saveEvery, "save-every", 500, "checkpoint every N episodes (0 disables)")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a checkpointed agent without training",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts)
		},
	}
	evalCmd.Flags().StringVar(&opts.agentName, "agent", "qlearning", "agent: random, qlearning or reinforce")
	evalCmd.Flags().StringVar(&opts.checkpoint, "checkpoint", "", "checkpoint file to restore the agent from")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Train all agents on one task and compare them side by side",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts)
		},
	}
	compareCmd.Flags().IntVar(&opts.episodes, "episodes", 1000, "training episodes per learning agent")

	curriculumCmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Train one agent through an ordered easy-to-hard task sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurriculum(opts)
		},
	}
	curriculumCmd.Flags().StringVar(&opts.agentName, "agent", "qlearning", "agent: random, qlearning or reinforce")
	curriculumCmd.Flags().StringVar(&opts.taskSequence, "tasks", "", "comma-separated ordered task IDs, easiest first")
	curriculumCmd.Flags().IntVar(&opts.episodes, "episodes", 1000, "training episodes per stage")
	curriculumCmd.Flags().IntVar(&opts.evalEvery, "eval-every", 200, "evaluate every N episodes within a stage (0 disables)")
	curriculumCmd.Flags().IntVar(&opts.saveEvery, "save-every", 500, "checkpoint every N episodes within a stage (0 disables)")

	rootCmd.AddCommand(trainCmd, evalCmd, compareCmd, curriculumCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds a logger that writes human-readable lines to stderr
// and JSON lines into the log directory
func newLogger(logDir string) (*slog.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create log dir: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, "tinydsl.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	handler := slogmulti.Fanout(
		slog.NewTextHandler(os.Stderr, nil),
		slog.NewJSONHandler(logFile, nil),
	)
	return slog.New(handler), nil
}

func buildRewardFn(opts *options) (reward.Reward, error) {
	switch opts.rewardName {
	case "correctness":
		return reward.NewCorrectness(), nil
	case "efficiency":
		return reward.NewEfficiency(opts.targetLength), nil
	default:
		return nil, fmt.Errorf("unknown reward %q", opts.rewardName)
	}
}

func buildCatalog(opts *options) (task.Catalog, error) {
	if opts.expected != "" {
		if opts.taskID == "" {
			opts.taskID = "adhoc"
		}
		catalog := task.NewMemCatalog()
		catalog.Add(opts.dsl, task.Descriptor{
			ID:             opts.taskID,
			ExpectedOutput: opts.expected,
			Description:    "ad-hoc task from --expected",
		})
		return catalog, nil
	}
	return task.NewFileCatalog(opts.tasksDir)
}

func buildEnvironment(opts *options) (*dslenv.Env, error) {
	if opts.taskID == "" {
		return nil, fmt.Errorf("--task (or --expected) is required")
	}
	if opts.vocab == "" {
		return nil, fmt.Errorf("--vocab is required")
	}

	rewardFn, err := buildRewardFn(opts)
	if err != nil {
		return nil, err
	}
	catalog, err := buildCatalog(opts)
	if err != nil {
		return nil, err
	}

	config := dslenv.Config{
		DSL:        opts.dsl,
		TaskID:     opts.taskID,
		Vocabulary: strings.Split(opts.vocab, ","),
		MaxSteps:   opts.maxSteps,
		EndToken:   literal.EndToken,
		Separator:  " ",
	}
	return dslenv.New(config, rewardFn, literal.New(), catalog)
}

func buildAgent(name string, env environment.Environment,
	opts *options) (agent.Agent, error) {

	switch name {
	case "random":
		return random.New(env, opts.seed)
	case "qlearning":
		config := qlearning.Config{
			LearningRate: opts.learningRate,
			Gamma:        opts.gamma,
			Epsilon:      opts.epsilon,
			EpsilonDecay: opts.epsilonDecay,
			EpsilonMin:   opts.epsilonMin,
			MaxDelta:     qlearning.DefaultMaxDelta,
		}
		return config.CreateAgent(env, opts.seed)
	case "reinforce":
		config := reinforce.Config{
			LearningRate:  opts.learningRate,
			Gamma:         opts.gamma,
			BaselineDecay: reinforce.DefaultBaselineDecay,
		}
		return config.CreateAgent(env, opts.seed)
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}

func runTrain(opts *options) error {
	logger, err := newLogger(opts.logDir)
	if err != nil {
		return err
	}

	env, err := buildEnvironment(opts)
	if err != nil {
		return err
	}
	a, err := buildAgent(opts.agentName, env, opts)
	if err != nil {
		return err
	}

	trackers := []tracker.Tracker{
		tracker.NewReturn(filepath.Join(opts.logDir, "returns.bin")),
		tracker.NewEpisodeLength(filepath.Join(opts.logDir, "lengths.bin")),
		tracker.NewSuccess(filepath.Join(opts.logDir, "successes.bin")),
	}

	t, err := trainer.New(env, a, opts.logDir,
		trainer.WithLogger(logger),
		trainer.WithTrackers(trackers...),
		trainer.WithEvalEpisodes(opts.evalEpisodes),
		trainer.WithProgressBar(),
		trainer.ContinueOnCheckpointError(),
	)
	if err != nil {
		return err
	}

	stats, err := t.Train(opts.episodes, opts.evalEvery, opts.saveEvery)
	if err != nil {
		return err
	}

	fmt.Printf("\nrun %v: %d episodes in %v\n", stats.RunID,
		stats.TotalEpisodes, stats.Elapsed.Truncate(1e6))
	fmt.Printf("final success rate: %.2f  final avg reward: %.2f\n",
		stats.FinalSuccessRate, stats.FinalAvgReward)
	fmt.Printf("last evaluation: %v\n", stats.LastEval)
	return nil
}

func runEval(opts *options) error {
	env, err := buildEnvironment(opts)
	if err != nil {
		return err
	}
	a, err := buildAgent(opts.agentName, env, opts)
	if err != nil {
		return err
	}

	if opts.checkpoint != "" {
		s, ok := a.(checkpoint.Serializable)
		if !ok {
			return fmt.Errorf("agent %q cannot be restored from a checkpoint",
				opts.agentName)
		}
		if err := checkpoint.Load(opts.checkpoint, s); err != nil {
			return err
		}
	}

	metrics := evaluator.EvaluateAgent(a, env, opts.evalEpisodes)
	fmt.Printf("%-10v %v\n", opts.agentName, metrics)
	return nil
}

func runCurriculum(opts *options) error {
	logger, err := newLogger(opts.logDir)
	if err != nil {
		return err
	}

	if opts.taskSequence == "" {
		return fmt.Errorf("--tasks is required")
	}
	taskIDs := strings.Split(opts.taskSequence, ",")

	makeEnv := func(taskID string) (environment.Environment, error) {
		stageOpts := *opts
		stageOpts.taskID = taskID
		return buildEnvironment(&stageOpts)
	}

	first, err := makeEnv(taskIDs[0])
	if err != nil {
		return err
	}
	a, err := buildAgent(opts.agentName, first, opts)
	if err != nil {
		return err
	}

	results, err := trainer.Curriculum(a, makeEnv, taskIDs,
		opts.episodes, opts.evalEvery, opts.saveEvery, opts.logDir,
		trainer.WithLogger(logger),
		trainer.WithEvalEpisodes(opts.evalEpisodes),
	)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("stage %d task %-8v success rate: %.2f  avg reward: %.2f\n",
			r.Stage, r.TaskID, r.Stats.FinalSuccessRate,
			r.Stats.FinalAvgReward)
	}

	// Score the curriculum agent against every task it trained on
	fmt.Println()
	for _, taskID := range taskIDs {
		env, err := makeEnv(taskID)
		if err != nil {
			return err
		}
		fmt.Printf("task %-8v %v\n", taskID,
			evaluator.EvaluateAgent(a, env, opts.evalEpisodes))
	}
	return nil
}

func runCompare(opts *options) error {
	logger, err := newLogger(opts.logDir)
	if err != nil {
		return err
	}

	agents := make(map[string]agent.Agent)
	for _, name := range []string{"random", "qlearning", "reinforce"} {
		env, err := buildEnvironment(opts)
		if err != nil {
			return err
		}
		a, err := buildAgent(name, env, opts)
		if err != nil {
			return err
		}

		// The random baseline needs no training pass
		if name != "random" {
			t, err := trainer.New(env, a,
				filepath.Join(opts.logDir, name),
				trainer.WithLogger(logger))
			if err != nil {
				return err
			}
			if _, err := t.Train(opts.episodes, 0, 0); err != nil {
				return err
			}
		}
		agents[name] = a
	}

	makeEnv := func() (environment.Environment, error) {
		return buildEnvironment(opts)
	}
	results, err := evaluator.CompareAgents(agents, makeEnv,
		opts.evalEpisodes)
	if err != nil {
		return err
	}

	for _, name := range []string{"random", "qlearning", "reinforce"} {
		fmt.Printf("%-10v %v\n", name, results[name])
	}
	return nil
}
