// Package evaluator runs frozen agents against environments and
// aggregates their performance. Evaluation never mutates agent
// parameters: no learning calls are made and exploration is disabled
// for its duration.
package evaluator

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/environment"
	ts "github.com/deepsaia/tinydsl/timestep"
)

// Metrics aggregates an agent's performance over a number of
// evaluation episodes. A zero-episode evaluation yields the zero
// Metrics value; no field is ever NaN.
type Metrics struct {
	// Episodes is the number of episodes the metrics aggregate over
	Episodes int

	// SuccessRate is the fraction of episodes that terminated in task
	// success
	SuccessRate float64

	// MeanReward is the mean episodic return
	MeanReward float64

	// RewardVariance is the sample variance of episodic returns; zero
	// when fewer than two episodes were run
	RewardVariance float64

	// MeanLength is the mean episode length in steps
	MeanLength float64
}

func (m Metrics) String() string {
	return fmt.Sprintf("episodes: %d  success rate: %.2f  mean reward: "+
		"%.2f  reward variance: %.2f  mean length: %.1f", m.Episodes,
		m.SuccessRate, m.MeanReward, m.RewardVariance, m.MeanLength)
}

// EvaluateAgent runs the agent for nEpisodes full episodes with
// exploration disabled and returns the aggregated metrics. The agent's
// training/evaluation mode is restored afterwards.
func EvaluateAgent(a agent.Agent, env environment.Environment,
	nEpisodes int) Metrics {

	if nEpisodes <= 0 {
		return Metrics{}
	}

	wasEval := a.IsEval()
	a.Eval()
	defer func() {
		if !wasEval {
			a.Train()
		}
	}()

	returns := make([]float64, nEpisodes)
	lengths := make([]float64, nEpisodes)
	successes := 0.0

	for i := 0; i < nEpisodes; i++ {
		step := env.Reset()
		episodeReturn := 0.0
		last := false

		for !last {
			action := a.SelectAction(step)
			step, last = env.Step(action)
			episodeReturn += step.Reward
		}

		returns[i] = episodeReturn
		lengths[i] = float64(step.Number)
		if step.Termination == ts.Success {
			successes++
		}
	}

	variance := 0.0
	if nEpisodes >= 2 {
		variance = stat.Variance(returns, nil)
	}

	return Metrics{
		Episodes:       nEpisodes,
		SuccessRate:    successes / float64(nEpisodes),
		MeanReward:     stat.Mean(returns, nil),
		RewardVariance: variance,
		MeanLength:     stat.Mean(lengths, nil),
	}
}

// CompareAgents evaluates each named agent for nEpisodes episodes,
// giving every agent a freshly constructed environment from makeEnv so
// that all agents face the same task sequence. The result maps agent
// names to their metrics.
func CompareAgents(agents map[string]agent.Agent,
	makeEnv func() (environment.Environment, error),
	nEpisodes int) (map[string]Metrics, error) {

	results := make(map[string]Metrics, len(agents))

	for name, a := range agents {
		env, err := makeEnv()
		if err != nil {
			return nil, fmt.Errorf("compare agents: could not create "+
				"environment for %q: %w", name, err)
		}
		results[name] = EvaluateAgent(a, env, nEpisodes)
	}

	return results, nil
}
