package tracker

import (
	ts "github.com/deepsaia/tinydsl/timestep"
)

// Return tracks and saves the episodic return in a training run. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the run.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in a run does not finish, that episode's
// return will not be saved.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) Tracker {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on a timestep. By calling this method
// on every timestep, the Tracker will store all rewards seen in the
// episode, and save the cumulative reward for that episode as the
// episodic return. When a new episode starts, this method will
// automatically detect this and start accumulating the rewards for
// this new episode separately from the rewards seen on previous
// episodes.
func (r *Return) Track(step ts.TimeStep) {
	r.currentReturn += step.Reward

	if step.Last() {
		// Episode has ended, save the return and begin tracking the
		// return for a new episode
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
	}
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	return saveData(r.filename, r.episodeReturns)
}
