package tracker

import (
	ts "github.com/deepsaia/tinydsl/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in a
// training run.
// Note that an episode must finish for this Tracker to save its data.
// If the last episode in a run does not finish, that episode's
// length will not be saved.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) Tracker {
	return &EpisodeLength{filename: filename}
}

// Track tracks the episode lengths in a training run. When this
// function is called, it caches the episode length if the timestep
// passed to it is the last timestep in the episode.
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return saveData(e.filename, e.episodeLengths)
}
