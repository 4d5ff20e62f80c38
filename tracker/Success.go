package tracker

import (
	ts "github.com/deepsaia/tinydsl/timestep"
)

// Success tracks, per episode, whether the episode terminated in
// task success (1.0) or not (0.0). The saved sequence is the raw
// material for success-rate curves.
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess returns a new Success Tracker which will save its data at
// the specified location filename
func NewSuccess(filename string) Tracker {
	return &Success{filename: filename}
}

// Track caches a success flag whenever an episode ends
func (s *Success) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}
	if t.Termination == ts.Success {
		s.successes = append(s.successes, 1.0)
	} else {
		s.successes = append(s.successes, 0.0)
	}
}

// Save saves the data tracked by the Success Tracker to disk
func (s *Success) Save() error {
	return saveData(s.filename, s.successes)
}
