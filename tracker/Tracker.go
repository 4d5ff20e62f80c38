// Package tracker implements Trackers, which track and save data
// generated during a training run
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/deepsaia/tinydsl/timestep"
)

// Interface Tracker keeps track of training data and saves the data
// after the run has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	// Open file
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("tracker: could not open data file: %w", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	// Decode the data
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("tracker: could not decode data: %w", err)
	}

	return data, nil
}

// saveData gob-encodes a Tracker's cached data to disk
func saveData(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("tracker: could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("tracker: could not encode data: %w", err)
	}
	return nil
}
