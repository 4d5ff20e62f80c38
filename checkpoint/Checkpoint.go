// Package checkpoint persists agent parameters to durable storage and
// restores them. The format is gob over the agent's own
// GobEncoder/GobDecoder implementation, so a save/load round-trip
// restores parameters exactly: a loaded agent makes identical action
// choices to the saved one given identical inputs.
package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Save writes the object's serialized parameters to path. The write
// is atomic: data goes to a temporary file in the same directory which
// is then renamed over the target, so an interrupted save never leaves
// a partial or corrupt checkpoint behind.
func Save(path string, object Serializable) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("checkpoint: could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(object); err != nil {
		tmp.Close()
		return fmt.Errorf("checkpoint: could not encode object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("checkpoint: could not close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("checkpoint: could not replace %v: %w", path, err)
	}
	return nil
}

// Load restores an object's parameters from a file written by Save
func Load(path string, object Serializable) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("checkpoint: could not open %v: %w", path, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(object); err != nil {
		return fmt.Errorf("checkpoint: could not decode %v: %w", path, err)
	}
	return nil
}

// fileEnumerator enumerates filenames
type fileEnumerator struct {
	i         int
	name      string
	extension string
}

// filename returns the name of the next consecutive enumerated file
func (f *fileEnumerator) filename() string {
	f.i++
	return fmt.Sprintf("%v%v%v", f.name, f.i, f.extension)
}

// FilenameEnumerator returns a function which will return filenames
// with a counter integer suffix. Each time the returned function is
// called, the filename counter suffix will be one higher than on the
// previous call. The filename parameter is the full filename with its
// path, while the extension parameter determines the file extension.
func FilenameEnumerator(start int, filename, extension string) func() string {
	enum := fileEnumerator{i: start, name: filename, extension: extension}

	return enum.filename
}

// FileTimer returns a function which will append to a filename the
// number of nanoseconds since January 1, 1970.
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, time.Now().UnixNano(),
			extension)
	}
}
