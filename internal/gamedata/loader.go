package gamedata

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, errors.Wrapf(err, "read embedded file %s", filename)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, errors.Wrapf(err, "parse JSON from %s", filename)
	}

	return result, nil
}

// MustLoad reads and unmarshals a JSON file, panicking on error.
// Use this for data that must be present for the client to start.
func MustLoad[T any](filename string) T {
	result, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return result
}
