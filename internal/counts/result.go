package counts

import (
	"encoding/json"
	"os"
)

// Result is one backend execution result: a set of named experiments,
// each with its outcome counts.
type Result interface {
	Counts(name string) (Counts, bool)
}

// MemoryResult is an in-memory Result, also the JSON schema for result
// files: experiment name -> bitstring -> count.
type MemoryResult map[string]Counts

func (r MemoryResult) Counts(name string) (Counts, bool) {
	c, ok := r[name]
	return c, ok
}

// ResultList queries multiple backend results in order.
type ResultList []Result

// Lookup returns the counts for the named experiment from the first result
// that has it. Later results holding the same name are ignored; callers
// that care about duplicates must de-duplicate upstream.
func (rl ResultList) Lookup(name string) (Counts, error) {
	for _, r := range rl {
		if c, ok := r.Counts(name); ok {
			return c, nil
		}
	}
	return nil, &DataError{Experiment: name, Wrapped: ErrMissingExperiment}
}

// LoadResult reads a MemoryResult from a JSON file.
func LoadResult(path string) (MemoryResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r MemoryResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// SaveResult writes a MemoryResult to a JSON file.
func SaveResult(path string, r MemoryResult) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
