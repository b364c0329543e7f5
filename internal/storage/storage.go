// Package storage persists fit runs as a directory per run: fit metadata
// and results in metadata.json, reduced observables in observables.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/qfit/internal/hamiltonian"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is everything about a fit run except the reduced data table.
type RunMetadata struct {
	ID          string                          `json:"id"`
	Kind        string                          `json:"kind"`
	Timestamp   time.Time                       `json:"timestamp"`
	TimeUnit    string                          `json:"time_unit"`
	Times       []float64                       `json:"times"`
	Qubits      []int                           `json:"qubits"`
	Spectators  []int                           `json:"spectators,omitempty"`
	Params      map[string][][]float64          `json:"params"`
	Stderr      map[string][][]float64          `json:"stderr"`
	Rates       []float64                       `json:"zz_rates,omitempty"`
	Hamiltonian map[int]hamiltonian.Hamiltonian `json:"hamiltonian,omitempty"`
}

// Column is one reduced observable series aligned with the run's times.
type Column struct {
	Name   string
	Values []float64
}

// Save writes a run directory and returns its id.
func (s *Store) Save(meta RunMetadata, cols []Column) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Kind, time.Now().Unix())
	meta.ID = runID
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "observables.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, col := range cols {
		header = append(header, col.Name)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, t := range meta.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, col := range cols {
			if i >= len(col.Values) {
				return "", fmt.Errorf("storage: column %q has %d values for %d times", col.Name, len(col.Values), len(meta.Times))
			}
			row = append(row, strconv.FormatFloat(col.Values[i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// Load reads a run's metadata.
func (s *Store) Load(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LoadColumns reads a run's reduced observable table back.
func (s *Store) LoadColumns(runID string) ([]Column, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "observables.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty observables table for run %s", runID)
	}

	header := records[0]
	cols := make([]Column, len(header))
	for j, name := range header {
		cols[j] = Column{Name: name, Values: make([]float64, 0, len(records)-1)}
	}
	for _, row := range records[1:] {
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			cols[j].Values = append(cols[j].Values, v)
		}
	}
	return cols, nil
}

// List returns metadata for every saved run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}
