package storage

import (
	"encoding/json"
	"os"
)

// ExportData is the JSON export schema: the run metadata plus its reduced
// observable table.
type ExportData struct {
	RunMetadata
	Observables map[string][]float64 `json:"observables"`
}

func exportData(meta RunMetadata, cols []Column) ExportData {
	obs := make(map[string][]float64, len(cols))
	for _, col := range cols {
		obs[col.Name] = col.Values
	}
	return ExportData{RunMetadata: meta, Observables: obs}
}

// ExportJSON writes a run to a JSON file.
func ExportJSON(path string, meta RunMetadata, cols []Column) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(meta, cols))
}

// ExportJSONStdout writes a run to standard output.
func ExportJSONStdout(meta RunMetadata, cols []Column) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(meta, cols))
}
