package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest summarizes a batch run.
type Manifest struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Files    []Result `json:"files"`
}

func NewManifest(results []Result) Manifest {
	m := Manifest{Files: results}
	for _, r := range results {
		if r.Success {
			m.Imported++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
