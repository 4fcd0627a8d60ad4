package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Report is the report.json consumed by the review front end.
type Report struct {
	GeneratedAt string   `json:"generatedAt"`
	ModelID     string   `json:"model_id,omitempty"`
	Results     []Result `json:"results"`
}

// WriteReport writes results to path as a review report.
func WriteReport(path, modelID string, results []Result, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	rep := Report{
		GeneratedAt: now().UTC().Format(time.RFC3339),
		ModelID:     modelID,
		Results:     results,
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write report %s: %w", path, err)
	}
	return nil
}

// LoadReport reads a report written by WriteReport.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report %s: %w", path, err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("invalid report JSON %s: %w", path, err)
	}
	return &rep, nil
}
