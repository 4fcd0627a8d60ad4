package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/framecull/framecull/internal/eval"
)

// TrainingInfo summarizes the dataset a model was fitted on.
type TrainingInfo struct {
	TotalImages  int     `json:"total_images"`
	KeepCount    int     `json:"keep_count"`
	ExcludeCount int     `json:"exclude_count"`
	ClassRatio   float64 `json:"class_ratio"`
}

// Metadata accompanies each persisted model binary as a sibling JSON file.
type Metadata struct {
	Version      int          `json:"version"`
	Timestamp    string       `json:"timestamp"`
	DataHash     string       `json:"data_hash"`
	ModelID      string       `json:"model_id,omitempty"`
	Metrics      eval.Summary `json:"metrics"`
	TrainingInfo TrainingInfo `json:"training_info"`
}

// MetadataPath returns the sibling metadata path for a model binary.
func MetadataPath(modelPath string) string {
	return modelPath + ".meta.json"
}

// LoadMetadata reads and parses a metadata file.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read metadata %s: %w", path, err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid metadata JSON %s: %w", path, err)
	}
	return &m, nil
}
