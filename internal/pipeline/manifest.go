package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/bnbeda/internal/listings"
	"github.com/KaramelBytes/bnbeda/internal/utils"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file written next to the plots.
const ManifestName = "manifest.yaml"

// Manifest describes one export: where the data came from and which files
// were written.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	CreatedAt   time.Time `yaml:"created_at"`
	Input       string    `yaml:"input"`
	RawRows     int       `yaml:"raw_rows"`
	CleanedRows int       `yaml:"cleaned_rows"`
	Benchmark   float64   `yaml:"benchmark_price"`
	Files       []string  `yaml:"files"`
}

// NewManifest stamps a new run id.
func NewManifest(input string, st listings.CleanStats, benchmark float64, files []string) *Manifest {
	return &Manifest{
		RunID:       uuid.New().String(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Input:       input,
		RawRows:     st.Raw,
		CleanedRows: st.Cleaned,
		Benchmark:   benchmark,
		Files:       files,
	}
}

// WriteManifest writes m into dir and returns its path.
func WriteManifest(dir string, m *Manifest) (string, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := utils.SafeWriteFile(path, b); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
