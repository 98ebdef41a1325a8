package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Trawczynski/double-pendulum/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store archives runs as one directory per run under baseDir.
type Store struct {
	baseDir string
	logger  *zap.Logger
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(baseDir string, opts ...Option) *Store {
	s := &Store{baseDir: baseDir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Initial describes the starting pendulum of a run.
type Initial struct {
	R1 float64 `json:"r1"`
	R2 float64 `json:"r2"`
	M1 float64 `json:"m1"`
	M2 float64 `json:"m2"`
	G  float64 `json:"g"`
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
}

type RunMetadata struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Integrator  string            `json:"integrator"`
	Preset      string            `json:"preset,omitempty"`
	Initial     Initial           `json:"initial"`
	Steps       int               `json:"steps"`
	SampleEvery int               `json:"sample_every"`
	TrackChaos  bool              `json:"track_chaos"`
	StepsTaken  int               `json:"steps_taken"`
	EnergyDrift Number            `json:"energy_drift"`
	Elapsed     time.Duration     `json:"elapsed_ns"`
	Metrics     map[string]Number `json:"metrics"`
	Errors      []string          `json:"errors,omitempty"`
}

// NewRunID returns "<integrator>_<first 8 hex digits of a random UUID>".
func NewRunID(integrator string) string {
	return fmt.Sprintf("%s_%s", integrator, uuid.NewString()[:8])
}

// Save writes meta and the samples of result under a fresh run id. The
// result-derived fields of meta are filled in from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = NewRunID(meta.Integrator)
	meta.Timestamp = time.Now()
	meta.StepsTaken = result.StepsTaken
	meta.EnergyDrift = Number(result.EnergyDrift)
	meta.Elapsed = result.Elapsed
	meta.Metrics = make(map[string]Number, len(result.Metrics))
	for k, v := range result.Metrics {
		meta.Metrics[k] = Number(v)
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	if err := writeJSONFile(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Samples); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}

	s.logger.Debug("run saved",
		zap.String("run_id", meta.ID),
		zap.String("dir", runDir),
		zap.Int("samples", len(result.Samples)),
	)
	return meta.ID, nil
}

// List returns the metadata of every readable run, oldest first.
// Directories without valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Warn("skipping run", zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Latest returns the id of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: no runs in %s", ErrRunNotFound, s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadSamples reads back the recorded samples of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
