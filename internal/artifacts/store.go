// File: internal/artifacts/store.go
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/api/schemas"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/config"
	"github.com/krishna-dhulipalla/Autonomous-Web-UI-Multi-Agent/internal/rank"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store persists per-step diagnostics for a single run, and optionally
// mirrors a curated subset into a dataset directory for later training use.
// All writes are best effort: persistence failures are logged, never fatal.
type Store struct {
	cfg    config.RunConfig
	logger *zap.Logger

	runID      string
	runDir     string
	datasetDir string

	mu   sync.Mutex
	step int
}

var _ rank.Sink = (*Store)(nil)

// NewStore creates the run directory and, when dataset export is enabled, the
// dataset directory named after the goal.
func NewStore(cfg config.RunConfig, goal string, logger *zap.Logger) (*Store, error) {
	runID := uuid.New().String()

	s := &Store{
		cfg:    cfg,
		logger: logger.Named("artifacts").With(zap.String("run_id", runID)),
		runID:  runID,
		runDir: filepath.Join(cfg.OutputDir, runID),
	}
	if err := os.MkdirAll(s.runDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	if cfg.ExportDataset {
		name := fmt.Sprintf("%s-%s", SanitizeFilename(goal), runID[:8])
		s.datasetDir = filepath.Join(cfg.DatasetDir, name)
		if err := os.MkdirAll(s.datasetDir, dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	s.logger.Info("Artifact store initialized.", zap.String("run_dir", s.runDir))
	return s, nil
}

// RunID returns the unique identifier of this run.
func (s *Store) RunID() string { return s.runID }

// RunDir returns the root directory artifacts are written to.
func (s *Store) RunDir() string { return s.runDir }

// BeginStep switches the store to a new step. Subsequent records land in that
// step's directory.
func (s *Store) BeginStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// RecordRanking persists the scored catalog and the candidate cut for the
// current step. Implements the ranker's diagnostic sink.
func (s *Store) RecordRanking(all []schemas.ScoredElement, selected []schemas.ScoredElement) {
	s.RecordJSON("elements_scored.json", all)
	s.RecordJSON("candidates.json", selected)
}

// RecordJSON writes v as indented JSON under the current step.
func (s *Store) RecordJSON(name string, v interface{}) {
	data, err := jsonAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Warn("Could not marshal artifact.", zap.String("name", name), zap.Error(err))
		return
	}
	s.writeStepFile(name, data)
}

// RecordScreenshot writes raw image bytes under the current step.
func (s *Store) RecordScreenshot(name string, png []byte) {
	s.writeStepFile(name, png)
}

// RecordNote writes a free-form annotation for the current step. Notes feed
// the dataset's per-step explanation of what the run was attempting.
func (s *Store) RecordNote(text string) {
	s.writeStepFile("note.txt", []byte(text))
}

// WriteMeta persists run-level metadata at the root of the run directory and,
// when enabled, the dataset directory.
func (s *Store) WriteMeta(v interface{}) {
	data, err := jsonAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Warn("Could not marshal run metadata.", zap.Error(err))
		return
	}
	s.writeFile(filepath.Join(s.runDir, "meta.json"), data)
	if s.datasetDir != "" {
		s.writeFile(filepath.Join(s.datasetDir, "meta.json"), data)
	}
}

// writeStepFile writes data into the current step directory of the run dir,
// mirrored into the dataset dir when export is enabled.
func (s *Store) writeStepFile(name string, data []byte) {
	s.mu.Lock()
	step := s.step
	s.mu.Unlock()

	sub := filepath.Join("steps", fmt.Sprintf("step_%02d", step), name)
	s.writeFile(filepath.Join(s.runDir, sub), data)
	if s.datasetDir != "" {
		s.writeFile(filepath.Join(s.datasetDir, sub), data)
	}
}

func (s *Store) writeFile(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		s.logger.Warn("Could not create artifact directory.", zap.String("path", path), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		s.logger.Warn("Could not write artifact.", zap.String("path", path), zap.Error(err))
	}
}

// SanitizeFilename lowercases the input and replaces every run of
// non-alphanumeric characters with a single underscore, capped at 40 chars.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "run"
	}
	if len(out) > 40 {
		out = strings.Trim(out[:40], "_")
	}
	return out
}
