// Package jobstore persists render-job state on disk, one directory per
// job. The directory is exclusively owned by its job for the job's whole
// lifetime: input.json (the scene as submitted), status.json (the Job
// record), command.log (the exact compiled argument list), stdout.log and
// stderr.log (captured encoder streams) and, on success, the rendered
// output.<ext> artifact.
package jobstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/pkg/errors"
	"clipforge/internal/scene"
)

var (
	// ErrNotFound is returned by Get for unknown job IDs.
	ErrNotFound = errors.New(errors.CodeNotFound, "job not found")
	// ErrTerminal is returned when a transition is attempted on a job
	// already in a terminal state.
	ErrTerminal = errors.New(errors.CodeConflict, "job already in a terminal state")
)

// Store reads and writes per-job directories under a single root.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// Dir returns the job's directory path.
func (s *Store) Dir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

func (s *Store) inputPath(jobID string) string  { return filepath.Join(s.Dir(jobID), "input.json") }
func (s *Store) statusPath(jobID string) string { return filepath.Join(s.Dir(jobID), "status.json") }

// CommandLogPath is where the compiled argument list is recorded.
func (s *Store) CommandLogPath(jobID string) string {
	return filepath.Join(s.Dir(jobID), "command.log")
}

// StdoutLogPath is where the encoder's standard output is captured.
func (s *Store) StdoutLogPath(jobID string) string {
	return filepath.Join(s.Dir(jobID), "stdout.log")
}

// StderrLogPath is where the encoder's standard error is captured.
func (s *Store) StderrLogPath(jobID string) string {
	return filepath.Join(s.Dir(jobID), "stderr.log")
}

// OutputPath is the destination the compiled command writes to.
func (s *Store) OutputPath(jobID string, format scene.Format) string {
	return filepath.Join(s.Dir(jobID), "output."+string(format))
}

// Create makes the job directory, persists the submitted scene and writes
// the initial processing record. The record exists the instant Create
// returns.
func (s *Store) Create(jobID string, sc *scene.Scene) (*Job, error) {
	dir := s.Dir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "jobstore.create", "failed to create job directory")
	}

	if err := writeJSON(s.inputPath(jobID), sc); err != nil {
		return nil, errors.Wrap(err, "jobstore.create", "failed to persist job input")
	}

	job := &Job{
		JobID:     jobID,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := writeJSON(s.statusPath(jobID), job); err != nil {
		return nil, errors.Wrap(err, "jobstore.create", "failed to persist job status")
	}
	return job, nil
}

// Get returns the current job record, or ErrNotFound.
func (s *Store) Get(jobID string) (*Job, error) {
	data, err := os.ReadFile(s.statusPath(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "jobstore.get", "failed to read job status")
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.Wrap(err, "jobstore.get", "corrupt job status record")
	}
	return &job, nil
}

// WriteCommandLog records the compiled argument list, space-joined, for
// diagnosis.
func (s *Store) WriteCommandLog(jobID string, argv []string) error {
	if err := os.WriteFile(s.CommandLogPath(jobID), []byte(strings.Join(argv, " ")), 0o644); err != nil {
		return errors.Wrap(err, "jobstore.commandlog", "failed to write command log")
	}
	return nil
}

// MarkCompleted transitions processing -> completed and records the output
// URL. Returns ErrTerminal if the job already reached a terminal state.
func (s *Store) MarkCompleted(jobID, outputURL string) error {
	return s.transition(jobID, func(job *Job) {
		job.Status = StatusCompleted
		job.OutputURL = &outputURL
	})
}

// MarkFailed transitions processing -> failed and records the error text.
// Returns ErrTerminal if the job already reached a terminal state.
func (s *Store) MarkFailed(jobID, errText string) error {
	return s.transition(jobID, func(job *Job) {
		job.Status = StatusFailed
		job.Error = &errText
	})
}

func (s *Store) transition(jobID string, apply func(*Job)) error {
	job, err := s.Get(jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return ErrTerminal
	}

	now := time.Now().UTC()
	job.CompletedAt = &now
	apply(job)

	if err := writeJSON(s.statusPath(jobID), job); err != nil {
		return errors.Wrap(err, "jobstore.transition", "failed to persist job status")
	}
	return nil
}

// writeJSON writes via a temp file and rename so a concurrent reader never
// observes a partially written record.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp", path)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
