package jobstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/scene"
)

func testScene() *scene.Scene {
	return &scene.Scene{
		Output: scene.Output{
			Resolution:      scene.Resolution{Width: 1080, Height: 1920},
			FrameRate:       30,
			Format:          scene.FormatMP4,
			Duration:        10,
			BackgroundColor: "black",
		},
	}
}

func TestCreatePersistsDirectoryAndRecords(t *testing.T) {
	s := New(t.TempDir())

	job, err := s.Create("job-1", testScene())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Status != StatusProcessing {
		t.Errorf("status = %q", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if job.CompletedAt != nil || job.Error != nil || job.OutputURL != nil {
		t.Errorf("fresh job carries terminal fields: %+v", job)
	}

	for _, f := range []string{"input.json", "status.json"} {
		if _, err := os.Stat(filepath.Join(s.Dir("job-1"), f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
}

func TestGetRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	created, err := s.Create("job-1", testScene())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.JobID != created.JobID || got.Status != created.Status {
		t.Errorf("got %+v, want %+v", got, created)
	}
}

func TestGetUnknownJob(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkCompleted(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Create("job-1", testScene()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.MarkCompleted("job-1", "/clips/job-1/download"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	job, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusCompleted {
		t.Errorf("status = %q", job.Status)
	}
	if job.OutputURL == nil || *job.OutputURL != "/clips/job-1/download" {
		t.Errorf("output_url = %v", job.OutputURL)
	}
	if job.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if job.Error != nil {
		t.Errorf("error = %v", job.Error)
	}
}

func TestMarkFailed(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Create("job-1", testScene()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.MarkFailed("job-1", "encoder exploded"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	job, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusFailed {
		t.Errorf("status = %q", job.Status)
	}
	if job.Error == nil || *job.Error != "encoder exploded" {
		t.Errorf("error = %v", job.Error)
	}
	if job.OutputURL != nil {
		t.Errorf("output_url = %v", job.OutputURL)
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Create("job-1", testScene()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.MarkCompleted("job-1", "url"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	if err := s.MarkFailed("job-1", "too late"); !errors.Is(err, ErrTerminal) {
		t.Fatalf("MarkFailed after completion = %v, want ErrTerminal", err)
	}
	if err := s.MarkCompleted("job-1", "other"); !errors.Is(err, ErrTerminal) {
		t.Fatalf("double MarkCompleted = %v, want ErrTerminal", err)
	}

	// The original record survives the rejected transitions.
	job, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusCompleted || *job.OutputURL != "url" {
		t.Errorf("record changed: %+v", job)
	}
}

func TestWriteCommandLog(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Create("job-1", testScene()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	argv := []string{"ffmpeg", "-y", "-i", "in.mp4", "out.mp4"}
	if err := s.WriteCommandLog("job-1", argv); err != nil {
		t.Fatalf("WriteCommandLog: %v", err)
	}

	data, err := os.ReadFile(s.CommandLogPath("job-1"))
	if err != nil {
		t.Fatalf("read command log: %v", err)
	}
	if string(data) != "ffmpeg -y -i in.mp4 out.mp4" {
		t.Errorf("command log = %q", data)
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusProcessing.Terminal() {
		t.Error("processing must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}
