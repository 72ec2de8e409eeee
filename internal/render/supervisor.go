// Package render supervises the asynchronous execution of compiled encoder
// commands. Submit compiles, persists and schedules a job, then returns
// immediately; a detached goroutine runs the encode to completion and the
// job store is the only synchronization point between the submitting flow
// and the supervisor flow.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clipforge/internal/compiler"
	"clipforge/internal/jobstore"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/ports"
	"clipforge/internal/scene"
)

// Deps wires the supervisor's collaborators. Publisher is optional; when
// nil, completed jobs point at the local download route.
type Deps struct {
	Store     *jobstore.Store
	Compiler  *compiler.Compiler
	Publisher ports.StorageProvider
	Log       *logger.Logger
}

// Supervisor owns the job-keyed registry of running encodes. One job is
// one subprocess; jobs share nothing beyond their own directory.
type Supervisor struct {
	store     *jobstore.Store
	compiler  *compiler.Compiler
	publisher ports.StorageProvider
	log       *logger.Logger

	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

func New(d Deps) *Supervisor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Supervisor{
		store:     d.Store,
		compiler:  d.Compiler,
		publisher: d.Publisher,
		log:       log.WithComponent("render"),
		running:   make(map[string]struct{}),
	}
}

// Submit validates nothing — the scene must already have passed
// scene.Validate. It compiles the command, persists the job in processing
// state, schedules the encode on a detached goroutine and returns the
// initial record without blocking on the encode. Compilation errors are
// surfaced synchronously; execution and infrastructure failures are only
// ever recorded into the job record.
func (s *Supervisor) Submit(ctx context.Context, sc *scene.Scene) (*jobstore.Job, error) {
	jobID := uuid.NewString()
	outputPath := s.store.OutputPath(jobID, sc.Output.Format)

	argv, err := s.compiler.Compile(sc, outputPath)
	if err != nil {
		return nil, err
	}

	job, err := s.store.Create(jobID, sc)
	if err != nil {
		return nil, err
	}
	if err := s.store.WriteCommandLog(jobID, argv); err != nil {
		return nil, err
	}

	log := s.log.FromContext(ctx).WithJobID(jobID)
	log.Info("job submitted",
		"elements", len(sc.Elements),
		"duration_s", sc.Output.Duration,
	)

	s.mu.Lock()
	s.running[jobID] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)

	go s.run(jobID, argv, outputPath, sc.Output.Format)

	return job, nil
}

// Running returns the number of jobs currently executing.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// Wait blocks until every scheduled encode has finished. Used by tests and
// graceful shutdown; it does not cancel anything — there is no cancellation
// path once a subprocess is spawned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// run executes one compiled command to completion. It deliberately ignores
// the submitting request's context: once spawned, an encode is never
// cancelled by the caller going away.
func (s *Supervisor) run(jobID string, argv []string, outputPath string, format scene.Format) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.running, jobID)
		s.mu.Unlock()
	}()

	log := s.log.WithJobID(jobID)
	start := time.Now()

	stderrText, err := s.execute(jobID, argv)
	if err != nil {
		msg := err.Error()
		if stderrText != "" {
			msg = stderrText
		}
		s.fail(jobID, msg)
		log.Error("encode failed",
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	st, statErr := os.Stat(outputPath)
	if statErr != nil || st.Size() == 0 {
		s.fail(jobID, "encoder exited successfully but the output file is missing or empty")
		log.Error("encode produced no output", "output", outputPath)
		return
	}

	outputURL := s.publish(jobID, outputPath, format, log)
	if err := s.store.MarkCompleted(jobID, outputURL); err != nil {
		log.WithError(err).Error("failed to mark job completed")
		return
	}
	log.Info("encode completed",
		"output", outputPath,
		"size_bytes", st.Size(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// execute spawns the encoder and captures both output streams in full,
// persisting them to the job directory regardless of outcome. The returned
// string is the captured standard-error text.
func (s *Supervisor) execute(jobID string, argv []string) (string, error) {
	cmd := exec.Command(argv[0], argv[1:]...)

	stdoutFile, err := os.Create(s.store.StdoutLogPath(jobID))
	if err != nil {
		return "", fmt.Errorf("create stdout log: %w", err)
	}
	defer stdoutFile.Close()

	stderrFile, err := os.Create(s.store.StderrLogPath(jobID))
	if err != nil {
		return "", fmt.Errorf("create stderr log: %w", err)
	}
	defer stderrFile.Close()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("spawn encoder: %w", err)
	}

	var stderrBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(stdoutFile, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(stderrFile, &stderrBuf), stderr)
		return err
	})

	copyErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		return stderrBuf.String(), fmt.Errorf("encoder exited: %w", waitErr)
	}
	if copyErr != nil {
		return stderrBuf.String(), fmt.Errorf("capture encoder output: %w", copyErr)
	}
	return stderrBuf.String(), nil
}

// publish pushes the artifact through the configured storage provider and
// returns the URL to record. Publish failures never fail the job — the
// encode itself succeeded — they fall back to the local download route.
func (s *Supervisor) publish(jobID, outputPath string, format scene.Format, log *logger.Logger) string {
	localURL := "/clips/" + jobID + "/download"
	if s.publisher == nil {
		return localURL
	}

	f, err := os.Open(outputPath)
	if err != nil {
		log.WithError(err).Warn("publish skipped, cannot open output")
		return localURL
	}
	defer f.Close()

	st, _ := f.Stat()
	var size int64
	if st != nil {
		size = st.Size()
	}

	objectKey := fmt.Sprintf("renders/%s/output.%s", jobID, format)
	out, err := s.publisher.PutObject(context.Background(), ports.PutObjectInput{
		ObjectKey:   objectKey,
		ContentType: contentTypeFor(format),
		Reader:      f,
		Size:        size,
	})
	if err != nil {
		log.WithError(err).Warn("publish failed, falling back to local url",
			"provider", s.publisher.Provider(),
		)
		return localURL
	}

	log.Info("output published",
		"provider", s.publisher.Provider(),
		"object_key", out.ObjectKey,
	)
	return out.ObjectKey
}

func (s *Supervisor) fail(jobID, msg string) {
	if err := s.store.MarkFailed(jobID, msg); err != nil {
		s.log.WithJobID(jobID).WithError(err).Error("failed to mark job failed")
	}
}

func contentTypeFor(format scene.Format) string {
	switch format {
	case scene.FormatMP4:
		return "video/mp4"
	case scene.FormatMOV:
		return "video/quicktime"
	case scene.FormatAVI:
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}
