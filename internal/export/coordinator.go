package export

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/util/logx"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Result is the terminal outcome of an export job. Exactly one Result is
// delivered per job.
type Result struct {
	Data      []byte
	Filename  string
	MIME      string
	Err       error
	Cancelled bool
}

// Job is a handle to one export request. Done is buffered, so an abandoned
// handle never blocks the runner and the job can finish fire-and-forget.
type Job struct {
	ID     string
	Format Format

	mu       sync.Mutex
	status   Status
	entities []model.Entity
	done     chan Result
	cancel   context.CancelFunc
}

func (j *Job) Done() <-chan Result { return j.done }

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	j.status = s
	j.mu.Unlock()
}

// Coordinator runs export jobs one at a time. A request made while a job is
// running is queued; a newer request replaces the queued one (last-write-wins)
// and the superseded job resolves as cancelled. Each job serializes an
// immutable snapshot of the entities taken at request time.
type Coordinator struct {
	mu         sync.Mutex
	running    *Job
	pending    *Job
	compress   bool
	serializer func(Format, []model.Entity) (string, error)
}

func NewCoordinator(compress bool) *Coordinator {
	return &Coordinator{compress: compress, serializer: Serialize}
}

// Request snapshots the entity list and schedules an export. The returned
// handle resolves on Done exactly once.
func (c *Coordinator) Request(format Format, entities []model.Entity) *Job {
	job := &Job{
		ID:       uuid.NewString(),
		Format:   format,
		status:   StatusPending,
		entities: append([]model.Entity(nil), entities...),
		done:     make(chan Result, 1),
	}
	c.mu.Lock()
	if c.running == nil {
		c.startLocked(job)
		c.mu.Unlock()
		return job
	}
	superseded := c.pending
	c.pending = job
	c.mu.Unlock()
	if superseded != nil {
		superseded.setStatus(StatusCancelled)
		superseded.done <- Result{Cancelled: true}
		logx.Debugf("export: job %s superseded by %s", superseded.ID, job.ID)
	}
	return job
}

// Cancel cooperatively stops the job. A queued job resolves immediately; a
// running one may finish its current write but its result is dropped.
func (c *Coordinator) Cancel(job *Job) {
	if job == nil {
		return
	}
	c.mu.Lock()
	if c.pending == job {
		c.pending = nil
		c.mu.Unlock()
		job.setStatus(StatusCancelled)
		job.done <- Result{Cancelled: true}
		return
	}
	cancel := job.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Running reports whether a job is currently serializing.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running != nil
}

func (c *Coordinator) startLocked(job *Job) {
	ctx, cancel := context.WithCancel(context.Background())
	job.mu.Lock()
	job.status = StatusRunning
	job.cancel = cancel
	job.mu.Unlock()
	c.running = job
	go c.run(ctx, job)
}

func (c *Coordinator) run(ctx context.Context, job *Job) {
	res := c.serialize(ctx, job)

	c.mu.Lock()
	c.running = nil
	next := c.pending
	c.pending = nil
	if next != nil {
		c.startLocked(next)
	}
	c.mu.Unlock()

	switch {
	case res.Cancelled:
		job.setStatus(StatusCancelled)
	case res.Err != nil:
		job.setStatus(StatusFailed)
		logx.Warnf("export: job %s failed: %v", job.ID, res.Err)
	default:
		job.setStatus(StatusCompleted)
		logx.Infof("export: job %s completed (%d bytes, %s)", job.ID, len(res.Data), res.Filename)
	}
	job.done <- res
}

func (c *Coordinator) serialize(ctx context.Context, job *Job) Result {
	if ctx.Err() != nil {
		return Result{Cancelled: true}
	}
	s, err := c.serializer(job.Format, job.entities)
	if err != nil {
		return Result{Err: err}
	}
	if ctx.Err() != nil {
		return Result{Cancelled: true}
	}
	data := []byte(s)
	if c.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return Result{Err: err}
		}
		if err := zw.Close(); err != nil {
			return Result{Err: err}
		}
		data = buf.Bytes()
	}
	return Result{
		Data:     data,
		Filename: Filename(job.Format, c.compress),
		MIME:     job.Format.MIME(),
	}
}
