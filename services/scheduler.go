package services

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"social-analytics/models"
	"social-analytics/platforms"
	"social-analytics/utils"
)

// ClientSource resolves the platform client used to dispatch posts.
type ClientSource interface {
	Client(p models.Platform) platforms.Client
}

// Scheduler posts messages immediately or at a requested time. Deferred
// jobs sit in a queue ordered by run time, then by insertion, and are
// executed by a single loop started with Run. Each job gets one attempt.
type Scheduler struct {
	clients ClientSource
	logger  *utils.Logger
	tick    time.Duration
	timeout time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	queue jobQueue
	jobs  map[string]*models.ScheduledJob
	order []string
	seq   uint64
}

// NewScheduler creates a Scheduler that checks for due jobs every tick.
// timeout bounds each dispatch call; zero means no bound.
func NewScheduler(clients ClientSource, logger *utils.Logger, tick, timeout time.Duration) *Scheduler {
	return &Scheduler{
		clients: clients,
		logger:  logger,
		tick:    tick,
		timeout: timeout,
		now:     time.Now,
		jobs:    make(map[string]*models.ScheduledJob),
	}
}

// PostNow dispatches synchronously. Any dispatch failure is logged and
// reported as false.
func (s *Scheduler) PostNow(ctx context.Context, platform models.Platform, message string) bool {
	if err := s.dispatch(ctx, platform, message); err != nil {
		s.logger.Error("[scheduler] Error posting update to %s: %v", platform, err)
		postsDispatched.WithLabelValues(platform.String(), "failure").Inc()
		return false
	}
	postsDispatched.WithLabelValues(platform.String(), "success").Inc()
	return true
}

// Schedule records a pending job and returns its id. A runAt in the past
// or present makes the job due on the next tick.
func (s *Scheduler) Schedule(platform models.Platform, message string, runAt time.Time) string {
	job := &models.ScheduledJob{
		ID:        uuid.NewString(),
		Platform:  platform,
		Message:   message,
		RunAt:     runAt,
		Status:    models.JobPending,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, queuedJob{job: job, seq: s.seq})
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.mu.Unlock()

	jobsScheduled.Inc()
	jobsPending.Inc()
	s.logger.Info("[scheduler] Job %s scheduled for %s at %s", job.ID, platform, runAt.Format(time.RFC3339))
	return job.ID
}

// Job returns a copy of the job with the given id.
func (s *Scheduler) Job(id string) (models.ScheduledJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.ScheduledJob{}, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	return copyJob(job), nil
}

// Jobs returns copies of all retained jobs in scheduling order.
func (s *Scheduler) Jobs() []models.ScheduledJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ScheduledJob, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyJob(s.jobs[id]))
	}
	return out
}

// Prune drops terminal jobs that finished more than olderThan ago and
// returns how many were removed.
func (s *Scheduler) Prune(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		job := s.jobs[id]
		if job.Status.Terminal() && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

// Run drives due-job execution until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.logger.Info("[scheduler] Started, tick every %v", s.tick)
	s.runDue(ctx, s.now())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("[scheduler] Stopped")
			return
		case <-ticker.C:
			s.runDue(ctx, s.now())
		}
	}
}

// runDue executes every job due at now, earliest first, and returns the
// number executed. A job turns Executing only right before its own dispatch;
// jobs not yet started when ctx is cancelled stay Pending and go back on the
// queue.
func (s *Scheduler) runDue(ctx context.Context, now time.Time) int {
	due := s.popDue(now)

	executed := 0
	for i, qj := range due {
		if ctx.Err() != nil {
			s.requeue(due[i:])
			break
		}
		s.start(qj.job)
		err := s.dispatch(ctx, qj.job.Platform, qj.job.Message)
		s.finish(qj.job, err)
		executed++
	}
	return executed
}

// popDue removes due jobs from the queue without changing their status.
func (s *Scheduler) popDue(now time.Time) []queuedJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []queuedJob
	for s.queue.Len() > 0 && !s.queue[0].job.RunAt.After(now) {
		due = append(due, heap.Pop(&s.queue).(queuedJob))
	}
	return due
}

// requeue puts back jobs that never left Pending.
func (s *Scheduler) requeue(jobs []queuedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, qj := range jobs {
		heap.Push(&s.queue, qj)
	}
}

func (s *Scheduler) start(job *models.ScheduledJob) {
	started := s.now()

	s.mu.Lock()
	job.Status = models.JobExecuting
	job.StartedAt = &started
	s.mu.Unlock()
}

func (s *Scheduler) finish(job *models.ScheduledJob, err error) {
	finished := s.now()

	s.mu.Lock()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = models.JobFailed
		job.Error = err.Error()
	} else {
		job.Status = models.JobCompleted
	}
	status := job.Status
	s.mu.Unlock()

	jobsPending.Dec()
	jobsFinished.WithLabelValues(job.Platform.String(), string(status)).Inc()
	if err != nil {
		s.logger.Error("[scheduler] Job %s to %s failed: %v", job.ID, job.Platform, err)
		return
	}
	s.logger.Info("[scheduler] Job %s posted to %s", job.ID, job.Platform)
}

// dispatch calls the platform client without holding any scheduler lock.
// A panicking client is reported as an external service failure.
func (s *Scheduler) dispatch(ctx context.Context, platform models.Platform, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: dispatcher panic: %v", models.ErrExternalService, r)
		}
	}()

	client := s.clients.Client(platform)
	if client == nil {
		return fmt.Errorf("%w: %s", models.ErrUnsupportedPlatform, platform)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return client.Post(ctx, message)
}

func copyJob(job *models.ScheduledJob) models.ScheduledJob {
	out := *job
	if job.StartedAt != nil {
		t := *job.StartedAt
		out.StartedAt = &t
	}
	if job.FinishedAt != nil {
		t := *job.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

type queuedJob struct {
	job *models.ScheduledJob
	seq uint64
}

// jobQueue is a min-heap on (RunAt, seq).
type jobQueue []queuedJob

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	a, b := q[i].job.RunAt, q[j].job.RunAt
	if a.Equal(b) {
		return q[i].seq < q[j].seq
	}
	return a.Before(b)
}

func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobQueue) Push(x any) { *q = append(*q, x.(queuedJob)) }

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
