package reactive

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	verrors "github.com/vango-dev/vloop/internal/errors"
)

var jobIDs atomic.Uint64

// Job is a unit of deferred work. Jobs are deduplicated by pointer
// identity: enqueueing the same *Job twice before a flush runs it once.
type Job struct {
	id   uint64
	name string
	fn   func()
}

// NewJob creates a job. The name appears in logs and metrics.
func NewJob(name string, fn func()) *Job {
	return &Job{id: jobIDs.Add(1), name: name, fn: fn}
}

// Name returns the job name.
func (j *Job) Name() string {
	return j.name
}

// Scheduler batches jobs until the runtime reaches a checkpoint.
//
// Each flush pass runs, in order: pre jobs (watch callbacks), regular jobs
// (component updates) and post jobs (mounted/updated hooks). Every queue is
// deduplicated and cleared before its jobs run, so a job enqueued during a
// pass lands in the next pass of the same checkpoint.
type Scheduler struct {
	rt *Runtime

	pre  []*Job
	jobs []*Job
	post []*Job

	flushPending bool
	flushing     bool
	limit        int
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{rt: rt, limit: DefaultFlushLimit}
}

// Enqueue schedules job for the next flush.
func (s *Scheduler) Enqueue(job *Job) {
	s.jobs = append(s.jobs, job)
	s.flushPending = true
}

// EnqueuePre schedules job to run before regular jobs.
func (s *Scheduler) EnqueuePre(job *Job) {
	s.pre = append(s.pre, job)
	s.flushPending = true
}

// EnqueuePost schedules job to run after regular jobs.
func (s *Scheduler) EnqueuePost(job *Job) {
	s.post = append(s.post, job)
	s.flushPending = true
}

// Pending returns the number of queued jobs, duplicates included.
func (s *Scheduler) Pending() int {
	return len(s.pre) + len(s.jobs) + len(s.post)
}

// FlushPending reports whether a flush has been requested and not run yet.
func (s *Scheduler) FlushPending() bool {
	return s.flushPending
}

func (s *Scheduler) reset() {
	s.pre, s.jobs, s.post = nil, nil, nil
	s.flushPending = false
	s.flushing = false
}

// flush drains the queues. Re-entrant calls return immediately; the outer
// flush picks up whatever they would have run.
func (s *Scheduler) flush() {
	if s.flushing || !s.flushPending {
		return
	}
	s.flushing = true
	stats := FlushStats{Start: time.Now()}
	defer func() {
		s.flushing = false
		s.flushPending = s.Pending() > 0
		stats.Duration = time.Since(stats.Start)
		if s.rt.observer != nil && stats.Jobs > 0 {
			s.rt.observer.OnFlush(stats)
		}
	}()

	for s.Pending() > 0 {
		if stats.Passes >= s.limit {
			stats.Dropped = s.Pending()
			err := verrors.New("E202").
				WithDetail(fmt.Sprintf("%d passes without settling", stats.Passes)).
				WithField("dropped", stats.Dropped)
			s.rt.logger.Error("flush limit exceeded", err.LogAttrs()...)
			s.pre, s.jobs, s.post = nil, nil, nil
			return
		}
		stats.Passes++

		for _, queue := range []*[]*Job{&s.pre, &s.jobs, &s.post} {
			batch := dedupJobs(*queue)
			*queue = nil
			for _, job := range batch {
				stats.Jobs++
				if err := s.runJob(job); err != nil {
					stats.Failed++
				}
			}
		}
	}
}

// runJob runs one job, turning a panic into a logged error.
func (s *Scheduler) runJob(job *Job) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		le := verrors.FromPanic(r, "E203").WithField("job", job.name)
		s.rt.logger.Error("scheduled job panicked",
			append(le.LogAttrs(), "stack", string(debug.Stack()))...)
		if s.rt.observer != nil {
			s.rt.observer.OnJobPanic(job.name, le)
		}
		err = le
	}()
	job.fn()
	return nil
}

// dedupJobs keeps the first occurrence of each job.
func dedupJobs(jobs []*Job) []*Job {
	if len(jobs) < 2 {
		return jobs
	}
	seen := make(map[*Job]struct{}, len(jobs))
	unique := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j]; ok {
			continue
		}
		seen[j] = struct{}{}
		unique = append(unique, j)
	}
	return unique
}
