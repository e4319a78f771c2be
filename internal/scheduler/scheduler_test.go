package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_RunsJobOnSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Greater(t, job.runs.Load(), int32(0))
}

func TestScheduler_JobErrorDoesNotStopScheduler(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: assert.AnError}
	require.NoError(t, s.AddJob("@every 10ms", job))

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, job.runs.Load(), int32(2), "keeps firing after a failure")
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.AddJob("not a cron expression", &countingJob{})
	assert.Error(t, err)
}
