package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddValidation(t *testing.T) {
	s := New(context.Background(), map[string]Task{
		TaskStats: func(context.Context, map[string]string) error { return nil },
	})

	_, err := s.Add(JobConfig{Name: "nightly", Spec: "0 3 * * *", Task: "deploy"})
	assert.EqualError(t, err, "job 'nightly': unknown task 'deploy'")

	_, err = s.Add(JobConfig{Name: "broken", Spec: "every day", Task: TaskStats})
	assert.ErrorContains(t, err, "job 'broken': invalid schedule 'every day'")

	_, err = s.Add(JobConfig{Spec: "@daily", Task: TaskStats})
	require.NoError(t, err)
	_, err = s.Add(JobConfig{Name: "hourly-stats", Spec: "0 * * * *", Task: TaskStats})
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 2)
	names := []string{entries[0].Name, entries[1].Name}
	assert.ElementsMatch(t, []string{"stats", "hourly-stats"}, names)
}

func TestAddAll(t *testing.T) {
	s := New(context.Background(), map[string]Task{
		TaskSync: func(context.Context, map[string]string) error { return nil },
	})

	assert.EqualError(t, s.AddAll(Config{}), "no scheduled jobs configured")

	err := s.AddAll(Config{Jobs: []JobConfig{
		{Name: "sync", Spec: "*/30 * * * *", Task: TaskSync},
		{Name: "gap", Spec: "@hourly", Task: TaskGap},
	}})
	assert.EqualError(t, err, "job 'gap': unknown task 'gap'")
}

func TestJobReceivesArgs(t *testing.T) {
	var got map[string]string
	s := New(context.Background(), map[string]Task{
		TaskReadme: func(_ context.Context, args map[string]string) error {
			got = args
			return errors.New("readme locked")
		},
	})

	id, err := s.Add(JobConfig{Name: "readme", Spec: "@daily", Task: TaskReadme, Args: map[string]string{"readme": "README.md"}})
	require.NoError(t, err)

	s.cron.Entry(id).WrappedJob.Run()
	assert.Equal(t, map[string]string{"readme": "README.md"}, got)
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	s := New(context.Background(), map[string]Task{
		TaskGap: func(context.Context, map[string]string) error {
			calls.Add(1)
			close(started)
			<-release
			return nil
		},
	})
	id, err := s.Add(JobConfig{Name: "gap", Spec: "@every 1m", Task: TaskGap})
	require.NoError(t, err)

	job := s.cron.Entry(id).WrappedJob
	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	job.Run()
	close(release)
	<-done

	assert.EqualValues(t, 1, calls.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(context.Background(), map[string]Task{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
