package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type fakeProcessor struct {
	results []bool
	err     error
	calls   int
}

func (f *fakeProcessor) ProcessNext(context.Context) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if len(f.results) == 0 {
		return false, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func TestScheduler_DrainStopsWhenQueueEmpty(t *testing.T) {
	p := &fakeProcessor{results: []bool{true, true, false, true}}
	s, err := NewScheduler(logger.Discard(), "*/5 * * * * *", p)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Drain(context.Background()))
	assert.Equal(t, 3, p.calls)
}

func TestScheduler_DrainCapsTasksPerTick(t *testing.T) {
	results := make([]bool, maxTasksPerTick+5)
	for i := range results {
		results[i] = true
	}
	p := &fakeProcessor{results: results}
	s, err := NewScheduler(logger.Discard(), "@every 1m", p)
	require.NoError(t, err)

	assert.Equal(t, maxTasksPerTick, s.Drain(context.Background()))
}

func TestScheduler_DrainStopsOnError(t *testing.T) {
	p := &fakeProcessor{err: errors.New("store down")}
	s, err := NewScheduler(logger.Discard(), "*/5 * * * * *", p)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Drain(context.Background()))
	assert.Equal(t, 1, p.calls)
}

func TestScheduler_DrainHonoursCancel(t *testing.T) {
	p := &fakeProcessor{results: []bool{true}}
	s, err := NewScheduler(logger.Discard(), "*/5 * * * * *", p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, s.Drain(ctx))
	assert.Zero(t, p.calls)
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(logger.Discard(), "every now and then", &fakeProcessor{})
	assert.Error(t, err)
}
