package guard

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard() (*VoteGuard, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := NewVoteGuard(500 * time.Millisecond)
	g.now = clock.now
	return g, clock
}

func TestDebounceWindow(t *testing.T) {
	g, clock := newTestGuard()
	calls := 0
	vote := func() error { calls++; return nil }

	require.NoError(t, g.Do("alice", "t1", vote))

	clock.advance(499 * time.Millisecond)
	assert.ErrorIs(t, g.Do("alice", "t1", vote), ErrDebounced)

	clock.advance(time.Millisecond)
	assert.NoError(t, g.Do("alice", "t1", vote))

	assert.Equal(t, 2, calls)
}

func TestDebounceIsPerUserAndTarget(t *testing.T) {
	g, _ := newTestGuard()
	noop := func() error { return nil }

	require.NoError(t, g.Do("alice", "t1", noop))
	assert.NoError(t, g.Do("alice", "t2", noop))
	assert.NoError(t, g.Do("bob", "t1", noop))
	assert.ErrorIs(t, g.Do("alice", "t1", noop), ErrDebounced)
}

func TestInFlightRejectsDuplicate(t *testing.T) {
	g, clock := newTestGuard()

	var nested error
	err := g.Do("alice", "t1", func() error {
		clock.advance(time.Second)
		nested = g.Do("alice", "t1", func() error { return nil })
		return nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrInFlight)

	clock.advance(time.Second)
	assert.NoError(t, g.Do("alice", "t1", func() error { return nil }))
}

func TestDoReturnsCallbackError(t *testing.T) {
	g, clock := newTestGuard()
	boom := errors.New("boom")

	assert.ErrorIs(t, g.Do("alice", "t1", func() error { return boom }), boom)

	clock.advance(time.Second)
	assert.NoError(t, g.Do("alice", "t1", func() error { return nil }), "failed calls do not leave the key in flight")
}

func TestPruneDropsExpiredKeys(t *testing.T) {
	g, clock := newTestGuard()
	noop := func() error { return nil }

	for i := 0; i <= pruneThreshold; i++ {
		require.NoError(t, g.Do("user", "t"+strconv.Itoa(i), noop))
	}
	clock.advance(time.Second)
	require.NoError(t, g.Do("user", "fresh", noop))

	assert.Len(t, g.last, 1)
}
