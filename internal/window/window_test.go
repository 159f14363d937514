package window

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestWindow_Boundary(t *testing.T) {
	w := Window{LastInboundAt: base}

	assert.True(t, w.IsOpen(base.Add(Duration-time.Second)))
	assert.True(t, w.IsOpen(base.Add(Duration-time.Nanosecond)))
	assert.False(t, w.IsOpen(base.Add(Duration)))
	assert.Equal(t, Closed, w.State(base.Add(Duration)))
	assert.Equal(t, time.Duration(0), w.Remaining(base.Add(Duration)))
	assert.Equal(t, time.Duration(0), w.Remaining(base.Add(48*time.Hour)))
}

func TestWindow_NeverOpened(t *testing.T) {
	var w Window

	assert.False(t, w.IsOpen(base))
	assert.Equal(t, Closed, w.State(base))
	assert.Equal(t, Capabilities{FreeForm: false, TemplateOnly: true}, w.Capabilities(base))

	s := w.Snapshot(base)
	assert.Nil(t, s.LastInboundAt)
	assert.Nil(t, s.ExpiresAt)
	assert.Equal(t, "expired", s.RemainingLabel)
}

func TestWindow_Snapshot(t *testing.T) {
	w := Window{LastInboundAt: base}
	now := base.Add(20*time.Hour + 30*time.Second)

	s := w.Snapshot(now)

	assert.Equal(t, Open, s.State)
	assert.True(t, s.IsOpen)
	assert.Equal(t, int64(4*3600-30), s.RemainingSeconds)
	assert.Equal(t, "3h 59m", s.RemainingLabel)
	assert.Equal(t, Capabilities{FreeForm: true}, s.Capabilities)
	require.NotNil(t, s.ExpiresAt)
	assert.True(t, base.Add(Duration).Equal(*s.ExpiresAt))
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "expired"},
		{-time.Minute, "expired"},
		{30 * time.Second, "<1m"},
		{time.Minute + 59*time.Second, "1m"},
		{45 * time.Minute, "45m"},
		{60 * time.Minute, "60m"},
		{61 * time.Minute, "1h 1m"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23h 59m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRemaining(tc.in), tc.in.String())
	}
}

func TestTracker_Monotonic(t *testing.T) {
	tr := NewTracker()
	key := WhatsApp("254700000001")

	assert.True(t, tr.Observe(key, base))
	assert.False(t, tr.Observe(key, base.Add(-time.Hour)), "older timestamp ignored")
	assert.False(t, tr.Observe(key, base), "same timestamp is idempotent")
	assert.False(t, tr.Observe(key, time.Time{}))

	last, ok := tr.LastInbound(key)
	require.True(t, ok)
	assert.True(t, last.Equal(base))
}

func TestTracker_NewerInboundReopensClosedWindow(t *testing.T) {
	tr := NewTracker()
	key := WhatsApp("254700000002")
	tr.Observe(key, base)

	later := base.Add(30 * time.Hour)
	assert.False(t, tr.Window(key).IsOpen(later))

	assert.True(t, tr.Observe(key, later.Add(-time.Minute)))
	assert.True(t, tr.Window(key).IsOpen(later))
}

func TestTracker_KeysAreIndependent(t *testing.T) {
	tr := NewTracker()
	a := WhatsApp("a")
	b := Key{ContactID: "a", Channel: "sms"}

	tr.Observe(a, base)

	_, ok := tr.LastInbound(b)
	assert.False(t, ok)
	assert.False(t, tr.Window(b).IsOpen(base))
}

func TestTracker_ConcurrentObserveKeepsMax(t *testing.T) {
	tr := NewTracker()
	key := WhatsApp("race")

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Observe(key, base.Add(time.Duration(i)*time.Second))
			_ = tr.Window(key).IsOpen(base)
		}(i)
	}
	wg.Wait()

	last, ok := tr.LastInbound(key)
	require.True(t, ok)
	assert.True(t, last.Equal(base.Add(63*time.Second)))
}

type stubSource struct {
	entries []Entry
	err     error
}

func (s stubSource) LastInbound(context.Context) ([]Entry, error) {
	return s.entries, s.err
}

func TestRefresher_Refresh(t *testing.T) {
	tr := NewTracker()
	key := WhatsApp("c1")
	tr.Observe(key, base.Add(time.Hour))

	r := NewRefresher(tr, stubSource{entries: []Entry{
		{Key: key, LastInboundAt: base},
		{Key: WhatsApp("c2"), LastInboundAt: base},
	}}, "")

	n, err := r.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	last, _ := tr.LastInbound(key)
	assert.True(t, last.Equal(base.Add(time.Hour)), "refresh never moves a window backward")
}

func TestRefresher_StartPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	r := NewRefresher(NewTracker(), stubSource{err: boom}, "")
	assert.ErrorIs(t, r.Start(context.Background()), boom)

	bad := NewRefresher(NewTracker(), stubSource{}, "not a schedule")
	assert.Error(t, bad.Start(context.Background()))
}

func TestRefresher_StartStop(t *testing.T) {
	r := NewRefresher(NewTracker(), stubSource{}, "@every 1h")
	require.NoError(t, r.Start(context.Background()))
	r.Stop()
}
