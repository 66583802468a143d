package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dipanshu.dev/internal/contact"
	"dipanshu.dev/internal/playback"
)

var tracks = []string{"/media/track1.mp3", "/media/track2.mp3", "/media/track3.mp3"}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return true }

// stepClock never fires timers; tests move time with Add and rely on
// restore deriving the success reset.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) AfterFunc(time.Duration, func()) contact.Timer { return stoppedTimer{} }

func (c *stepClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(relay contact.Relay) (*Service, *stepClock) {
	clock := newStepClock()
	return NewService(NewMemoryStore(time.Hour), relay, tracks, WithClock(clock)), clock
}

func strPtr(s string) *string { return &s }

func okRelay() contact.Relay {
	return contact.RelayFunc(func(context.Context, contact.Submission) error { return nil })
}

func TestStartGivesFreshState(t *testing.T) {
	svc, _ := newTestService(okRelay())
	ctx := context.Background()

	a, err := svc.Start(ctx)
	require.NoError(t, err)
	b, err := svc.Start(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.False(t, a.Theme.Dark)
	assert.Equal(t, contact.StatusIdle, a.Form.Status)
	assert.Equal(t, playback.NoTrack, a.Player.Selected)
	assert.True(t, a.Element.Paused)
}

func TestUnknownSession(t *testing.T) {
	svc, _ := newTestService(okRelay())
	_, err := svc.ToggleTheme(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Submit(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleThemePersists(t *testing.T) {
	svc, _ := newTestService(okRelay())
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)

	v, err = svc.ToggleTheme(ctx, v.SessionID)
	require.NoError(t, err)
	assert.True(t, v.Theme.Dark)
	assert.Equal(t, "bg-gray-900", v.Theme.Background)

	v, err = svc.View(ctx, v.SessionID)
	require.NoError(t, err)
	assert.True(t, v.Theme.Dark)
}

func TestSubmitScenario(t *testing.T) {
	var got contact.Submission
	relay := contact.RelayFunc(func(_ context.Context, s contact.Submission) error {
		got = s
		return nil
	})
	svc, clock := newTestService(relay)
	ctx := context.Background()

	v, err := svc.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID

	_, err = svc.SetFields(ctx, id, FieldUpdate{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Message: strPtr("Hi")})
	require.NoError(t, err)

	v, err = svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio Contact from Ada", got.Subject)
	assert.Equal(t, contact.StatusSuccess, v.Form.Status)
	assert.Equal(t, contact.Fields{}, v.Form.Fields)
	assert.Equal(t, contact.SuccessMessage, v.FormMessage)

	clock.Add(2 * time.Second)
	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusSuccess, v.Form.Status)

	clock.Add(time.Second)
	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusIdle, v.Form.Status)
	assert.Empty(t, v.FormMessage)
}

func TestSubmitValidationFailure(t *testing.T) {
	called := false
	relay := contact.RelayFunc(func(context.Context, contact.Submission) error {
		called = true
		return nil
	})
	svc, _ := newTestService(relay)
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.SetFields(ctx, v.SessionID, FieldUpdate{Name: strPtr("Ada")})
	require.NoError(t, err)

	v, err = svc.Submit(ctx, v.SessionID)
	var ve *contact.ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotNil(t, v)
	assert.False(t, called)
	assert.Equal(t, contact.StatusError, v.Form.Status)
	assert.Equal(t, "Ada", v.Form.Fields.Name)
	assert.Equal(t, contact.ErrorMessage, v.FormMessage)
}

func TestSubmitRelayFailureKeepsFields(t *testing.T) {
	relay := contact.RelayFunc(func(context.Context, contact.Submission) error {
		return contact.NewRelayError(500)
	})
	svc, _ := newTestService(relay)
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID

	_, err = svc.SetFields(ctx, id, FieldUpdate{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Message: strPtr("Hi")})
	require.NoError(t, err)

	v, err = svc.Submit(ctx, id)
	require.Error(t, err)
	assert.Equal(t, contact.StatusError, v.Form.Status)
	assert.Equal(t, contact.Fields{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, v.Form.Fields)
}

func TestSessionUsableWhileSending(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	relay := contact.RelayFunc(func(context.Context, contact.Submission) error {
		close(entered)
		<-release
		return nil
	})
	svc, _ := newTestService(relay)
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID
	_, err = svc.SetFields(ctx, id, FieldUpdate{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Message: strPtr("Hi")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, id)
		done <- err
	}()
	<-entered

	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusSending, v.Form.Status)

	_, err = svc.Submit(ctx, id)
	assert.ErrorIs(t, err, contact.ErrSubmissionInFlight)

	v, err = svc.ToggleTheme(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Theme.Dark)

	close(release)
	require.NoError(t, <-done)

	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusSuccess, v.Form.Status)
	assert.True(t, v.Theme.Dark, "theme change during send must survive")
}

func TestSubmitSurvivesCancelledRequest(t *testing.T) {
	relay := contact.RelayFunc(func(ctx context.Context, _ contact.Submission) error {
		return ctx.Err()
	})
	svc, _ := newTestService(relay)
	v, err := svc.Start(context.Background())
	require.NoError(t, err)
	id := v.SessionID
	_, err = svc.SetFields(context.Background(), id, FieldUpdate{Name: strPtr("A"), Email: strPtr("B"), Message: strPtr("C")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err = svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contact.StatusSuccess, v.Form.Status)
}

func TestPlayerOperations(t *testing.T) {
	svc, _ := newTestService(okRelay())
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID

	v, err = svc.SelectTrack(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, playback.SelectedPlaying, v.Player.Position())
	assert.Equal(t, tracks[0], v.Element.Src)
	assert.False(t, v.Element.Paused)

	v, err = svc.SelectTrack(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Player.Selected)
	assert.Equal(t, tracks[1], v.Element.Src)

	v, err = svc.SetVolume(ctx, id, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.2, v.Element.Volume)
	assert.True(t, v.Player.Playing)

	v, err = svc.SelectTrack(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, playback.SelectedPaused, v.Player.Position())
	assert.True(t, v.Element.Paused)

	v, err = svc.SelectTrack(ctx, id, 1)
	require.NoError(t, err)
	v, err = svc.TrackEnded(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Player.Selected)
	assert.False(t, v.Player.Playing)

	_, err = svc.SelectTrack(ctx, id, 7)
	assert.ErrorIs(t, err, playback.ErrTrackOutOfRange)
}

func TestPlaybackRejected(t *testing.T) {
	svc, _ := newTestService(okRelay())
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.SelectTrack(ctx, v.SessionID, 2)
	require.NoError(t, err)
	v, err = svc.PlaybackRejected(ctx, v.SessionID)
	require.NoError(t, err)

	assert.Equal(t, 2, v.Player.Selected)
	assert.False(t, v.Player.Playing)
	assert.True(t, v.Player.Blocked)
	assert.True(t, v.Element.Paused)
}

func TestSetFieldsPartial(t *testing.T) {
	svc, _ := newTestService(okRelay())
	ctx := context.Background()
	v, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.SetFields(ctx, v.SessionID, FieldUpdate{Name: strPtr("Ada"), Message: strPtr("Hi")})
	require.NoError(t, err)
	v, err = svc.SetFields(ctx, v.SessionID, FieldUpdate{Email: strPtr("ada@example.com")})
	require.NoError(t, err)

	assert.Equal(t, contact.Fields{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, v.Form.Fields)
}

// sharedRedisServices returns two services, as two server instances
// would run them, over one Redis.
func sharedRedisServices(t *testing.T, relay contact.Relay) (*Service, *Service) {
	t.Helper()
	client, mr := setupTestRedis(t)
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	clock := newStepClock()
	a := NewService(NewRedisStore(client, time.Hour), relay, tracks, WithClock(clock))
	b := NewService(NewRedisStore(client, time.Hour), relay, tracks, WithClock(clock))
	return a, b
}

func TestSharedStoreLosesNoUpdates(t *testing.T) {
	a, b := sharedRedisServices(t, okRelay())
	ctx := context.Background()
	v, err := a.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID

	const toggles = 40
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		svc := a
		if i%2 == 1 {
			svc = b
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleTheme(ctx, id)
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			_, err := svc.SetVolume(ctx, id, float64(i%10)/10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	v, err = b.View(ctx, id)
	require.NoError(t, err)
	assert.False(t, v.Theme.Dark, "an even number of toggles ends light")
}

func TestSharedStoreSendsOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	entered := make(chan struct{}, 2)
	gate := make(chan struct{})
	relay := contact.RelayFunc(func(context.Context, contact.Submission) error {
		mu.Lock()
		calls++
		mu.Unlock()
		entered <- struct{}{}
		<-gate
		return nil
	})
	a, b := sharedRedisServices(t, relay)
	ctx := context.Background()

	v, err := a.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID
	_, err = a.SetFields(ctx, id, FieldUpdate{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Message: strPtr("Hi")})
	require.NoError(t, err)

	results := make(chan error, 2)
	for _, svc := range []*Service{a, b} {
		go func(svc *Service) {
			_, err := svc.Submit(ctx, id)
			results <- err
		}(svc)
	}

	<-entered
	// the instance that lost the race sees the stored "sending" state
	assert.ErrorIs(t, <-results, contact.ErrSubmissionInFlight)
	close(gate)
	require.NoError(t, <-results)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

// flakyStore fails every save of a "sending" form.
type flakyStore struct {
	*MemoryStore
}

var errStoreDown = errors.New("store unavailable")

func (f flakyStore) Save(ctx context.Context, s *Snapshot) error {
	if s.Form.Status == contact.StatusSending {
		return errStoreDown
	}
	return f.MemoryStore.Save(ctx, s)
}

func TestSubmitNotSentWhenSendingStateUnsaved(t *testing.T) {
	calls := 0
	relay := contact.RelayFunc(func(context.Context, contact.Submission) error {
		calls++
		return nil
	})
	svc := NewService(flakyStore{NewMemoryStore(time.Hour)}, relay, tracks, WithClock(newStepClock()))
	ctx := context.Background()

	v, err := svc.Start(ctx)
	require.NoError(t, err)
	id := v.SessionID
	_, err = svc.SetFields(ctx, id, FieldUpdate{Name: strPtr("Ada"), Email: strPtr("ada@example.com"), Message: strPtr("Hi")})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, id)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Zero(t, calls)

	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, contact.StatusSending, v.Form.Status)
	assert.Equal(t, "Ada", v.Form.Fields.Name)
}
