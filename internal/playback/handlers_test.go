package playback

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reprise/internal/engine"
)

func TestHandlers_IgnoredWithoutMedia(t *testing.T) {
	f := newFixture(t, Options{})
	sub := f.c.Subscribe()

	f.c.OnStateChanged(StatePlaying)
	f.c.OnPositionChanged(time.Second)
	f.c.OnDurationChanged(time.Minute)
	f.c.OnTracksChanged(true, false)
	f.c.OnEndOfFile()

	s := f.c.Session()
	assert.Equal(t, StateStopped, s.State)
	assert.Zero(t, s.Position)
	assert.Zero(t, s.Duration)
	assert.Len(t, sub.DisplayChanged, 0)
	assert.Zero(t, f.store.Flushes())
}

func TestHandlers_Idempotent(t *testing.T) {
	f := newFixture(t, Options{})
	f.open(t, "a.mp4")
	sub := f.c.Subscribe()

	f.c.OnPositionChanged(10 * time.Second)
	f.c.OnPositionChanged(10 * time.Second)
	f.c.OnDurationChanged(100 * time.Second)
	f.c.OnStateChanged(StatePlaying)
	f.c.OnTracksChanged(true, true)

	assert.Len(t, sub.DisplayChanged, 1)
	d := <-sub.DisplayChanged
	assert.Equal(t, "00:00:10", d.CurrentText)
	assert.Equal(t, int64(10000), d.ProgressValue)
	assert.Equal(t, int64(100000), d.ProgressMax)
}

func TestOnPositionChanged_Clamps(t *testing.T) {
	f := newFixture(t, Options{})
	f.open(t, "a.mp4")

	f.c.OnPositionChanged(150 * time.Second)
	assert.Equal(t, 100*time.Second, f.c.Session().Position)

	f.c.OnPositionChanged(-time.Second)
	assert.Equal(t, time.Duration(0), f.c.Session().Position)
}

func TestOnDurationChanged_ReclampsPosition(t *testing.T) {
	f := newFixture(t, Options{})
	f.open(t, "a.mp4")
	f.c.OnPositionChanged(90 * time.Second)

	f.c.OnDurationChanged(60 * time.Second)

	s := f.c.Session()
	assert.Equal(t, 60*time.Second, s.Duration)
	assert.Equal(t, 60*time.Second, s.Position)
	assert.Equal(t, "00:01:00", f.c.Display().TotalText)
}

func TestOnDurationChanged_UnknownDurationShowsZero(t *testing.T) {
	f := newFixture(t, Options{})
	f.eng.SetDuration(0)
	f.open(t, "stream.mkv")

	f.c.OnPositionChanged(5 * time.Second)

	d := f.c.Display()
	assert.Equal(t, "00:00:00", d.CurrentText)
	assert.Equal(t, "00:00:00", d.TotalText)
	assert.Zero(t, d.ProgressValue)

	f.c.OnDurationChanged(10 * time.Second)
	assert.Equal(t, "00:00:05", f.c.Display().CurrentText)
}

func TestOnStateChanged(t *testing.T) {
	f := newFixture(t, Options{})
	f.open(t, "a.mp4")
	sub := f.c.Subscribe()

	f.c.OnStateChanged(StatePaused)

	assert.Equal(t, StateChange{Previous: StatePlaying, Current: StatePaused}, <-sub.StateChanged)
	d := <-sub.DisplayChanged
	assert.False(t, d.Playing)
}

func TestOnTracksChanged(t *testing.T) {
	f := newFixture(t, Options{})
	f.open(t, "clip.mp4")
	require.False(t, f.c.Session().AudioOnly)

	f.c.OnTracksChanged(true, false)
	assert.True(t, f.c.Session().AudioOnly)

	// No track information keeps the previous value.
	f.c.OnTracksChanged(false, false)
	assert.True(t, f.c.Session().AudioOnly)

	f.c.OnTracksChanged(true, true)
	assert.False(t, f.c.Session().AudioOnly)
}

func TestOnEndOfFile_ResetsSavedOffset(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.Set("a.mp4", 30*time.Second)
	f.open(t, "a.mp4")

	f.c.OnEndOfFile()

	got, ok := f.store.Get("a.mp4")
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), got)

	s := f.c.Session()
	assert.Equal(t, StateStopped, s.State)
	assert.Equal(t, s.Duration, s.Position)

	// A second notification changes nothing.
	f.c.OnEndOfFile()
	assert.Equal(t, 1, f.store.Flushes())
}

func TestRun_DispatchesEngineEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, Options{})
		f.open(t, "a.mp4")
		sub := f.c.Subscribe()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			f.c.Run(ctx)
			close(done)
		}()

		f.eng.Emit(engine.Event{Kind: engine.PositionChanged, Position: 20 * time.Second})
		f.eng.Emit(engine.Event{Kind: engine.TracksChanged, HasAudio: true})
		f.eng.Emit(engine.Event{Kind: engine.StateChanged, State: engine.Paused})
		synctest.Wait()

		s := f.c.Session()
		assert.Equal(t, 20*time.Second, s.Position)
		assert.True(t, s.AudioOnly)
		assert.Equal(t, StatePaused, s.State)
		assert.Equal(t, StateChange{Previous: StatePlaying, Current: StatePaused}, <-sub.StateChanged)

		cancel()
		synctest.Wait()
		select {
		case <-done:
		default:
			t.Fatal("Run should return after cancel")
		}
	})
}

func TestRun_StopsOnShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, Options{})
		done := make(chan struct{})
		go func() {
			f.c.Run(context.Background())
			close(done)
		}()

		require.NoError(t, f.c.Shutdown())
		synctest.Wait()

		select {
		case <-done:
		default:
			t.Fatal("Run should return after Shutdown")
		}
	})
}

func TestRun_EndOfFile(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, Options{})
		f.open(t, "a.mp4")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go f.c.Run(ctx)

		f.eng.Emit(engine.Event{Kind: engine.EndOfFile})
		synctest.Wait()

		assert.Equal(t, StateStopped, f.c.Session().State)
		got, ok := f.store.Get("a.mp4")
		require.True(t, ok)
		assert.Zero(t, got)
	})
}
