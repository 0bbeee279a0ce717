package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/reprise/internal/engine"
	"github.com/llehouerou/reprise/internal/playback"
	"github.com/llehouerou/reprise/internal/positions"
)

type recordingNotifier struct {
	mu      sync.Mutex
	sent    []Notification
	nextID  uint32
	invoked chan Invocation
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{invoked: make(chan Invocation)}
}

func (r *recordingNotifier) Notify(n Notification) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	r.nextID++
	return r.nextID, nil
}

func (r *recordingNotifier) Close(uint32) error { return nil }

func (r *recordingNotifier) Invoked() <-chan Invocation { return r.invoked }

func (r *recordingNotifier) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

func TestResumeNotification(t *testing.T) {
	tests := []struct {
		name     string
		event    playback.ResumeEvent
		art      string
		wantBody string
	}{
		{
			name:     "known duration",
			event:    playback.ResumeEvent{Path: "/videos/lecture.mp4", Offset: 3725 * time.Second, Duration: 2 * time.Hour},
			wantBody: "from 01:02:05 of 02:00:00",
		},
		{
			name:     "unknown duration",
			event:    playback.ResumeEvent{Path: "/videos/lecture.mp4", Offset: 3725 * time.Second},
			art:      "/videos/lecture.jpg",
			wantBody: "from 01:02:05",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ResumeNotification(tt.event, tt.art)
			if n.Title != "Resumed lecture.mp4" {
				t.Errorf("Title = %q", n.Title)
			}
			if n.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", n.Body, tt.wantBody)
			}
			if n.Image != tt.art || n.Icon != "media-playback-start" {
				t.Errorf("Image, Icon = %q, %q", n.Image, n.Icon)
			}
			if n.Category != categoryResumed || len(n.Actions) != 0 {
				t.Errorf("Category, Actions = %q, %v", n.Category, n.Actions)
			}
		})
	}
}

func TestLoadFailed(t *testing.T) {
	n := LoadFailed(playback.ErrorEvent{Path: "/videos/broken.mkv", Err: errors.New("no demuxer")})

	if n.Title != "Cannot play broken.mkv" {
		t.Errorf("Title = %q", n.Title)
	}
	if n.Urgency != UrgencyNormal {
		t.Errorf("Urgency = %d, want Normal", n.Urgency)
	}
	if n.Category != categoryLoadFailed {
		t.Errorf("Category = %q", n.Category)
	}
}

func TestWatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		eng := engine.NewMock()
		eng.SetDuration(time.Hour)
		store := positions.New(afero.NewMemMapFs(), "/positions.json")
		store.Set("/videos/a.mp4", time.Minute)
		store.Set("/videos/b.mp4", 2*time.Minute)
		c := playback.New(eng, store, playback.Options{Extensions: []string{"mp4", "mkv"}})

		fsys := afero.NewMemMapFs()
		if err := afero.WriteFile(fsys, "/videos/b.jpg", nil, 0o644); err != nil {
			t.Fatal(err)
		}
		rec := newRecordingNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go Watch(ctx, rec, c.Subscribe(), Options{Fs: fsys, Log: quietLog()})

		if err := c.OpenMedia(ctx, "/videos/a.mp4"); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()
		if err := c.OpenMedia(ctx, "/videos/b.mp4"); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()
		eng.SetLoadError(errors.New("no demuxer"))
		_ = c.OpenMedia(ctx, "/videos/broken.mkv")
		synctest.Wait()

		sent := rec.Sent()
		if len(sent) != 3 {
			t.Fatalf("sent %d notifications, want 3: %+v", len(sent), sent)
		}
		if sent[0].Body != "from 00:01:00 of 01:00:00" || sent[0].ReplacesID != 0 || sent[0].Image != "" {
			t.Errorf("first = %+v", sent[0])
		}
		if sent[1].Body != "from 00:02:00 of 01:00:00" || sent[1].ReplacesID != 1 {
			t.Errorf("second = %+v, want it to replace the first", sent[1])
		}
		if sent[1].Image != "/videos/b.jpg" {
			t.Errorf("second Image = %q, want the sidecar", sent[1].Image)
		}
		if len(sent[1].Actions) != 0 {
			t.Errorf("Actions without a player = %v", sent[1].Actions)
		}
		if !strings.Contains(sent[2].Body, "broken.mkv") {
			t.Errorf("third = %+v", sent[2])
		}
	})
}

func TestWatch_StopsOnShutdown(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := playback.New(engine.NewMock(), positions.New(afero.NewMemMapFs(), ""), playback.Options{})
		done := make(chan struct{})
		go func() {
			Watch(context.Background(), newRecordingNotifier(), c.Subscribe(), Options{Fs: afero.NewMemMapFs(), Log: quietLog()})
			close(done)
		}()

		if err := c.Shutdown(); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()

		select {
		case <-done:
		default:
			t.Fatal("Watch should return when the subscription closes")
		}
	})
}

func TestWatch_StartOver(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		eng := engine.NewMock()
		eng.SetDuration(time.Hour)
		store := positions.New(afero.NewMemMapFs(), "/positions.json")
		store.Set("/videos/a.mp4", 10*time.Minute)
		c := playback.New(eng, store, playback.Options{Extensions: []string{"mp4"}})

		rec := newRecordingNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go Watch(ctx, rec, c.Subscribe(), Options{Player: c, Fs: afero.NewMemMapFs(), Log: quietLog()})

		if err := c.OpenMedia(ctx, "/videos/a.mp4"); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()

		sent := rec.Sent()
		if len(sent) != 1 {
			t.Fatalf("sent %d notifications, want 1", len(sent))
		}
		if len(sent[0].Actions) != 1 || sent[0].Actions[0].Key != ActionRestart {
			t.Fatalf("Actions = %v, want start over", sent[0].Actions)
		}

		// Clicks on other notifications or other buttons do nothing.
		rec.invoked <- Invocation{ID: 99, Key: ActionRestart}
		rec.invoked <- Invocation{ID: 1, Key: "default"}
		synctest.Wait()
		if got := eng.SeekCalls(); len(got) != 1 {
			t.Fatalf("SeekCalls = %v, want only the resume seek", got)
		}

		rec.invoked <- Invocation{ID: 1, Key: ActionRestart}
		synctest.Wait()
		if got := eng.SeekCalls(); len(got) != 2 || got[1] != 0 {
			t.Errorf("SeekCalls = %v, want a seek to 0 after the resume", got)
		}
	})
}

func TestWatch_StartOverIgnoredAfterSwitchingFiles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		eng := engine.NewMock()
		eng.SetDuration(time.Hour)
		store := positions.New(afero.NewMemMapFs(), "/positions.json")
		store.Set("/videos/a.mp4", 10*time.Minute)
		c := playback.New(eng, store, playback.Options{Extensions: []string{"mp4"}})

		rec := newRecordingNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go Watch(ctx, rec, c.Subscribe(), Options{Player: c, Fs: afero.NewMemMapFs(), Log: quietLog()})

		if err := c.OpenMedia(ctx, "/videos/a.mp4"); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()
		// b has no saved position, so the bubble still points at a.
		if err := c.OpenMedia(ctx, "/videos/b.mp4"); err != nil {
			t.Fatal(err)
		}
		synctest.Wait()

		rec.invoked <- Invocation{ID: 1, Key: ActionRestart}
		synctest.Wait()
		if got := eng.SeekCalls(); len(got) != 1 {
			t.Errorf("SeekCalls = %v, want only the resume seek of a", got)
		}
	})
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}
