//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestHints(t *testing.T) {
	h := hints(Notification{Urgency: UrgencyLow})
	if len(h) != 2 {
		t.Errorf("hints without category or image = %v, want urgency and desktop-entry", h)
	}
	if h["urgency"].Value() != byte(0) {
		t.Errorf("urgency = %v", h["urgency"].Value())
	}

	h = hints(Notification{
		Category: categoryResumed,
		Image:    "/videos/Film-poster.jpg",
		Urgency:  UrgencyNormal,
	})
	if h["category"].Value() != "x-reprise.resumed" {
		t.Errorf("category = %v", h["category"].Value())
	}
	if h["image-path"].Value() != "/videos/Film-poster.jpg" {
		t.Errorf("image-path = %v", h["image-path"].Value())
	}
	if h["urgency"].Value() != byte(1) {
		t.Errorf("urgency = %v", h["urgency"].Value())
	}
}

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
		want Invocation
		ok   bool
	}{
		{
			name: "action invoked",
			sig: &dbus.Signal{
				Name: "org.freedesktop.Notifications.ActionInvoked",
				Body: []any{uint32(7), "restart"},
			},
			want: Invocation{ID: 7, Key: "restart"},
			ok:   true,
		},
		{
			name: "closed",
			sig: &dbus.Signal{
				Name: "org.freedesktop.Notifications.NotificationClosed",
				Body: []any{uint32(7), uint32(2)},
			},
		},
		{
			name: "wrong body",
			sig: &dbus.Signal{
				Name: "org.freedesktop.Notifications.ActionInvoked",
				Body: []any{"7", "restart"},
			},
		},
		{name: "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseInvocation(tt.sig)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseInvocation() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNotifyWithRestartAction(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	notifier, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	first, err := notifier.Notify(Notification{
		Title:    "Resumed a.mp4",
		Body:     "from 00:01:00 of 00:45:00",
		Category: categoryResumed,
		Actions:  []Action{{Key: ActionRestart, Label: "Start over"}},
		Timeout:  2000,
	})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if first == 0 {
		t.Fatal("Notify() returned id=0, expected non-zero")
	}

	second, err := notifier.Notify(Notification{
		Title:      "Resumed b.mp4",
		Body:       "from 00:02:00",
		Category:   categoryResumed,
		Timeout:    1000,
		ReplacesID: first,
	})
	if err != nil {
		t.Fatalf("replacing Notify() error: %v", err)
	}
	if second != first {
		t.Errorf("replacing notification got id=%d, want id=%d", second, first)
	}

	if err := notifier.Close(second); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
