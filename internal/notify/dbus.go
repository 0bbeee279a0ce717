//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
	dbusActionInvoked   = "ActionInvoked"
)

// dbusNotifier sends notifications via D-Bus.
type dbusNotifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	invoked chan Invocation // nil when the ActionInvoked match failed
}

// New creates a Notifier that sends desktop notifications via D-Bus.
// Returns a no-op notifier if D-Bus is unavailable.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return stubNotifier{}, nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	n := &dbusNotifier{conn: conn, obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(dbusNotifyPath),
		dbus.WithMatchInterface(dbusNotifyInterface),
		dbus.WithMatchMember(dbusActionInvoked),
	); err == nil {
		signals := make(chan *dbus.Signal, 8)
		conn.Signal(signals)
		n.invoked = make(chan Invocation, 8)
		go n.forward(signals)
	}
	return n, nil
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		"Reprise",
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		notif.actionList(),
		hints(notif),
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

func (n *dbusNotifier) Invoked() <-chan Invocation { return n.invoked }

// forward turns ActionInvoked signals into invocations. The session bus
// connection is shared, so other signals arrive here too and are skipped.
// A click nobody is waiting for is dropped.
func (n *dbusNotifier) forward(signals <-chan *dbus.Signal) {
	for sig := range signals {
		inv, ok := parseInvocation(sig)
		if !ok {
			continue
		}
		select {
		case n.invoked <- inv:
		default:
		}
	}
}

func parseInvocation(sig *dbus.Signal) (Invocation, bool) {
	if sig == nil || sig.Name != dbusNotifyInterface+"."+dbusActionInvoked || len(sig.Body) != 2 {
		return Invocation{}, false
	}
	id, ok := sig.Body[0].(uint32)
	if !ok {
		return Invocation{}, false
	}
	key, ok := sig.Body[1].(string)
	if !ok {
		return Invocation{}, false
	}
	return Invocation{ID: id, Key: key}, true
}

func hints(notif Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant("reprise"),
	}
	if notif.Category != "" {
		h["category"] = dbus.MakeVariant(notif.Category)
	}
	if notif.Image != "" {
		h["image-path"] = dbus.MakeVariant(notif.Image)
	}
	return h
}
