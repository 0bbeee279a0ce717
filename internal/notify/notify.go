// Package notify sends desktop notifications when a file resumes from its
// saved position or fails to open.
package notify

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// ActionRestart asks the player to play the resumed file from the start.
const ActionRestart = "restart"

// Action is a button shown on a notification.
type Action struct {
	Key   string
	Label string
}

// Invocation is a click on a notification action.
type Invocation struct {
	ID  uint32
	Key string
}

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string   // Summary text (required)
	Body       string   // Body text (optional, supports basic markup)
	Icon       string   // Icon name (optional)
	Image      string   // Artwork path, shown instead of the icon when set
	Category   string   // freedesktop category hint
	Actions    []Action // Buttons, in display order
	Timeout    int32    // ms, -1 = server default, 0 = never expire
	ReplacesID uint32   // 0 = new notification, >0 = replace existing
	Urgency    Urgency
}

// actionList flattens the actions into the key, label pairs the
// notification server expects.
func (n Notification) actionList() []string {
	list := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		list = append(list, a.Key, a.Label)
	}
	return list
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
	// Invoked delivers action clicks. It returns nil when the notifier
	// cannot report them.
	Invoked() <-chan Invocation
}

// stubNotifier is used when no notification server is reachable.
type stubNotifier struct{}

func (stubNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (stubNotifier) Close(uint32) error { return nil }

func (stubNotifier) Invoked() <-chan Invocation { return nil }
