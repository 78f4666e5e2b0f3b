// Package memory contains an in-memory notifier for tests.
package memory

import (
	"context"
	"sync"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// Notifier stores published notifications for inspection.
type Notifier struct {
	mu            sync.RWMutex
	notifications []docwatch.Notification
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Publish records the notification.
func (n *Notifier) Publish(_ context.Context, notification docwatch.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return nil
}

// Notifications returns a copy of the recorded publishes.
func (n *Notifier) Notifications() []docwatch.Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]docwatch.Notification, len(n.notifications))
	copy(out, n.notifications)
	return out
}
