package client

import (
	"sync"
)

// NotificationCenter holds the authoritative local copy of alert
// notifications and their read state. Order is arrival order; mutations never
// re-sort. The unread count always equals the number of unacknowledged
// entries after every operation.
type NotificationCenter struct {
	mu            sync.Mutex
	notifications []Notification
	unread        int
}

// NewNotificationCenter creates an empty notification center
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{}
}

// Load installs a freshly polled batch. Membership follows the batch: entries
// absent from it are dropped. A locally acknowledged notification that is
// still present in the batch stays acknowledged, so a user's acknowledgement
// is never resurrected by a poll that has not caught up with it yet.
func (nc *NotificationCenter) Load(batch []Notification) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	acked := make(map[uint]bool, len(nc.notifications))
	for _, n := range nc.notifications {
		if n.Acknowledged {
			acked[n.ID] = true
		}
	}

	next := make([]Notification, len(batch))
	unread := 0
	for i, n := range batch {
		if acked[n.ID] {
			n.Acknowledged = true
		}
		if !n.Acknowledged {
			unread++
		}
		next[i] = n
	}

	nc.notifications = next
	nc.unread = unread
}

// Acknowledge flips a notification to read. Unknown or already acknowledged
// ids are a no-op, which also covers operations issued against a batch that
// has since been superseded.
func (nc *NotificationCenter) Acknowledge(id uint) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	for i := range nc.notifications {
		if nc.notifications[i].ID != id {
			continue
		}
		if !nc.notifications[i].Acknowledged {
			nc.notifications[i].Acknowledged = true
			if nc.unread > 0 {
				nc.unread--
			}
		}
		return
	}
}

// Remove deletes a notification. Unknown ids are a no-op.
func (nc *NotificationCenter) Remove(id uint) {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	for i := range nc.notifications {
		if nc.notifications[i].ID != id {
			continue
		}
		if !nc.notifications[i].Acknowledged && nc.unread > 0 {
			nc.unread--
		}
		nc.notifications = append(nc.notifications[:i], nc.notifications[i+1:]...)
		return
	}
}

// MarkAllAsRead acknowledges every notification
func (nc *NotificationCenter) MarkAllAsRead() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	for i := range nc.notifications {
		nc.notifications[i].Acknowledged = true
	}
	nc.unread = 0
}

// ClearAll empties the set
func (nc *NotificationCenter) ClearAll() {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	nc.notifications = nil
	nc.unread = 0
}

// Notifications returns a copy of the current set in arrival order
func (nc *NotificationCenter) Notifications() []Notification {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	out := make([]Notification, len(nc.notifications))
	copy(out, nc.notifications)
	return out
}

// UnreadCount returns the number of unacknowledged notifications
func (nc *NotificationCenter) UnreadCount() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.unread
}
