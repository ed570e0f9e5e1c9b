package client

import (
	"testing"
	"time"
)

func sampleBatch() []Notification {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []Notification{
		{ID: 1, Severity: SeverityWarning, Title: "Spend anomaly", TriggeredAt: now, Acknowledged: false},
		{ID: 2, Severity: SeverityInfo, Title: "Sync complete", TriggeredAt: now, Acknowledged: true},
		{ID: 3, Severity: SeverityCritical, Title: "Pipeline stalled", TriggeredAt: now, Acknowledged: false},
	}
}

func checkInvariant(t *testing.T, nc *NotificationCenter) {
	t.Helper()
	unacked := 0
	for _, n := range nc.Notifications() {
		if !n.Acknowledged {
			unacked++
		}
	}
	if got := nc.UnreadCount(); got != unacked {
		t.Fatalf("unread count invariant broken: count=%d, unacknowledged=%d", got, unacked)
	}
}

func TestLoadComputesUnread(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())

	if got := nc.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}
	checkInvariant(t, nc)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())

	nc.Acknowledge(1)
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after acknowledge, got %d", got)
	}

	nc.Acknowledge(1)
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("second acknowledge changed unread count: %d", got)
	}
	checkInvariant(t, nc)
}

func TestAcknowledgeUnknownIDIsNoop(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())

	nc.Acknowledge(99)
	if got := nc.UnreadCount(); got != 2 {
		t.Fatalf("acknowledge of unknown id changed unread count: %d", got)
	}
	checkInvariant(t, nc)
}

func TestRemoveAdjustsUnread(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())

	nc.Remove(3) // unacknowledged
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after removing unacknowledged entry, got %d", got)
	}

	nc.Remove(2) // acknowledged
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("removing acknowledged entry changed unread count: %d", got)
	}

	if got := len(nc.Notifications()); got != 1 {
		t.Fatalf("expected 1 notification left, got %d", got)
	}
	checkInvariant(t, nc)
}

func TestRemoveUnknownIDNeverGoesNegative(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load([]Notification{{ID: 1, Acknowledged: true}})

	nc.Remove(42)
	nc.Remove(42)
	if got := nc.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	checkInvariant(t, nc)
}

func TestMarkAllAsRead(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())

	nc.MarkAllAsRead()
	if got := nc.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	for _, n := range nc.Notifications() {
		if !n.Acknowledged {
			t.Fatalf("notification %d still unacknowledged", n.ID)
		}
	}
}

func TestClearAllThenLoadMatchesFreshLoad(t *testing.T) {
	fresh := NewNotificationCenter()
	fresh.Load(sampleBatch())

	reused := NewNotificationCenter()
	reused.Load(sampleBatch())
	reused.Acknowledge(1)
	reused.Remove(3)
	reused.ClearAll()
	reused.Load(sampleBatch())

	if got, want := reused.UnreadCount(), fresh.UnreadCount(); got != want {
		t.Fatalf("unread after clear+load = %d, fresh load = %d", got, want)
	}

	gotList, wantList := reused.Notifications(), fresh.Notifications()
	if len(gotList) != len(wantList) {
		t.Fatalf("notification count after clear+load = %d, fresh load = %d", len(gotList), len(wantList))
	}
	for i := range gotList {
		if gotList[i] != wantList[i] {
			t.Fatalf("notification %d differs after clear+load: %+v vs %+v", i, gotList[i], wantList[i])
		}
	}
}

func TestLoadPreservesLocalAcknowledgement(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())
	nc.Acknowledge(1)

	// The next poll has not caught up with the local acknowledgement yet
	nc.Load(sampleBatch())

	for _, n := range nc.Notifications() {
		if n.ID == 1 && !n.Acknowledged {
			t.Fatal("local acknowledgement was resurrected by reload")
		}
	}
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread after merged reload, got %d", got)
	}
	checkInvariant(t, nc)
}

func TestLoadDropsEntriesAbsentFromBatch(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load(sampleBatch())
	nc.Acknowledge(1)

	nc.Load([]Notification{{ID: 3, Severity: SeverityCritical, Title: "Pipeline stalled"}})

	list := nc.Notifications()
	if len(list) != 1 || list[0].ID != 3 {
		t.Fatalf("expected only id 3 to survive, got %+v", list)
	}
	if got := nc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
	checkInvariant(t, nc)
}

func TestAcknowledgeThenRemoveScenario(t *testing.T) {
	nc := NewNotificationCenter()
	nc.Load([]Notification{
		{ID: 1, Acknowledged: false},
		{ID: 2, Acknowledged: true},
	})

	nc.Acknowledge(1)
	nc.Remove(2)

	list := nc.Notifications()
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	if list[0].ID != 1 || !list[0].Acknowledged {
		t.Fatalf("unexpected final state: %+v", list[0])
	}
	if got := nc.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
}

func TestOperationSequencesKeepInvariant(t *testing.T) {
	nc := NewNotificationCenter()

	steps := []func(){
		func() { nc.Load(sampleBatch()) },
		func() { nc.Acknowledge(3) },
		func() { nc.Remove(1) },
		func() { nc.Load(sampleBatch()) },
		func() { nc.MarkAllAsRead() },
		func() { nc.Load([]Notification{{ID: 7, Severity: SeverityError}}) },
		func() { nc.Remove(7) },
		func() { nc.ClearAll() },
		func() { nc.Acknowledge(1) },
	}
	for i, step := range steps {
		step()
		unacked := 0
		for _, n := range nc.Notifications() {
			if !n.Acknowledged {
				unacked++
			}
		}
		if got := nc.UnreadCount(); got != unacked || got < 0 {
			t.Fatalf("invariant broken after step %d: count=%d, unacknowledged=%d", i, got, unacked)
		}
	}
}
