package sse

import (
	"time"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

// HubNotifier forwards accepted snapshots to the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// PublishSnapshot broadcasts snap. It is a no-op without connected clients.
func (n *HubNotifier) PublishSnapshot(snap *models.Snapshot) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(SnapshotToEvent(snap))
}

// SnapshotToEvent converts a snapshot to its wire event.
func SnapshotToEvent(snap *models.Snapshot) *SnapshotEvent {
	eventType := EventSnapshot
	if snap.Phase == models.PhaseFailed {
		eventType = EventCycleFailed
	}
	return &SnapshotEvent{
		Event:           eventType,
		Generation:      snap.Generation,
		Phase:           snap.Phase,
		Currency:        snap.Currency,
		DetailsTotal:    snap.DetailsTotal,
		DetailsResolved: snap.DetailsResolved,
		DetailsFailed:   snap.DetailsFailed,
		Error:           snap.Error,
		Records:         snap.Records,
		Timestamp:       time.Now(),
	}
}
