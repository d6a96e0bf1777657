package table

import "github.com/lox/holdem-engine/internal/game"

const subscriberBuffer = 16

// Subscribe streams a snapshot, as viewerID may see it, after every change
// to the table. The returned function unsubscribes and closes the channel.
// A subscriber that falls behind misses intermediate snapshots.
func (t *Table) Subscribe(viewerID string) (<-chan game.State, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan game.State, subscriberBuffer)
	if t.closed {
		close(ch)
		return ch, func() {}
	}

	id := t.nextSub
	t.nextSub++
	t.subs[id] = subscriber{viewer: viewerID, ch: ch}
	ch <- t.engine.State().VisibleTo(viewerID)

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if sub, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(sub.ch)
		}
	}
}

// Close ends every subscription. The table remains readable.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for id, sub := range t.subs {
		delete(t.subs, id)
		close(sub.ch)
	}
}

// publish must be called with t.mu held
func (t *Table) publish(state game.State) {
	for _, sub := range t.subs {
		select {
		case sub.ch <- state.VisibleTo(sub.viewer):
		default:
			t.logger.Debug("subscriber behind, dropping snapshot", "viewer", sub.viewer, "hand", state.HandNumber)
		}
	}
}
