package logistics

import (
	"sync"

	"go.dedis.ch/courier/contracts/logistics/types"
)

// EventKind is the operation that produced an event.
type EventKind string

const (
	// EventRegistered is produced when a member registers or tops up.
	EventRegistered EventKind = "registered"
	// EventWithdrawn is produced when a member withdraws funds.
	EventWithdrawn EventKind = "withdrawn"
	// EventRequested is produced when a delivery request is posted.
	EventRequested EventKind = "requested"
	// EventAccepted is produced when a member accepts a delivery request.
	EventAccepted EventKind = "accepted"
	// EventCompleted is produced when the assisting member completes a
	// delivery.
	EventCompleted EventKind = "completed"
	// EventConfirmed is produced when the requester confirms a delivery and
	// the fee is paid.
	EventConfirmed EventKind = "confirmed"
	// EventCancelled is produced when an accepted delivery is cancelled and
	// the fee returned.
	EventCancelled EventKind = "cancelled"
)

// Event describes an operation that has been committed to the ledger.
type Event struct {
	Kind EventKind

	// Account is the caller of the operation.
	Account types.Account

	// Counterparty is the other member involved, if any.
	Counterparty types.Account

	// Delivery is set for the workflow events.
	Delivery types.DeliveryID

	// Amount is the amount moved by the operation, if any.
	Amount types.Amount
}

// Observer is the interface to implement to watch the events of the ledger.
// The callback runs after the ledger lock is released, so that it can read or
// update the ledger.
type Observer interface {
	NotifyCallback(event Event)
}

// watcher keeps the observers of the ledger and the queue of events waiting to
// be delivered. A single goroutine at a time drains the queue, which keeps the
// events in the order they were committed.
type watcher struct {
	sync.Mutex

	observers map[Observer]struct{}
	queue     []Event
	draining  bool
}

func newWatcher() *watcher {
	return &watcher{
		observers: make(map[Observer]struct{}),
	}
}

func (w *watcher) add(observer Observer) {
	w.Lock()
	w.observers[observer] = struct{}{}
	w.Unlock()
}

func (w *watcher) remove(observer Observer) {
	w.Lock()
	delete(w.observers, observer)
	w.Unlock()
}

// enqueue appends the events of a committed operation. It must be called while
// the ledger lock is held.
func (w *watcher) enqueue(events []Event) {
	w.Lock()
	w.queue = append(w.queue, events...)
	w.Unlock()
}

// drain delivers the queued events to the observers. It returns immediately
// when another call is already draining, including a call further up the
// stack when an observer updates the ledger.
func (w *watcher) drain() {
	w.Lock()
	if w.draining {
		w.Unlock()
		return
	}

	w.draining = true

	for len(w.queue) > 0 {
		event := w.queue[0]
		w.queue = w.queue[1:]

		observers := make([]Observer, 0, len(w.observers))
		for obs := range w.observers {
			observers = append(observers, obs)
		}

		w.Unlock()

		for _, obs := range observers {
			obs.NotifyCallback(event)
		}

		w.Lock()
	}

	w.draining = false
	w.Unlock()
}
