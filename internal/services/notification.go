package services

// Notifier publishes real-time events to connected clients.
//
// Publish never blocks and returns false when the event could not be queued.
// There is no acknowledgement and no delivery guarantee: an event is dropped
// when the queue or a subscriber's buffer is full, and clients that are not
// connected never see it. The websocket hub satisfies this interface.
type Notifier interface {
	Publish(room, event string, payload interface{}) bool
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) bool { return false }

// NopNotifier discards every event.
func NopNotifier() Notifier { return nopNotifier{} }
