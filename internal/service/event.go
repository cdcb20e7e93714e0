package service

// Event types published on workflow transitions
const (
	EventRequestCreated     = "request.created"
	EventRequestResubmitted = "request.resubmitted"
	EventRequestApproved    = "request.approved"
	EventRequestRejected    = "request.rejected"
	EventResponseRecorded   = "response.recorded"
	EventResponseRetracted  = "response.retracted"
)

// Event is a notification emitted after a workflow transition commits
type Event struct {
	Type      string                 `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	ActorID   string                 `json:"actor_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventSink receives workflow events. Delivery is best effort and
// fire-and-forget: a slow or absent consumer never blocks or fails the
// operation that produced the event.
type EventSink interface {
	Publish(event Event)
}

type noopSink struct{}

func (noopSink) Publish(Event) {}

// NewNoopSink returns a sink that drops everything, for tests and tooling
func NewNoopSink() EventSink {
	return noopSink{}
}
