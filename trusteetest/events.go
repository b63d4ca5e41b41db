package trusteetest

import "github.com/iov-one/trustee"

// EventRecorder is an emitter capturing all notifications in order.
type EventRecorder struct {
	Events []trustee.Event
}

var _ trustee.Emitter = (*EventRecorder)(nil)

func (r *EventRecorder) Emit(ev trustee.Event) {
	r.Events = append(r.Events, ev)
}

// Kinds returns the kind of every captured event, in emission order.
func (r *EventRecorder) Kinds() []string {
	kinds := make([]string, len(r.Events))
	for i, ev := range r.Events {
		kinds[i] = ev.Kind()
	}
	return kinds
}

// Reset drops all captured events.
func (r *EventRecorder) Reset() {
	r.Events = nil
}
