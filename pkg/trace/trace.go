// Package trace defines the core record types for event logs: typed
// attribute values, events and traces.
package trace

import "fmt"

// Attribute is a named typed value.
type Attribute struct {
	Key   string `msgpack:"k"`
	Value Value  `msgpack:"v"`
}

// Event is one step within a trace: an ordered mapping of attribute
// names to typed values. Keys are unique within an event; insertion
// order is preserved. Events are mutated only while a trace is being
// parsed.
type Event struct {
	Attrs []Attribute `msgpack:"attrs"`
}

// NewEvent returns an empty event.
func NewEvent() *Event {
	return &Event{}
}

// Set stores the value under key, replacing an existing entry in place
// so the original position is kept.
func (e *Event) Set(key string, v Value) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = v
			return
		}
	}
	e.Attrs = append(e.Attrs, Attribute{Key: key, Value: v})
}

// Get returns the value stored under key.
func (e *Event) Get(key string) (Value, bool) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			return e.Attrs[i].Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of attributes.
func (e *Event) Len() int {
	return len(e.Attrs)
}

// Keys returns the attribute names in insertion order.
func (e *Event) Keys() []string {
	keys := make([]string, len(e.Attrs))
	for i := range e.Attrs {
		keys[i] = e.Attrs[i].Key
	}
	return keys
}

// Trace is one complete record of the log: an ordered sequence of
// events plus trace-level attributes. Length and element order are
// fixed once the trace has been produced; treat traces as read-only
// value objects.
type Trace struct {
	Events []*Event    `msgpack:"events"`
	Attrs  []Attribute `msgpack:"attrs"`
}

// New builds a trace from events and trace-level attributes.
func New(events []*Event, attrs []Attribute) *Trace {
	return &Trace{Events: events, Attrs: attrs}
}

// Len returns the number of events.
func (t *Trace) Len() int {
	return len(t.Events)
}

// Get returns the trace-level attribute stored under key.
func (t *Trace) Get(key string) (Value, bool) {
	for i := range t.Attrs {
		if t.Attrs[i].Key == key {
			return t.Attrs[i].Value, true
		}
	}
	return Value{}, false
}

// Last returns the final event, or nil for an empty trace.
func (t *Trace) Last() *Event {
	if len(t.Events) == 0 {
		return nil
	}
	return t.Events[len(t.Events)-1]
}

// String implements fmt.Stringer.
func (t *Trace) String() string {
	return fmt.Sprintf("Trace(events=%d)", len(t.Events))
}
