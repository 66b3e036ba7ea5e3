package trace

import (
	"testing"
	"time"
)

func TestEventSetPreservesOrder(t *testing.T) {
	e := NewEvent()
	e.Set("concept:name", StringValue("register request"))
	e.Set("org:resource", StringValue("Pete"))
	e.Set("cost", IntValue(50))

	want := []string{"concept:name", "org:resource", "cost"}
	got := e.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEventSetReplacesInPlace(t *testing.T) {
	e := NewEvent()
	e.Set("a", StringValue("1"))
	e.Set("b", StringValue("2"))
	e.Set("a", StringValue("3"))

	if e.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.Len())
	}
	if e.Keys()[0] != "a" {
		t.Errorf("replaced key moved, Keys() = %v", e.Keys())
	}
	v, ok := e.Get("a")
	if !ok || v.Str != "3" {
		t.Errorf("Get(a) = %v, %v; want 3, true", v, ok)
	}
}

func TestEventGetMissing(t *testing.T) {
	e := NewEvent()
	if _, ok := e.Get("nope"); ok {
		t.Error("Get on empty event reported ok")
	}
}

func TestTraceAccessors(t *testing.T) {
	first := NewEvent()
	first.Set("concept:name", StringValue("register request"))
	last := NewEvent()
	last.Set("concept:name", StringValue("reject request"))

	tr := New([]*Event{first, last}, []Attribute{
		{Key: "concept:name", Value: StringValue("1")},
	})

	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
	if tr.Last() != last {
		t.Error("Last() did not return the final event")
	}
	v, ok := tr.Get("concept:name")
	if !ok || v.Str != "1" {
		t.Errorf("Get(concept:name) = %v, %v", v, ok)
	}
	if tr.String() != "Trace(events=2)" {
		t.Errorf("String() = %q", tr.String())
	}
}

func TestEmptyTraceLast(t *testing.T) {
	tr := New(nil, nil)
	if tr.Last() != nil {
		t.Error("Last() on empty trace should be nil")
	}
}

func TestValueEqual(t *testing.T) {
	ts := time.Date(2010, 12, 30, 11, 2, 0, 0, time.FixedZone("", 3600))
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", StringValue("x"), StringValue("x"), true},
		{"different string", StringValue("x"), StringValue("y"), false},
		{"same int", IntValue(5), IntValue(5), true},
		{"type mismatch", IntValue(5), StringValue("5"), false},
		{"same float", FloatValue(1.5), FloatValue(1.5), true},
		{"timestamp across zones", TimestampValue(ts), TimestampValue(ts.UTC()), true},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValueTypeString(t *testing.T) {
	tests := []struct {
		vt       ValueType
		expected string
	}{
		{TypeString, "string"},
		{TypeInt, "int"},
		{TypeFloat, "float"},
		{TypeTimestamp, "timestamp"},
		{ValueType(99), "string"},
	}
	for _, tt := range tests {
		if got := tt.vt.String(); got != tt.expected {
			t.Errorf("ValueType(%d).String() = %q, want %q", tt.vt, got, tt.expected)
		}
	}
}

func TestNewMetaAllocatesMaps(t *testing.T) {
	m := NewMeta()
	if m.Attributes == nil || m.Classifiers == nil || m.Extensions == nil {
		t.Fatal("NewMeta left a map nil")
	}
	if m.Omni.Trace == nil || m.Omni.Event == nil {
		t.Fatal("NewMeta left an omni scope nil")
	}
}
