package relay

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func noopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, ev Event) error { return nil })
}

func mustListener(t *testing.T, m Method, opts ...BindingOption) *Binding {
	t.Helper()
	b, err := NewListener(m, noopHandler(), opts...)
	if err != nil {
		t.Fatalf("NewListener() failed: %v", err)
	}
	return b
}

func mustEmitter(t *testing.T, m Method, opts ...BindingOption) *Binding {
	t.Helper()
	b, err := NewEmitter(m, opts...)
	if err != nil {
		t.Fatalf("NewEmitter() failed: %v", err)
	}
	return b
}

func on(channel, eventType string) []BindingOption {
	return []BindingOption{OnChannel(channel), OnEventType(eventType)}
}

// assertIndexed checks that b is present in all three indices or none.
func assertIndexed(t *testing.T, r *Registry, b *Binding, want bool) {
	t.Helper()

	inEvent := slices.Contains(r.GetByEvent(b.Channel(), b.EventType(), KindAny), b)
	inRelay := slices.Contains(r.GetByRelay(b.Method().Relay, KindAny), b)
	inMethod := slices.Contains(r.GetByMethod(b.Method(), KindAny), b)

	if inEvent != want || inRelay != want || inMethod != want {
		t.Errorf("binding %s indexed (event=%v relay=%v method=%v), want %v",
			b, inEvent, inRelay, inMethod, want)
	}
	if r.Contains(b) != want {
		t.Errorf("Contains(%s) = %v, want %v", b, !want, want)
	}
}

func TestRegistry_AddIndexesEverywhere(t *testing.T) {
	r := NewRegistry()
	b := mustListener(t, Method{Relay: 1, Name: "on_created"}, on("orders", "created")...)

	if err := r.Add(b); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	assertIndexed(t, r, b, true)

	if r.Len() != 1 {
		t.Errorf("expected 1 binding, got %d", r.Len())
	}
}

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := NewRegistry()
	b := mustListener(t, Method{Relay: 1, Name: "l"})

	r.Add(b)
	r.Add(b)

	if got := r.GetByEvent(DefaultChannel, DefaultEventType, KindAny); len(got) != 1 {
		t.Errorf("expected 1 binding after duplicate add, got %d", len(got))
	}
	if got := r.GetByRelay(1, KindAny); len(got) != 1 {
		t.Errorf("expected 1 relay binding after duplicate add, got %d", len(got))
	}
	if got := r.GetByMethod(b.Method(), KindAny); len(got) != 1 {
		t.Errorf("expected 1 method binding after duplicate add, got %d", len(got))
	}
}

func TestRegistry_AddDistinctEqualBindings(t *testing.T) {
	r := NewRegistry()
	m := Method{Relay: 1, Name: "l"}
	a := mustListener(t, m)
	b := mustListener(t, m)

	r.Add(a)
	r.Add(b)

	got := r.GetByMethod(m, KindAny)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("expected both equal-content bindings in insertion order, got %v", got)
	}
}

func TestRegistry_AddErrors(t *testing.T) {
	r := NewRegistry()

	if err := r.Add(nil); !errors.Is(err, ErrNilBinding) {
		t.Errorf("expected ErrNilBinding, got %v", err)
	}

	err := r.Add(&Binding{kind: KindListener})
	if !errors.Is(err, ErrUnboundMethod) {
		t.Errorf("expected ErrUnboundMethod, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected *ConfigError, got %T", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistry_RemovePrunes(t *testing.T) {
	r := NewRegistry()
	b := mustListener(t, Method{Relay: 1, Name: "l"}, on("c1", "e1")...)
	r.Add(b)

	if !r.Remove(b) {
		t.Fatal("Remove() returned false for a present binding")
	}
	assertIndexed(t, r, b, false)

	if len(r.byEvent) != 0 || len(r.channels) != 0 {
		t.Errorf("channel index not pruned: %v %v", r.byEvent, r.channels)
	}
	if len(r.byRelay) != 0 {
		t.Errorf("relay index not pruned: %v", r.byRelay)
	}
	if len(r.byMethod) != 0 {
		t.Errorf("method index not pruned: %v", r.byMethod)
	}
}

func TestRegistry_RemovePrunesOnlyEmptyLeaves(t *testing.T) {
	r := NewRegistry()
	a := mustListener(t, Method{Relay: 1, Name: "a"}, on("c1", "e1")...)
	b := mustListener(t, Method{Relay: 1, Name: "b"}, on("c1", "e2")...)
	r.Add(a)
	r.Add(b)

	r.Remove(a)

	if got := r.EventTypes("c1"); !slices.Equal(got, []string{"e2"}) {
		t.Errorf("EventTypes(c1) = %v, want [e2]", got)
	}
	if got := r.GetByRelay(1, KindAny); len(got) != 1 || got[0] != b {
		t.Errorf("expected relay index to keep b, got %v", got)
	}
	if _, ok := r.byMethod[a.Method()]; ok {
		t.Error("method index for a not pruned")
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	kept := mustListener(t, Method{Relay: 1, Name: "kept"})
	gone := mustListener(t, Method{Relay: 1, Name: "gone"})
	never := mustListener(t, Method{Relay: 2, Name: "never"})
	r.Add(kept)
	r.Add(gone)

	r.Remove(gone)
	if r.Remove(gone) {
		t.Error("second Remove() returned true")
	}
	if r.Remove(never) {
		t.Error("Remove() of a never-added binding returned true")
	}
	if r.Remove(nil) {
		t.Error("Remove(nil) returned true")
	}

	if r.Len() != 1 {
		t.Errorf("expected 1 binding, got %d", r.Len())
	}
	assertIndexed(t, r, kept, true)
}

func TestRegistry_RemoveRelay(t *testing.T) {
	r := NewRegistry()
	a := mustListener(t, Method{Relay: 1, Name: "a"}, on("c1", "e1")...)
	b := mustEmitter(t, Method{Relay: 1, Name: "b"}, on("c2", "e2")...)
	other := mustListener(t, Method{Relay: 2, Name: "a"}, on("c1", "e1")...)
	r.Add(a)
	r.Add(b)
	r.Add(other)

	if n := r.RemoveRelay(1); n != 2 {
		t.Errorf("RemoveRelay() = %d, want 2", n)
	}
	assertIndexed(t, r, a, false)
	assertIndexed(t, r, b, false)
	assertIndexed(t, r, other, true)

	if got := r.Channels(); !slices.Equal(got, []string{"c1"}) {
		t.Errorf("Channels() = %v, want [c1]", got)
	}

	if n := r.RemoveRelay(1); n != 0 {
		t.Errorf("second RemoveRelay() = %d, want 0", n)
	}
	if n := r.RemoveRelay(0); n != 0 {
		t.Errorf("RemoveRelay(0) = %d, want 0", n)
	}
	if n := r.RemoveRelay(99); n != 0 {
		t.Errorf("RemoveRelay(unknown) = %d, want 0", n)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	b := mustListener(t, Method{Relay: 1, Name: "l"})
	r.Add(b)

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
	assertIndexed(t, r, b, false)
	if len(r.Channels()) != 0 {
		t.Errorf("expected no channels, got %v", r.Channels())
	}
}

func TestRegistry_GetByEventExact(t *testing.T) {
	r := NewRegistry()
	want := mustListener(t, Method{Relay: 1, Name: "want"}, on("c1", "e1")...)
	r.Add(want)
	r.Add(mustListener(t, Method{Relay: 1, Name: "e2"}, on("c1", "e2")...))
	r.Add(mustListener(t, Method{Relay: 1, Name: "c2"}, on("c2", "e1")...))

	got := r.GetByEvent("c1", "e1", KindAny)
	if len(got) != 1 || got[0] != want {
		t.Errorf("GetByEvent(c1, e1) = %v, want [%s]", got, want)
	}

	if got := r.GetByEvent("c3", "e1", KindAny); got != nil {
		t.Errorf("expected nil for unknown channel, got %v", got)
	}
	if got := r.GetByEvent("c1", "e9", KindAny); len(got) != 0 {
		t.Errorf("expected empty for unknown event type, got %v", got)
	}
}

func TestRegistry_GetByEventWildcard(t *testing.T) {
	r := NewRegistry()
	add := func(name, ch, et string) *Binding {
		b := mustListener(t, Method{Relay: 1, Name: name}, on(ch, et)...)
		r.Add(b)
		return b
	}

	a := add("a", "channelA123abc", "eventX")
	b := add("b", "channelA", "eventY")
	c := add("c", "channelB", "eventX")
	d := add("d", "channelA123abc", "eventY")

	tests := []struct {
		name      string
		channel   string
		eventType string
		want      []*Binding
	}{
		{"channel prefix", "channelA*", "eventX", []*Binding{a}},
		{"event suffix", "channelA123abc", "*X", []*Binding{a}},
		{"both wildcards", "channel*", "event*", []*Binding{a, d, b, c}},
		{"all", "*", "*", []*Binding{a, d, b, c}},
		{"no match", "channelZ*", "*", nil},
		{"middle", "ch*B", "*", []*Binding{c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.GetByEvent(tt.channel, tt.eventType, KindAny)
			if !slices.Equal(got, tt.want) {
				t.Errorf("GetByEvent(%q, %q) = %v, want %v", tt.channel, tt.eventType, got, tt.want)
			}
		})
	}
}

func TestRegistry_GetByEventCatchAll(t *testing.T) {
	r := NewRegistry()
	allowStar := WithForbiddenCharacters(":")

	exact := mustListener(t, Method{Relay: 1, Name: "exact"}, OnChannel("c1"), OnEventType("e1"))
	anyType := mustListener(t, Method{Relay: 1, Name: "any_type"}, OnChannel("c1"), OnEventType("*"), allowStar)
	anyChannel := mustListener(t, Method{Relay: 1, Name: "any_channel"}, OnChannel("*"), OnEventType("e1"), allowStar)
	r.Add(exact)
	r.Add(anyType)
	r.Add(anyChannel)

	got := r.GetByEvent("c1", "e1", KindAny)
	want := []*Binding{exact, anyType, anyChannel}
	if !slices.Equal(got, want) {
		t.Errorf("GetByEvent(c1, e1) = %v, want %v", got, want)
	}

	got = r.GetByEvent("c2", "e1", KindAny)
	if !slices.Equal(got, []*Binding{anyChannel}) {
		t.Errorf("GetByEvent(c2, e1) = %v, want [%s]", got, anyChannel)
	}

	got = r.GetByEvent("c2", "e2", KindAny)
	if len(got) != 0 {
		t.Errorf("GetByEvent(c2, e2) = %v, want none", got)
	}
}

func TestRegistry_FilterByKind(t *testing.T) {
	r := NewRegistry()
	m := Method{Relay: 1, Name: "m"}
	l := mustListener(t, m)
	e := mustEmitter(t, m)
	r.Add(l)
	r.Add(e)

	tests := []struct {
		kind Kind
		want []*Binding
	}{
		{KindAny, []*Binding{l, e}},
		{KindListener, []*Binding{l}},
		{KindEmitter, []*Binding{e}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := r.GetByEvent(DefaultChannel, DefaultEventType, tt.kind); !slices.Equal(got, tt.want) {
				t.Errorf("GetByEvent = %v, want %v", got, tt.want)
			}
			if got := r.GetByRelay(1, tt.kind); !slices.Equal(got, tt.want) {
				t.Errorf("GetByRelay = %v, want %v", got, tt.want)
			}
			if got := r.GetByMethod(m, tt.kind); !slices.Equal(got, tt.want) {
				t.Errorf("GetByMethod = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_UnknownLookups(t *testing.T) {
	r := NewRegistry()

	if got := r.GetByRelay(42, KindAny); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	if got := r.GetByMethod(Method{Relay: 1, Name: "x"}, KindAny); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
	if got := r.EventTypes("nope"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestRegistry_SnapshotIsIndependent(t *testing.T) {
	r := NewRegistry()
	a := mustListener(t, Method{Relay: 1, Name: "a"})
	b := mustListener(t, Method{Relay: 1, Name: "b"})
	r.Add(a)
	r.Add(b)

	snapshot := r.GetByEvent(DefaultChannel, DefaultEventType, KindAny)
	r.Remove(a)

	if len(snapshot) != 2 || snapshot[0] != a || snapshot[1] != b {
		t.Errorf("snapshot changed after Remove(): %v", snapshot)
	}
}

func TestRegistry_KeyInsertionOrder(t *testing.T) {
	r := NewRegistry()
	for _, ch := range []string{"zeta", "alpha", "mid"} {
		r.Add(mustListener(t, Method{Relay: 1, Name: ch}, on(ch, "e")...))
	}

	if got := r.Channels(); !slices.Equal(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("Channels() = %v, want insertion order", got)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})

	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				b, _ := NewListener(Method{Relay: RelayID(g + 1), Name: "l"}, noopHandler())
				r.Add(b)
				r.GetByEvent("*", "*", KindListener)
				r.Remove(b)
			}
		}(g)
	}

	for g := 0; g < 4; g++ {
		<-done
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}
