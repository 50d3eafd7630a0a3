package event

import "context"

// Emitter is a convenience wrapper that emits every event with a fixed
// source. Components hold an Emitter instead of threading WithSource
// through every call.
type Emitter struct {
	bus    Bus
	source string
}

// NewEmitter creates an Emitter that stamps events with the given source.
func NewEmitter(bus Bus, source string) *Emitter {
	return &Emitter{
		bus:    bus,
		source: source,
	}
}

// Emit constructs and emits an event with the emitter's source.
// Explicit options run afterwards and may override it.
func (p *Emitter) Emit(ctx context.Context, kind Kind, payload any, opts ...EventOption) error {
	merged := make([]EventOption, 0, len(opts)+1)
	merged = append(merged, WithSource(p.source))
	merged = append(merged, opts...)
	return p.bus.Emit(ctx, New(kind, payload, merged...))
}

// EmitEvent emits a pre-built event, stamping the source only when the
// event does not carry one.
func (p *Emitter) EmitEvent(ctx context.Context, e Event) error {
	if e.Metadata.Source == "" {
		e.Metadata.Source = p.source
	}
	return p.bus.Emit(ctx, e)
}

// Source returns the emitter's source identifier.
func (p *Emitter) Source() string {
	return p.source
}

// Bus returns the underlying bus.
func (p *Emitter) Bus() Bus {
	return p.bus
}
