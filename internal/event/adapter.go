package event

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/inkwright/inkwright/internal/logging"
)

// legacyHandlerPriority places legacy fan-out after every normally
// prioritized handler.
const legacyHandlerPriority = 1000

// ChannelForKind maps an event kind to the channel name older plugins
// listen on. The table is fixed; kinds outside it land on "general".
func ChannelForKind(k Kind) string {
	switch k.Namespace() {
	case "document":
		return "doc"
	case "project":
		return "project"
	case "error":
		return "error"
	default:
		return "general"
	}
}

// LegacyAdapter bridges the typed bus to the channel-and-map callback
// API older plugins were written against. It subscribes to every event
// and forwards a flattened map to the callbacks registered on the
// event's channel, after all normal handlers have run.
type LegacyAdapter struct {
	bus    Bus
	logger *logging.Logger

	mu       sync.Mutex
	channels map[string][]legacyRegistration
	closed   bool

	sub Subscription
}

type legacyRegistration struct {
	id string
	fn func(data map[string]any)
}

// NewLegacyAdapter creates an adapter attached to the given bus.
func NewLegacyAdapter(bus Bus, logger *logging.Logger) (*LegacyAdapter, error) {
	if logger == nil {
		logger = logging.NullLogger
	}

	a := &LegacyAdapter{
		bus:      bus,
		logger:   logger.WithComponent("legacy"),
		channels: make(map[string][]legacyRegistration),
	}

	sub, err := bus.SubscribeAll(HandlerFunc(a.forward), WithHandlerPriority(legacyHandlerPriority))
	if err != nil {
		return nil, err
	}
	a.sub = sub
	return a, nil
}

// RegisterChannel adds a callback for a channel and returns a
// registration id for later removal. Callbacks on the same channel run
// in registration order and must treat the data map as read-only.
func (a *LegacyAdapter) RegisterChannel(channel string, fn func(data map[string]any)) string {
	if fn == nil {
		return ""
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ""
	}

	id := uuid.NewString()
	a.channels[channel] = append(a.channels[channel], legacyRegistration{id: id, fn: fn})
	return id
}

// UnregisterChannel removes one callback from a channel by its
// registration id. Returns false when the id is unknown.
func (a *LegacyAdapter) UnregisterChannel(channel, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	regs := a.channels[channel]
	for i, reg := range regs {
		if reg.id == id {
			a.channels[channel] = append(regs[:i], regs[i+1:]...)
			if len(a.channels[channel]) == 0 {
				delete(a.channels, channel)
			}
			return true
		}
	}
	return false
}

// Publish lets legacy code emit an event using the old string-and-map
// signature. The data map becomes the event payload as-is.
func (a *LegacyAdapter) Publish(eventType string, data map[string]any) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return
	}

	_ = a.bus.Emit(context.Background(), New(Kind(eventType), data, WithSource("legacy")))
}

// CallbackCount returns the number of registered callbacks across all channels.
func (a *LegacyAdapter) CallbackCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, regs := range a.channels {
		count += len(regs)
	}
	return count
}

// Close detaches the adapter from the bus and drops all callbacks.
// Close is idempotent.
func (a *LegacyAdapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.channels = make(map[string][]legacyRegistration)
	a.mu.Unlock()

	return a.bus.Unsubscribe(a.sub)
}

// forward is the catch-all handler that fans events out to channel callbacks.
func (a *LegacyAdapter) forward(_ context.Context, e Event) error {
	channel := ChannelForKind(e.Kind)

	a.mu.Lock()
	regs := append([]legacyRegistration(nil), a.channels[channel]...)
	a.mu.Unlock()

	if len(regs) == 0 {
		return nil
	}

	data := FlattenEvent(e)
	for _, reg := range regs {
		a.invoke(reg, data, e.Kind)
	}
	return nil
}

// invoke runs one callback with its own panic guard so a broken legacy
// plugin cannot stop the rest of the channel.
func (a *LegacyAdapter) invoke(reg legacyRegistration, data map[string]any, kind Kind) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("callback %s panicked on %s: %v", reg.id, kind, r)
		}
	}()
	reg.fn(data)
}

// FlattenEvent converts an event to the flat map shape legacy
// callbacks expect. Struct payloads are flattened through their JSON
// form; map payloads are copied; anything else lands under "payload".
// Metadata rides along under reserved keys.
func FlattenEvent(e Event) map[string]any {
	data := make(map[string]any)

	switch p := e.Payload.(type) {
	case nil:
	case map[string]any:
		for k, v := range p {
			data[k] = v
		}
	default:
		if fields, ok := structFields(p); ok {
			for k, v := range fields {
				data[k] = v
			}
		} else {
			data["payload"] = p
		}
	}

	data["kind"] = string(e.Kind)
	data["id"] = e.Metadata.ID
	data["source"] = e.Metadata.Source
	data["timestamp"] = e.Metadata.Timestamp
	return data
}

// structFields flattens a struct payload via its JSON representation.
func structFields(v any) (map[string]any, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}
