package rules

import (
	"sync"
	"time"
)

// EventName identifies the category of an engine event. The names are part of
// the UI contract and match what the presentation layer subscribes to.
type EventName string

const (
	// EventLog mirrors every game-log append.
	EventLog EventName = "log"
	// EventAzione is the fire-and-forget narration channel.
	EventAzione EventName = "azione"
	// EventFase announces turn/phase changes.
	EventFase EventName = "fase"

	EventPescaRifornimento     EventName = "pesca_rifornimento"
	EventHandChanged           EventName = "hand_changed"
	EventScartaCarte           EventName = "scarta_carte"
	EventDemoneAggiuntoCerchia EventName = "demone_aggiunto_cerchia"
	EventBossRuotato           EventName = "boss_ruotato"
	EventAzioneConsumata       EventName = "azione_consumata"
	EventAzioneAnnullata       EventName = "azione_annullata"
)

// Event represents a state change that the presentation layer may react to.
type Event struct {
	Name      EventName
	Player    string         // acting player, if any
	Target    string         // affected player, if different from Player
	Cards     []string       // card names involved, in order
	Amount    int            // primary numeric value (cost, star total, step)
	Before    int            // prior value for before/after transitions
	After     int            // new value for before/after transitions
	Text      string         // human-readable narration
	Detail    map[string]any // anything that does not fit the fields above
	Timestamp time.Time
}

// Handler is a callback invoked for every published event it subscribed to.
type Handler func(Event)

// Bus is a synchronous name-keyed publish/subscribe registry. A panicking
// handler is recovered and skipped so that it can never abort the engine
// operation that emitted the event.
type Bus struct {
	mu        sync.RWMutex
	listeners map[EventName]map[int]Handler
	next      int
}

// NewBus constructs a fresh event bus instance.
func NewBus() *Bus {
	return &Bus{listeners: make(map[EventName]map[int]Handler)}
}

// Subscribe registers a handler for the named event and returns a function
// that removes the registration. Subscribing a nil handler is a no-op.
func (b *Bus) Subscribe(name EventName, h Handler) func() {
	if h == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.next
	b.next++
	byHandle, ok := b.listeners[name]
	if !ok {
		byHandle = make(map[int]Handler)
		b.listeners[name] = byHandle
	}
	byHandle[handle] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners[name], handle)
	}
}

// Publish delivers the event to all handlers registered for its name,
// synchronously and in unspecified order.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.listeners[evt.Name]))
	for _, h := range b.listeners[evt.Name] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		safeInvoke(h, evt)
	}
}

func safeInvoke(h Handler, evt Event) {
	defer func() {
		_ = recover()
	}()
	h(evt)
}
