package hostrt

import "sync"

// Bus is the in-memory host.ChannelSystem used when no external transport is
// configured. Publish dispatches synchronously to every keyed listener.
type Bus struct {
	mutex sync.RWMutex
	subs  map[string]map[string]func(payload any)
}

// NewBus creates an empty channel bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[string]func(payload any))}
}

// Subscribe registers fn for messages on channel under key.
func (b *Bus) Subscribe(channel, key string, fn func(payload any)) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.subs[channel] == nil {
		b.subs[channel] = make(map[string]func(payload any))
	}
	b.subs[channel][key] = fn
}

// Unsubscribe drops the listener registered on channel under key.
func (b *Bus) Unsubscribe(channel, key string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.subs[channel], key)
}

// Publish delivers payload to every listener on channel. Listeners may
// unsubscribe while being invoked, so dispatch works on a snapshot.
func (b *Bus) Publish(channel string, payload any) {
	b.mutex.RLock()
	fns := make([]func(payload any), 0, len(b.subs[channel]))
	for _, fn := range b.subs[channel] {
		fns = append(fns, fn)
	}
	b.mutex.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// Count reports how many listeners are registered on channel.
func (b *Bus) Count(channel string) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subs[channel])
}
