package server

import (
	"slices"

	"github.com/samber/lo"

	"github.com/omochice/frame-chat/internal/chat"
)

// Registry maps peer addresses to their write handles. It is not safe for
// concurrent use: only the Dispatcher goroutine owns it.
type Registry struct {
	conns map[string]chat.Sender
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]chat.Sender)}
}

// Insert registers sender under address, replacing any previous record.
// It returns the replaced sender, if there was one.
func (r *Registry) Insert(address string, sender chat.Sender) (chat.Sender, bool) {
	previous, ok := r.conns[address]
	r.conns[address] = sender
	return previous, ok
}

// Remove deletes the record for address. Removing an absent address is a
// no-op and returns false.
func (r *Registry) Remove(address string) bool {
	if _, ok := r.conns[address]; !ok {
		return false
	}
	delete(r.conns, address)
	return true
}

// Get returns the sender registered under address.
func (r *Registry) Get(address string) (chat.Sender, bool) {
	sender, ok := r.conns[address]
	return sender, ok
}

// Contains reports whether address is registered.
func (r *Registry) Contains(address string) bool {
	_, ok := r.conns[address]
	return ok
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Recipients returns a point-in-time copy of every record except the one
// registered under from.
func (r *Registry) Recipients(from string) map[string]chat.Sender {
	return lo.OmitByKeys(r.conns, []string{from})
}

// Addresses returns the registered addresses in sorted order.
func (r *Registry) Addresses() []string {
	addresses := lo.Keys(r.conns)
	slices.Sort(addresses)
	return addresses
}

// Drain removes and returns every record.
func (r *Registry) Drain() []chat.Sender {
	senders := lo.Values(r.conns)
	clear(r.conns)
	return senders
}
