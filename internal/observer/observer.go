// Package observer provides the listener registry shared by the state
// containers.
//
// Listeners run synchronously on the caller's goroutine, once per Notify,
// in registration order. A Registry is not safe for concurrent use; the
// containers that embed it are single-writer.
package observer

// Listener receives the post-mutation state.
type Listener[S any] func(S)

// Registry is an ordered set of listeners.
type Registry[S any] struct {
	nextID  uint64
	entries []entry[S]
}

type entry[S any] struct {
	id uint64
	fn Listener[S]
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is a no-op.
func (r *Registry[S]) Subscribe(fn Listener[S]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, entry[S]{id: id, fn: fn})
	return func() { r.remove(id) }
}

// Notify calls every registered listener with state. Listeners added or
// removed during a Notify take effect from the next Notify.
func (r *Registry[S]) Notify(state S) {
	if len(r.entries) == 0 {
		return
	}
	snapshot := make([]entry[S], len(r.entries))
	copy(snapshot, r.entries)
	for _, e := range snapshot {
		e.fn(state)
	}
}

// Len returns the number of registered listeners.
func (r *Registry[S]) Len() int {
	return len(r.entries)
}

func (r *Registry[S]) remove(id uint64) {
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}
