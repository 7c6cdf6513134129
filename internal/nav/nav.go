// Package nav models the client's views and the navigation side effects that
// the HTTP layer and the route guard trigger.
package nav

import "sync"

type View string

const (
	ViewLogin     View = "login"
	ViewWorkspace View = "workspace"
	ViewHistory   View = "history"
	ViewAdmin     View = "admin"
)

// Navigator switches the active view.
type Navigator interface {
	Current() View
	Navigate(to View)
}

// Router is an in-memory Navigator that invokes OnChange after each switch.
type Router struct {
	mu       sync.Mutex
	current  View
	history  []View
	OnChange func(from, to View)
}

func NewRouter(start View) *Router {
	return &Router{current: start}
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) Navigate(to View) {
	r.mu.Lock()
	from := r.current
	r.current = to
	r.history = append(r.history, to)
	cb := r.OnChange
	r.mu.Unlock()
	if cb != nil {
		cb(from, to)
	}
}

// Visits returns every view navigated to, in order.
func (r *Router) Visits() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.history...)
}

// Count returns how many times to was navigated to.
func (r *Router) Count(to View) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.history {
		if v == to {
			n++
		}
	}
	return n
}
