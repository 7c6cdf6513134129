package workspace

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrValidation marks input rejected before any request is made.
	ErrValidation = errors.New("invalid input")
	// ErrInFlight is returned when a tab already has a request running.
	ErrInFlight = errors.New("request already in flight")
)

// Runner performs the backend call for a tab.
type Runner[In, Out any] func(ctx context.Context, in In) (Out, error)

// Tab is one independent tool workflow: its input, in-flight flag, last
// result and last error. A tab never runs two requests at once; different
// tabs share nothing. A late response overwrites whatever the tab shows.
type Tab[In, Out any] struct {
	name     string
	validate func(In) error
	run      Runner[In, Out]

	mu        sync.Mutex
	input     In
	inFlight  bool
	result    Out
	hasResult bool
	err       error
}

// TabState is a point-in-time view of a tab for rendering.
type TabState struct {
	Name      string
	InFlight  bool
	HasResult bool
	Err       error
}

func NewTab[In, Out any](name string, validate func(In) error, run Runner[In, Out]) *Tab[In, Out] {
	return &Tab[In, Out]{name: name, validate: validate, run: run}
}

func (t *Tab[In, Out]) Name() string { return t.name }

// Submit validates in, then runs the request unless one is already running.
// On failure the previous result is kept and the error is recorded.
func (t *Tab[In, Out]) Submit(ctx context.Context, in In) (Out, error) {
	var zero Out
	if t.validate != nil {
		if err := t.validate(in); err != nil {
			return zero, err
		}
	}
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return zero, ErrInFlight
	}
	t.inFlight = true
	t.input = in
	t.err = nil
	t.mu.Unlock()

	out, err := t.run(ctx, in)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false
	if err != nil {
		t.err = err
		return zero, err
	}
	t.result = out
	t.hasResult = true
	return out, nil
}

func (t *Tab[In, Out]) Result() (Out, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.hasResult
}

func (t *Tab[In, Out]) Input() In {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

func (t *Tab[In, Out]) State() TabState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TabState{Name: t.name, InFlight: t.inFlight, HasResult: t.hasResult, Err: t.err}
}

// Reset drops the result and error; an in-flight request still lands.
func (t *Tab[In, Out]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero Out
	t.result = zero
	t.hasResult = false
	t.err = nil
}
