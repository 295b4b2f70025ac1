// Package presenter keeps the results shown to the operator: one outcome
// slot per workflow view, an alert channel for the actions triggered from
// the directory (register and delete), and the shared busy indicator.
//
// A new outcome always replaces the previous one of the same workflow.
// Nothing is kept as history.
package presenter

import (
	"sync"

	"github.com/GiveMe1Star/digital-signature/protocol"
)

// Kind tags an outcome as a success or a failure.
type Kind int

const (
	Success Kind = iota
	Failure
)

func (k Kind) String() string {
	if k == Success {
		return "success"
	}
	return "failure"
}

// An Outcome is the rendered result of a completed workflow.
type Outcome struct {
	Workflow protocol.Workflow
	Kind     Kind
	Message  string
	// Signer is set on a successful verification.
	Signer string
	// KeyID is set when the service assigned a key identifier.
	KeyID string
	// Path is the location of a downloaded file.
	Path string
}

// OK reports whether o is a success.
func (o Outcome) OK() bool { return o.Kind == Success }

// An Alert is an outcome raised by a directory action.
type Alert = Outcome

// A Snapshot is a copy of the presenter state.
type Snapshot struct {
	Outcomes map[protocol.Workflow]Outcome
	Alert    *Alert
	Busy     bool
	Pending  int
}

// HasSlot reports whether w renders into its own outcome slot. Other
// workflows report through the alert channel.
func HasSlot(w protocol.Workflow) bool {
	switch w {
	case protocol.WorkflowSign, protocol.WorkflowVerify, protocol.WorkflowGenerate:
		return true
	}
	return false
}

// Presenter is safe for concurrent use. Subscribers receive snapshots in
// the order the changes happened and must not call back into the
// Presenter.
type Presenter struct {
	delivery  sync.Mutex
	mu        sync.Mutex
	outcomes  map[protocol.Workflow]Outcome
	alert     *Alert
	pending   int
	listeners map[int]func(Snapshot)
	nextID    int
}

// New returns an empty Presenter.
func New() *Presenter {
	return &Presenter{
		outcomes:  make(map[protocol.Workflow]Outcome),
		listeners: make(map[int]func(Snapshot)),
	}
}

// Begin marks one more flow as in flight and returns the function that
// releases it. The indicator stays busy until every flow has released.
// Calling release more than once has no effect.
func (p *Presenter) Begin() (release func()) {
	p.mu.Lock()
	p.pending++
	p.mu.Unlock()
	p.notify()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.pending--
			p.mu.Unlock()
			p.notify()
		})
	}
}

// Busy reports whether any flow is in flight.
func (p *Presenter) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending > 0
}

// Clear hides the outcome of w (or the alert for directory actions).
func (p *Presenter) Clear(w protocol.Workflow) {
	p.mu.Lock()
	if HasSlot(w) {
		delete(p.outcomes, w)
	} else if p.alert != nil && p.alert.Workflow == w {
		p.alert = nil
	}
	p.mu.Unlock()
	p.notify()
}

// Show replaces the outcome of o.Workflow. Outcomes of workflows without a
// slot are raised as alerts.
func (p *Presenter) Show(o Outcome) {
	p.mu.Lock()
	if HasSlot(o.Workflow) {
		p.outcomes[o.Workflow] = o
	} else {
		a := o
		p.alert = &a
	}
	p.mu.Unlock()
	p.notify()
}

// Outcome returns the outcome currently shown for w.
func (p *Presenter) Outcome(w protocol.Workflow) (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !HasSlot(w) {
		if p.alert != nil && p.alert.Workflow == w {
			return *p.alert, true
		}
		return Outcome{}, false
	}
	o, ok := p.outcomes[w]
	return o, ok
}

// DismissAlert removes the current alert.
func (p *Presenter) DismissAlert() {
	p.mu.Lock()
	p.alert = nil
	p.mu.Unlock()
	p.notify()
}

// Snapshot returns a copy of the current state.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Presenter) snapshotLocked() Snapshot {
	s := Snapshot{
		Outcomes: make(map[protocol.Workflow]Outcome, len(p.outcomes)),
		Busy:     p.pending > 0,
		Pending:  p.pending,
	}
	for w, o := range p.outcomes {
		s.Outcomes[w] = o
	}
	if p.alert != nil {
		a := *p.alert
		s.Alert = &a
	}
	return s
}

// Subscribe registers fn to be called with a fresh snapshot after every
// change. The returned function removes the subscription.
func (p *Presenter) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Presenter) notify() {
	p.delivery.Lock()
	defer p.delivery.Unlock()
	p.mu.Lock()
	snap := p.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
