// Package session wires the collector, directory cache, presenter and
// workflow executor into one explicit state container. A Session is what
// a front end (the REPL, a one-shot command, a page) drives: it mutates
// inputs, triggers workflows and subscribes to state changes. Nothing is
// kept in package-level variables.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/directory"
	"github.com/GiveMe1Star/digital-signature/download"
	"github.com/GiveMe1Star/digital-signature/gatekeeper"
	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/GiveMe1Star/digital-signature/workflow"
)

// A View is one of the operator's tabs.
type View string

// Views.
const (
	ViewSign      View = "sign"
	ViewVerify    View = "verify"
	ViewGenerate  View = "generate"
	ViewDirectory View = "directory"
)

// Service is everything a session needs from the signature service.
type Service interface {
	workflow.Service
	directory.Fetcher
}

// Config holds the collaborators of a Session. Collector and Logger may be
// nil; an in-memory collector and a no-op logger are used instead.
type Config struct {
	Service   Service
	Downloads download.Sink
	Confirmer directory.Confirmer
	Collector *artifact.Collector
	Logger    *application.Logger
}

// State is a copy of everything a front end renders.
type State struct {
	View       View
	Slots      artifact.Snapshot
	Selected   string
	Enablement gatekeeper.Enablement
	Entries    []protocol.DirectoryEntry
	Loaded     bool
	Presenter  presenter.Snapshot
}

// A Session is safe for concurrent use.
type Session struct {
	collector *artifact.Collector
	cache     *directory.Cache
	presenter *presenter.Presenter
	exec      *workflow.Executor
	logger    *application.Logger

	delivery  sync.Mutex
	mu        sync.Mutex
	view      View
	selected  string
	listeners map[int]func(State)
	nextID    int

	unsubscribe []func()
}

// New builds a Session from conf.
func New(conf Config) (*Session, error) {
	if conf.Service == nil || conf.Downloads == nil {
		return nil, fmt.Errorf("session: service and downloads are required")
	}
	logger := conf.Logger
	if logger == nil {
		logger = application.NewNopLogger()
	}
	collector := conf.Collector
	if collector == nil {
		c, err := artifact.NewMemoryCollector()
		if err != nil {
			return nil, err
		}
		collector = c
	} else if err := collector.ApplyDefaults(); err != nil {
		return nil, err
	}

	p := presenter.New()
	cache := directory.New(conf.Service, conf.Confirmer, p, logger)
	s := &Session{
		collector: collector,
		cache:     cache,
		presenter: p,
		exec: workflow.New(workflow.Deps{
			Service:   conf.Service,
			Collector: collector,
			Presenter: p,
			Downloads: conf.Downloads,
			Directory: cache,
			Logger:    logger,
		}),
		logger:    logger.Named("session"),
		view:      ViewSign,
		listeners: make(map[int]func(State)),
	}
	s.unsubscribe = append(s.unsubscribe,
		cache.Subscribe(s.reconcile),
		p.Subscribe(func(presenter.Snapshot) { s.notify() }),
	)
	return s, nil
}

// reconcile runs after every directory refresh. The selection survives
// only if its entry is still listed.
func (s *Session) reconcile(entries []protocol.DirectoryEntry) {
	s.mu.Lock()
	if s.selected != "" {
		found := false
		for _, e := range entries {
			if e.ID == s.selected {
				found = true
				break
			}
		}
		if !found {
			s.logger.Debug("selected signer no longer listed", "id", s.selected)
			s.selected = ""
		}
	}
	s.mu.Unlock()
	s.notify()
}

// SetArtifact binds a to role.
func (s *Session) SetArtifact(role artifact.Role, a artifact.Artifact) error {
	if err := s.collector.Set(role, a); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetField sets a text field. A blank value empties it.
func (s *Session) SetField(role artifact.Role, value string) error {
	if err := s.collector.SetField(role, value); err != nil {
		return err
	}
	s.notify()
	return nil
}

// LoadArtifact reads the file at path and binds it to role under its
// base name.
func (s *Session) LoadArtifact(role artifact.Role, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.SetArtifact(role, artifact.Artifact{Name: filepath.Base(path), Data: data})
}

// SelectSigner selects the directory entry id for verification. An empty
// id selects the placeholder. The directory is loaded first if needed.
func (s *Session) SelectSigner(ctx context.Context, id string) error {
	if id != "" {
		s.cache.EnsureLoaded(ctx)
		if _, ok := s.cache.Lookup(id); !ok {
			return fmt.Errorf("unknown signer %q", id)
		}
	}
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	s.notify()
	return nil
}

// Selected returns the selected signer id, "" for the placeholder.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Enablement evaluates every workflow trigger against the current inputs.
func (s *Session) Enablement() gatekeeper.Enablement {
	snap, err := s.collector.Snapshot()
	if err != nil {
		s.logger.Error("reading artifact slots failed", "error", err)
		return gatekeeper.Enablement{}
	}
	return gatekeeper.Evaluate(snap, s.Selected())
}

// ActivateView switches the active view. The directory view always
// refetches the directory; the verify view loads it once for the signer
// selector.
func (s *Session) ActivateView(ctx context.Context, v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	switch v {
	case ViewDirectory:
		s.Refresh(ctx)
	case ViewVerify:
		s.cache.EnsureLoaded(ctx)
	}
	s.notify()
}

// Refresh refetches the directory.
func (s *Session) Refresh(ctx context.Context) {
	release := s.presenter.Begin()
	defer release()
	s.cache.Refresh(ctx)
}

// Entries returns the cached directory, loading it on first use.
func (s *Session) Entries(ctx context.Context) []protocol.DirectoryEntry {
	s.cache.EnsureLoaded(ctx)
	return s.cache.Entries()
}

// Sign runs the sign workflow.
func (s *Session) Sign(ctx context.Context) (presenter.Outcome, error) {
	if !s.Enablement().Sign {
		return presenter.Outcome{}, protocol.ErrInputIncomplete
	}
	return s.exec.Sign(ctx)
}

// Verify verifies against the selected signer.
func (s *Session) Verify(ctx context.Context) (presenter.Outcome, error) {
	if !s.Enablement().Verify {
		return presenter.Outcome{}, protocol.ErrInputIncomplete
	}
	return s.exec.Verify(ctx, s.Selected())
}

// VerifyWithKeyFile verifies against the uploaded public key file.
func (s *Session) VerifyWithKeyFile(ctx context.Context) (presenter.Outcome, error) {
	if !s.Enablement().VerifyWithKeyFile {
		return presenter.Outcome{}, protocol.ErrInputIncomplete
	}
	return s.exec.VerifyWithKeyFile(ctx)
}

// Generate runs the key generation workflow.
func (s *Session) Generate(ctx context.Context) (presenter.Outcome, error) {
	if !s.Enablement().Generate {
		return presenter.Outcome{}, protocol.ErrInputIncomplete
	}
	return s.exec.Generate(ctx)
}

// Register runs the public key registration workflow.
func (s *Session) Register(ctx context.Context) (presenter.Outcome, error) {
	if !s.Enablement().Register {
		return presenter.Outcome{}, protocol.ErrInputIncomplete
	}
	return s.exec.Register(ctx)
}

// Delete removes the directory entry id after confirmation.
func (s *Session) Delete(ctx context.Context, id string) error {
	return s.exec.Delete(ctx, id)
}

// DismissAlert hides the current alert.
func (s *Session) DismissAlert() {
	s.presenter.DismissAlert()
}

// State returns a copy of the session state.
func (s *Session) State() State {
	snap, err := s.collector.Snapshot()
	if err != nil {
		s.logger.Error("reading artifact slots failed", "error", err)
		snap = artifact.Snapshot{}
	}
	s.mu.Lock()
	view, selected := s.view, s.selected
	s.mu.Unlock()
	return State{
		View:       view,
		Slots:      snap,
		Selected:   selected,
		Enablement: gatekeeper.Evaluate(snap, selected),
		Entries:    s.cache.Entries(),
		Loaded:     s.cache.Loaded(),
		Presenter:  s.presenter.Snapshot(),
	}
}

// Subscribe registers fn to receive the state after every change. It
// returns a function removing the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify() {
	s.delivery.Lock()
	defer s.delivery.Unlock()
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	st := s.State()
	for _, fn := range fns {
		fn(st)
	}
}

// Close releases the session's store. The session must not be used
// afterwards.
func (s *Session) Close() error {
	for _, u := range s.unsubscribe {
		u()
	}
	return s.collector.Close()
}
