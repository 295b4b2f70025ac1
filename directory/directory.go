// Package directory keeps the session's copy of the signer directory.
//
// The cache is replaced as a whole on every refresh and never patched.
// A refresh that fails for any reason leaves an empty directory behind,
// so a stale listing is never shown as current.
package directory

import (
	"context"
	"sync"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/protocol"
)

// A Fetcher reads and mutates the remote directory.
type Fetcher interface {
	Directory(ctx context.Context) ([]protocol.DirectoryEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// A Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// A BusyIndicator marks the time a request is in flight.
type BusyIndicator interface {
	Begin() (release func())
}

type noBusy struct{}

func (noBusy) Begin() func() { return func() {} }

// Cache is safe for concurrent use.
type Cache struct {
	fetcher   Fetcher
	confirmer Confirmer
	busy      BusyIndicator
	logger    *application.Logger

	delivery  sync.Mutex
	mu        sync.Mutex
	entries   []protocol.DirectoryEntry
	loaded    bool
	listeners map[int]func([]protocol.DirectoryEntry)
	nextID    int
}

// New returns an empty, unloaded Cache. A nil busy or logger is replaced
// by a no-op.
func New(f Fetcher, c Confirmer, busy BusyIndicator, logger *application.Logger) *Cache {
	if busy == nil {
		busy = noBusy{}
	}
	if logger == nil {
		logger = application.NewNopLogger()
	}
	return &Cache{
		fetcher:   f,
		confirmer: c,
		busy:      busy,
		logger:    logger.Named("directory"),
		listeners: make(map[int]func([]protocol.DirectoryEntry)),
	}
}

// Refresh replaces the cached entries with the service's listing. On
// failure the cache becomes empty. Subscribers are notified either way.
func (c *Cache) Refresh(ctx context.Context) {
	entries, err := c.fetcher.Directory(ctx)
	if err != nil {
		c.logger.Warn("directory refresh failed", "error", err)
		entries = nil
	}
	c.replace(entries)
}

func (c *Cache) replace(entries []protocol.DirectoryEntry) {
	c.delivery.Lock()
	defer c.delivery.Unlock()
	c.mu.Lock()
	c.entries = append([]protocol.DirectoryEntry(nil), entries...)
	c.loaded = true
	fns := make([]func([]protocol.DirectoryEntry), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	snapshot := c.entries
	c.mu.Unlock()

	for _, fn := range fns {
		fn(append([]protocol.DirectoryEntry(nil), snapshot...))
	}
}

// EnsureLoaded refreshes the cache if it has never been populated.
func (c *Cache) EnsureLoaded(ctx context.Context) {
	if c.Loaded() {
		return
	}
	c.Refresh(ctx)
}

// Loaded reports whether a refresh has completed.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Entries returns a copy of the cached entries in service order.
func (c *Cache) Entries() []protocol.DirectoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.DirectoryEntry(nil), c.entries...)
}

// Lookup returns the cached entry id.
func (c *Cache) Lookup(id string) (protocol.DirectoryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return protocol.DirectoryEntry{}, false
}

// Remove deletes the entry id from the service once the operator has
// confirmed it. A declined confirmation returns protocol.ErrDeclined
// without issuing a request. A successful delete refreshes the cache; a
// failed one leaves it untouched and returns the service error.
func (c *Cache) Remove(ctx context.Context, id string) error {
	if c.confirmer == nil || !c.confirmer.Confirm(ctx, "Delete key "+id+"?") {
		return protocol.ErrDeclined
	}
	release := c.busy.Begin()
	defer release()

	if err := c.fetcher.DeleteEntry(ctx, id); err != nil {
		c.logger.Info("delete failed", "id", id, "error", err)
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Subscribe registers fn to be called with the new entries after every
// refresh. It returns a function removing the subscription.
func (c *Cache) Subscribe(fn func([]protocol.DirectoryEntry)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}
