package artifact

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/GiveMe1Star/digital-signature/storage/kv"
	"github.com/GiveMe1Star/digital-signature/storage/kv/leveldbkv"
)

// An Artifact is an opaque file supplied by the operator together with
// its display name.
type Artifact struct {
	Name string
	Data []byte
}

// A Collector holds the artifact slots of every workflow.
// It is safe for concurrent use.
type Collector struct {
	mu sync.RWMutex
	db kv.DB
}

// NewCollector returns a Collector storing its slots in db.
func NewCollector(db kv.DB) *Collector {
	return &Collector{db: db}
}

// NewMemoryCollector returns a Collector backed by an in-memory leveldb
// store that disappears with the process.
func NewMemoryCollector() (*Collector, error) {
	db, err := leveldbkv.OpenMemory()
	if err != nil {
		return nil, err
	}
	c := NewCollector(db)
	if err := c.ApplyDefaults(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func slotKey(r Role) []byte {
	return []byte(string(r.Workflow()) + "/" + string(r))
}

func workflowPrefix(w protocol.Workflow) []byte {
	return []byte(string(w) + "/")
}

func fieldValue(r Role, value string) []byte {
	return encodeArtifact(Artifact{Name: string(r), Data: []byte(value)})
}

// ApplyDefaults fills every empty field that has a default value.
func (c *Collector) ApplyDefaults() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.db.NewBatch()
	for _, r := range allRoles {
		if r.Default() == "" {
			continue
		}
		_, err := c.db.Get(slotKey(r))
		if err == nil {
			continue
		}
		if err != c.db.ErrNotFound() {
			return err
		}
		batch.Put(slotKey(r), fieldValue(r, r.Default()))
	}
	return c.db.Write(batch)
}

// Set binds a to r, replacing whatever r held before.
func (c *Collector) Set(r Role, a Artifact) error {
	if _, ok := roles[r]; !ok {
		return fmt.Errorf("unknown role %q", r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Put(slotKey(r), encodeArtifact(a))
}

// SetField stores a text field value. A blank value empties the slot.
func (c *Collector) SetField(r Role, value string) error {
	if _, ok := roles[r]; !ok {
		return fmt.Errorf("unknown role %q", r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(value) == "" {
		return c.db.Delete(slotKey(r))
	}
	return c.db.Put(slotKey(r), fieldValue(r, value))
}

// Get returns the artifact bound to r. The boolean is false if the slot
// is empty.
func (c *Collector) Get(r Role) (Artifact, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, err := c.db.Get(slotKey(r))
	if err == c.db.ErrNotFound() {
		return Artifact{}, false, nil
	}
	if err != nil {
		return Artifact{}, false, err
	}
	a, err := decodeArtifact(v)
	if err != nil {
		return Artifact{}, false, err
	}
	return a, true, nil
}

// Field returns the value of a text field, or "" if it is empty.
func (c *Collector) Field(r Role) string {
	a, ok, err := c.Get(r)
	if err != nil || !ok {
		return ""
	}
	return string(a.Data)
}

// Clear resets every slot owned by w in a single atomic write. Fields
// with a default get it back, everything else is emptied.
func (c *Collector) Clear(w protocol.Workflow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.db.NewBatch()
	iter := c.db.NewIterator(kv.BytesPrefix(workflowPrefix(w)))
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}
	for _, r := range RolesOf(w) {
		if d := r.Default(); d != "" {
			batch.Put(slotKey(r), fieldValue(r, d))
		}
	}
	return c.db.Write(batch)
}

// Snapshot returns the presence of every slot at this instant.
func (c *Collector) Snapshot() (Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(Snapshot)
	iter := c.db.NewIterator(nil)
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key())
		i := strings.IndexByte(key, '/')
		if i < 0 {
			continue
		}
		r := Role(key[i+1:])
		a, err := decodeArtifact(iter.Value())
		if err != nil {
			return nil, err
		}
		slot := Slot{Name: a.Name, Size: len(a.Data)}
		if r.IsField() {
			slot.Value = string(a.Data)
		}
		snap[r] = slot
	}
	return snap, iter.Error()
}

// Close releases the underlying store.
func (c *Collector) Close() error {
	return c.db.Close()
}

func encodeArtifact(a Artifact) []byte {
	buf := make([]byte, binary.MaxVarintLen64, binary.MaxVarintLen64+len(a.Name)+len(a.Data))
	n := binary.PutUvarint(buf, uint64(len(a.Name)))
	buf = buf[:n]
	buf = append(buf, a.Name...)
	return append(buf, a.Data...)
}

func decodeArtifact(v []byte) (Artifact, error) {
	l, n := binary.Uvarint(v)
	if n <= 0 || uint64(len(v)-n) < l {
		return Artifact{}, kv.ErrBadValue
	}
	name := string(v[n : n+int(l)])
	data := append([]byte(nil), v[n+int(l):]...)
	return Artifact{Name: name, Data: data}, nil
}
