package artifact

import (
	"sync"
	"testing"

	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	c, err := NewMemoryCollector()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCollector_SetReplaces(t *testing.T) {
	c := newTestCollector(t)
	require.NoError(t, c.Set(RoleDocument, Artifact{Name: "a.pdf", Data: []byte("first")}))
	require.NoError(t, c.Set(RoleDocument, Artifact{Name: "b.pdf", Data: []byte("second")}))

	a, ok, err := c.Get(RoleDocument)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b.pdf", a.Name)
	assert.Equal(t, []byte("second"), a.Data)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap, 2, "the document and the key size default")
}

func TestCollector_EmptyFileIsStillPresent(t *testing.T) {
	c := newTestCollector(t)
	require.NoError(t, c.Set(RoleSignature, Artifact{Name: "empty.sig"}))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Has(RoleSignature))
	assert.Equal(t, 0, snap[RoleSignature].Size)
}

func TestCollector_BlankFieldEmptiesSlot(t *testing.T) {
	c := newTestCollector(t)
	require.NoError(t, c.SetField(RoleName, "Alice"))
	assert.Equal(t, "Alice", c.Field(RoleName))

	require.NoError(t, c.SetField(RoleName, "   "))
	_, ok, err := c.Get(RoleName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollector_ClearOnlyTouchesWorkflow(t *testing.T) {
	c := newTestCollector(t)
	require.NoError(t, c.SetField(RoleName, "Alice"))
	require.NoError(t, c.SetField(RoleDepartment, "Eng"))
	require.NoError(t, c.SetField(RoleKeySize, "2048"))
	require.NoError(t, c.Set(RoleDocument, Artifact{Name: "doc.txt", Data: []byte("x")}))

	require.NoError(t, c.Clear(protocol.WorkflowGenerate))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.False(t, snap.Has(RoleName))
	assert.False(t, snap.Has(RoleDepartment))
	assert.Equal(t, "1024", snap.Value(RoleKeySize), "key size goes back to its default")
	assert.True(t, snap.Has(RoleDocument))
}

func TestCollector_FreshFormHasDefaults(t *testing.T) {
	c := newTestCollector(t)
	assert.Equal(t, "1024", c.Field(RoleKeySize))
	assert.Equal(t, "", RoleName.Default())

	require.NoError(t, c.SetField(RoleKeySize, "512"))
	require.NoError(t, c.ApplyDefaults())
	assert.Equal(t, "512", c.Field(RoleKeySize), "defaults never replace a value")

	require.NoError(t, c.SetField(RoleKeySize, ""))
	require.NoError(t, c.ApplyDefaults())
	assert.Equal(t, "1024", c.Field(RoleKeySize))
}

func TestCollector_SnapshotCarriesFieldValues(t *testing.T) {
	c := newTestCollector(t)
	require.NoError(t, c.SetField(RoleKeySize, " 2048 "))
	require.NoError(t, c.Set(RolePrivateKey, Artifact{Name: "alice_private.key", Data: []byte("secret")}))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "2048", snap.Value(RoleKeySize))
	assert.Equal(t, "", snap[RolePrivateKey].Value, "file contents never leak into the snapshot")
	assert.Equal(t, "alice_private.key", snap.Name(RolePrivateKey))
}

func TestCollector_UnknownRole(t *testing.T) {
	c := newTestCollector(t)
	assert.Error(t, c.Set(Role("bogus"), Artifact{}))
	assert.Error(t, c.SetField(Role("bogus"), "x"))
	_, err := ParseRole("bogus")
	assert.Error(t, err)
}

func TestCollector_Concurrency(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.Set(RoleDocument, Artifact{Name: "doc", Data: []byte{byte(i)}})
			} else {
				_, _ = c.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	_, ok, err := c.Get(RoleDocument)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRolesOf(t *testing.T) {
	assert.Equal(t, []Role{RoleDocument, RolePrivateKey}, RolesOf(protocol.WorkflowSign))
	assert.Equal(t, []Role{RoleRegisterName, RoleRegisterDepartment, RolePublicKey}, RolesOf(protocol.WorkflowRegister))
	assert.Empty(t, RolesOf(protocol.WorkflowDelete))
}
