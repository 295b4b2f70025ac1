package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/internal/servicetest"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *servicetest.Server) {
	t.Helper()
	srv := servicetest.New()
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), srv
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Contains(t, h.Endpoints, "sign")
}

func TestSignAndVerify(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	secret := []byte("alice-secret")
	id := srv.Seed("Alice", "Legal", secret)

	doc := artifact.Artifact{Name: "contract.pdf", Data: []byte("%PDF-1.7 contract")}
	sig, err := c.Sign(ctx, doc, artifact.Artifact{Name: "alice.key", Data: secret})
	require.NoError(t, err)
	assert.Equal(t, servicetest.Signature(secret, doc.Data), sig)

	res, err := c.Verify(ctx, doc, artifact.Artifact{Name: "contract.pdf.sig", Data: sig}, id)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "Alice (Legal)", res.Signer)

	tampered := artifact.Artifact{Name: "contract.pdf", Data: []byte("%PDF-1.7 forged")}
	res, err = c.Verify(ctx, tampered, artifact.Artifact{Name: "contract.pdf.sig", Data: sig}, id)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Signer)
	assert.Equal(t, servicetest.InvalidMessage, res.Message)
}

func TestVerifyWithKeyFile(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	secret := []byte("bob-secret")
	doc := artifact.Artifact{Name: "memo.txt", Data: []byte("memo")}
	sig := artifact.Artifact{Name: "memo.txt.sig", Data: servicetest.Signature(secret, doc.Data)}

	res, err := c.VerifyWithKeyFile(ctx, doc, sig, artifact.Artifact{Name: "bob.pub", Data: secret})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "Uploaded Key", res.Signer)
}

func TestVerifyUnknownKeyIsRejected(t *testing.T) {
	c, _ := newTestClient(t)
	doc := artifact.Artifact{Name: "memo.txt", Data: []byte("memo")}
	_, err := c.Verify(context.Background(), doc, artifact.Artifact{Name: "memo.sig", Data: []byte("x")}, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrRejected))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Must provide either key_id or public_key_file", e.Detail)
}

func TestGenerateKeys(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	key, err := c.GenerateKeys(ctx, "Carol Smith", "Finance", 2048)
	require.NoError(t, err)
	assert.NotEmpty(t, key.KeyID)
	assert.NotEmpty(t, key.PrivateKey)

	entries := srv.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, key.KeyID, entries[0].ID)

	_, err = c.GenerateKeys(ctx, "Carol", "Finance", 4096)
	assert.True(t, errors.Is(err, protocol.ErrRejected))
	assert.Equal(t, "Key size must be 512, 1024, or 2048", DetailOr(err, "Generation failed"))
}

func TestRegisterAndDirectory(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.Register(ctx, "Dan", "Ops", artifact.Artifact{Name: "dan.pub", Data: []byte("dan-public")})
	require.NoError(t, err)
	assert.NotEmpty(t, res.KeyID)

	entries, err := c.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dan", entries[0].Name)
	assert.Equal(t, "Ops", entries[0].Department)
	assert.NotEmpty(t, entries[0].CreatedAt)

	require.NoError(t, c.DeleteEntry(ctx, res.KeyID))
	entries, err = c.Directory(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = c.DeleteEntry(ctx, res.KeyID)
	assert.True(t, errors.Is(err, protocol.ErrRejected))
	assert.Equal(t, "Key not found", DetailOr(err, "Delete failed"))
}

func TestRegisterToleratesUnexpectedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("registered"))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Register(context.Background(), "Eve", "HR",
		artifact.Artifact{Name: "eve.pub", Data: []byte("k")})
	require.NoError(t, err)
	assert.Empty(t, res.KeyID)
}

func TestRejectionWithoutDetail(t *testing.T) {
	c, srv := newTestClient(t)
	srv.FailNext(http.MethodPost, protocol.SignPath, http.StatusInternalServerError, "")

	_, err := c.Sign(context.Background(), artifact.Artifact{Name: "a", Data: []byte("a")},
		artifact.Artifact{Name: "k", Data: []byte("k")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrRejected))
	assert.Equal(t, "Signing failed", DetailOr(err, "Signing failed"))
}

func TestNonStringDetailIsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","file"],"msg":"Field required"}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Directory(context.Background())
	assert.True(t, errors.Is(err, protocol.ErrRejected))
	assert.Equal(t, "fallback", DetailOr(err, "fallback"))
}

func TestTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	_, err := New(srv.URL).Directory(context.Background())
	assert.True(t, errors.Is(err, protocol.ErrTransport))

	srv.Close()
	_, err = New(srv.URL).Directory(context.Background())
	assert.True(t, errors.Is(err, protocol.ErrTransport))
	assert.False(t, errors.Is(err, protocol.ErrRejected))
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	c := New("http://localhost:8000", WithHTTPClient(shared), WithTimeout(5*time.Second))
	assert.Equal(t, time.Duration(0), shared.Timeout)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestRequestIDPerRequest(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	_, _ = c.Directory(ctx)
	_, _ = c.Directory(ctx)

	ids := srv.RequestIDs()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}
