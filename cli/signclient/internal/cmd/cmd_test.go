package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GiveMe1Star/digital-signature/application/client"
	"github.com/GiveMe1Star/digital-signature/directory"
	"github.com/GiveMe1Star/digital-signature/download"
	"github.com/GiveMe1Star/digital-signature/internal/servicetest"
	"github.com/GiveMe1Star/digital-signature/service"
	"github.com/GiveMe1Star/digital-signature/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetIn(strings.NewReader(in))
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, addr string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, client.NewConfig(file, "toml", addr, "downloads").Save())
	return file, filepath.Join(dir, "downloads")
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))
	return path
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "init", "--dir", dir, "--address", "http://signer:9000")
	require.NoError(t, err)

	var conf client.Config
	require.NoError(t, conf.Load(filepath.Join(dir, "config.toml"), "toml"))
	assert.Equal(t, "http://signer:9000", conf.Address)

	_, err = execute(t, "", "init", "--dir", dir)
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	out, err := execute(t, "", "status", "--config", filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
	assert.Contains(t, out, "signclient init")
}

func TestSignVerifyAndList(t *testing.T) {
	srv := servicetest.New()
	defer srv.Close()
	id := srv.Seed("Alice", "Legal", []byte("alice"))
	conf, downloads := writeConfig(t, srv.URL)
	files := t.TempDir()
	doc := writeFile(t, files, "contract.pdf", "contract")
	key := writeFile(t, files, "alice.key", "alice")

	out, err := execute(t, "", "sign", "-c", conf, "--document", doc, "--key", key)
	require.NoError(t, err)
	assert.Contains(t, out, "[+] Sign")
	sig := filepath.Join(downloads, "contract.pdf.sig")
	_, err = os.Stat(sig)
	require.NoError(t, err)

	out, err = execute(t, "", "verify", "-c", conf, "--document", doc, "--signature", sig, "--key-id", id, "--public-key", "")
	require.NoError(t, err)
	assert.Contains(t, out, "signer: Alice (Legal)")

	tampered := writeFile(t, files, "tampered.pdf", "forged")
	out, err = execute(t, "", "verify", "-c", conf, "--document", tampered, "--signature", sig, "--key-id", id, "--public-key", "")
	assert.Error(t, err)
	assert.Contains(t, out, "[!] Verify")

	out, err = execute(t, "", "directory", "list", "-c", conf, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `data-id="`+id+`"`)
}

func TestStatus(t *testing.T) {
	srv := servicetest.New()
	defer srv.Close()
	conf, _ := writeConfig(t, srv.URL)

	out, err := execute(t, "", "status", "-c", conf)
	require.NoError(t, err)
	assert.Contains(t, out, ": ok")
	assert.Contains(t, out, "generate_keys")
}

func TestDirectoryDeletePrompts(t *testing.T) {
	srv := servicetest.New()
	defer srv.Close()
	id := srv.Seed("Alice", "Legal", []byte("a"))
	conf, _ := writeConfig(t, srv.URL)

	out, err := execute(t, "n\n", "directory", "delete", "-c", conf, id)
	require.NoError(t, err)
	assert.Contains(t, out, "[y/N]")
	assert.Len(t, srv.Entries(), 1)

	_, err = execute(t, "yes\n", "directory", "delete", "-c", conf, id)
	require.NoError(t, err)
	assert.Empty(t, srv.Entries())

	out, err = execute(t, "y\n", "directory", "delete", "-c", conf, id)
	assert.Error(t, err)
	assert.Contains(t, out, "Key not found")
}

func newTestREPL(t *testing.T, confirm bool) (*repl, *bytes.Buffer, *servicetest.Server, *download.Memory) {
	t.Helper()
	srv := servicetest.New()
	t.Cleanup(srv.Close)
	svc := service.New(srv.URL)
	downloads := download.NewMemory()
	sess, err := session.New(session.Config{
		Service:   svc,
		Downloads: downloads,
		Confirmer: directory.ConfirmFunc(func(context.Context, string) bool { return confirm }),
	})
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	out := new(bytes.Buffer)
	return &repl{session: sess, service: svc, out: out}, out, srv, downloads
}

func TestREPLGenerateAndRegister(t *testing.T) {
	r, out, srv, downloads := newTestREPL(t, true)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, "generate"))
	assert.Contains(t, out.String(), "Required input is missing")
	assert.Equal(t, 0, srv.TotalCalls())

	r.handle(ctx, "set name Carol Smith")
	r.handle(ctx, "set department Finance")
	r.handle(ctx, "set key-size 2048")
	out.Reset()
	r.handle(ctx, "generate")
	assert.Contains(t, out.String(), "[+] Generate")
	assert.Equal(t, []string{"Carol_Smith_private.key"}, downloads.Names())

	r.handle(ctx, "set name Erin")
	r.handle(ctx, "set department Finance")
	out.Reset()
	r.handle(ctx, "generate")
	assert.Contains(t, out.String(), "[+] Generate", "key size falls back to its default after a reset")
	assert.Equal(t, []string{"Carol_Smith_private.key", "Erin_private.key"}, downloads.Names())

	pub := writeFile(t, t.TempDir(), "dan.pub", "dan")
	r.handle(ctx, "set register-name Dan")
	r.handle(ctx, "set register-department Ops")
	r.handle(ctx, "set public-key "+pub)
	out.Reset()
	r.handle(ctx, "register")
	assert.Contains(t, out.String(), "[+] Register")
	assert.Len(t, srv.Entries(), 3)

	out.Reset()
	r.handle(ctx, "list")
	assert.Contains(t, out.String(), "Carol Smith")
	assert.Contains(t, out.String(), "Erin")
	assert.Contains(t, out.String(), "Dan")
}

func TestREPLSelectAndDelete(t *testing.T) {
	r, out, srv, _ := newTestREPL(t, true)
	ctx := context.Background()
	id := srv.Seed("Alice", "Legal", []byte("a"))

	r.handle(ctx, "select "+id)
	out.Reset()
	r.handle(ctx, "signers")
	assert.Contains(t, out.String(), "* "+id)

	out.Reset()
	r.handle(ctx, "delete "+id)
	assert.Contains(t, out.String(), "[+] Deleted "+id)
	assert.Equal(t, "", r.session.Selected())

	out.Reset()
	r.handle(ctx, "delete "+id)
	assert.Contains(t, out.String(), "[!] Delete: Key not found")
}

func TestREPLDeclinedDeletePrintsNothing(t *testing.T) {
	r, out, srv, _ := newTestREPL(t, false)
	id := srv.Seed("Alice", "Legal", []byte("a"))
	r.handle(context.Background(), "delete "+id)
	assert.Empty(t, out.String())
	assert.Len(t, srv.Entries(), 1)
}

func TestREPLMisc(t *testing.T) {
	r, out, _, _ := newTestREPL(t, true)
	ctx := context.Background()

	r.handle(ctx, "")
	assert.Contains(t, out.String(), `Type "help"`)
	r.handle(ctx, "frobnicate")
	assert.Contains(t, out.String(), "Unrecognized command: frobnicate")
	r.handle(ctx, "set nosuchrole x")
	assert.Contains(t, out.String(), `unknown role "nosuchrole"`)

	out.Reset()
	r.handle(ctx, "state")
	assert.Contains(t, out.String(), "enabled: sign=false")
	assert.Contains(t, out.String(), "ready")

	out.Reset()
	r.handle(ctx, "status")
	assert.Contains(t, out.String(), ": ok")

	r.handle(ctx, "enable timestamp")
	assert.True(t, r.timestamps)
	assert.True(t, r.handle(ctx, "q"))
}

func TestIsYes(t *testing.T) {
	for answer, want := range map[string]bool{"y": true, " YES\n": true, "n": false, "": false, "yep": false} {
		assert.Equal(t, want, isYes(answer), answer)
	}
}
