package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileRefusesOverwrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "key")
	if err := WriteFile(file, []byte("first"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(file, []byte("second"), 0600); !errors.Is(err, fs.ErrExist) {
		t.Fatal("Expect", fs.ErrExist, "got", err)
	}
	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Error("Expect", "first", "got", string(got))
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("sig", "/etc/client/config.toml"); got != "/etc/client/sig" {
		t.Error("Expect", "/etc/client/sig", "got", got)
	}
	if got := ResolvePath("/tmp/sig", "/etc/client/config.toml"); got != "/tmp/sig" {
		t.Error("Expect", "/tmp/sig", "got", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"contract.pdf.sig", "contract.pdf.sig"},
		{"../../etc/passwd", "passwd"},
		{"a\\b:c", "a_b_c"},
		{"bad\nname", "bad_name"},
		{"..", "download"},
		{"  ", "download"},
	} {
		if got := SanitizeFileName(tc.in, "download"); got != tc.want {
			t.Error("Expect", tc.want, "for", tc.in, "got", got)
		}
	}
}
