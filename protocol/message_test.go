package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseKeySize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
		ok   bool
	}{
		{"1024", 1024, true},
		{" 2048 ", 2048, true},
		{"512", 512, true},
		{"4096", 0, false},
		{"", 0, false},
		{"big", 0, false},
	} {
		got, ok := ParseKeySize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Error("Expect", tc.want, tc.ok, "got", got, ok, "for", tc.in)
		}
	}
}

func TestEntryPathEscapesID(t *testing.T) {
	if got := EntryPath("K1"); got != "/directory/K1" {
		t.Fatal("Unexpected entry path", got)
	}
	if got := EntryPath("a/b"); got != "/directory/a%2Fb" {
		t.Fatal("Expect escaped entry path", "got", got)
	}
}

func TestUnmarshalVerifyResponseWithNullSigner(t *testing.T) {
	msg := []byte(`{"valid":false,"message":"Signature mismatch","signer":null}`)
	var res VerifyResponse
	if err := json.Unmarshal(msg, &res); err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Message != "Signature mismatch" || res.Signer != "" {
		t.Error("Cannot unmarshal verify response properly", "got", res)
	}
}

func TestErrorCodeIs(t *testing.T) {
	var err error = ErrRejected
	if !errors.Is(err, ErrRejected) {
		t.Fatal("Expect error code to match itself")
	}
	if errors.Is(err, ErrTransport) {
		t.Fatal("Expect distinct error codes to differ")
	}
	if ErrorCode(99).Error() != ErrTransport.Error() {
		t.Error("Expect unknown codes to fall back to the transport message")
	}
}
