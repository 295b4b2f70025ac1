// Defines the endpoints, form fields and response documents
// of the remote signature service.

package protocol

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoint paths of the signature service.
const (
	HealthPath       = "/"
	SignPath         = "/sign"
	VerifyPath       = "/verify"
	GenerateKeysPath = "/generate-keys"
	RegisterPath     = "/register"
	DirectoryPath    = "/directory"
)

// Headers exchanged with the signature service.
const (
	// KeyIDHeader carries the identifier assigned to a freshly
	// generated key pair.
	KeyIDHeader     = "X-Key-ID"
	RequestIDHeader = "X-Request-ID"
)

// Multipart form field names.
const (
	FieldFile          = "file"
	FieldPrivateKey    = "private_key"
	FieldSignature     = "signature"
	FieldKeyID         = "key_id"
	FieldPublicKeyFile = "public_key_file"
	FieldName          = "name"
	FieldDepartment    = "department"
	FieldKeySize       = "key_size"
	FieldPublicKey     = "public_key"
)

// DefaultKeySize is the key size the service uses when none is given.
const DefaultKeySize = 1024

// KeySizes lists the RSA modulus sizes the service accepts.
var KeySizes = []int{512, 1024, 2048}

// ValidKeySize reports whether n is one of KeySizes.
func ValidKeySize(n int) bool {
	for _, s := range KeySizes {
		if s == n {
			return true
		}
	}
	return false
}

// ParseKeySize parses a key size form value.
// It returns false if s is not a number or not an accepted size.
func ParseKeySize(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !ValidKeySize(n) {
		return 0, false
	}
	return n, true
}

// EntryPath returns the path addressing a single directory entry.
func EntryPath(id string) string {
	return DirectoryPath + "/" + url.PathEscape(id)
}

// A DirectoryEntry is a registered signer identity as listed by the
// service. CreatedAt is kept exactly as the service sent it; formatting
// happens when the entry is rendered.
type DirectoryEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	CreatedAt  string `json:"created_at"`
}

// Label returns the human readable signer label, "name (department)".
func (e DirectoryEntry) Label() string {
	return e.Name + " (" + e.Department + ")"
}

// A DirectoryResponse is the body of a successful directory listing.
type DirectoryResponse struct {
	Entries []DirectoryEntry `json:"entries"`
}

// A VerifyResponse is the body of a completed verification. Signer is
// only set by the service when the signature is valid.
type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Signer  string `json:"signer,omitempty"`
}

// A RegisterResponse acknowledges a public key registration.
type RegisterResponse struct {
	Message string `json:"message"`
	KeyID   string `json:"key_id"`
}

// An ErrorResponse is the body the service sends with a non-2xx status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// A HealthResponse describes the running service.
type HealthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
}
