// Package servicetest runs an in-memory signature service for tests.
//
// The service speaks the same HTTP contract as the real one. Its
// "cryptography" is a keyed SHA-256 digest where the public and private
// halves of a key pair are the same secret, which is enough to tell
// matching and tampered inputs apart.
package servicetest

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Messages returned by the verification endpoint.
const (
	ValidMessage   = "Signature is VALID - Document is authentic"
	InvalidMessage = "Signature is INVALID - Document may be tampered"
)

type entry struct {
	protocol.DirectoryEntry
	secret []byte
}

type failure struct {
	status int
	detail string
}

// A Server is a running fake signature service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	order    []string
	entries  map[string]entry
	failures map[string]failure
	calls    map[string]int
	reqIDs   []string
}

// New starts a Server. Close it when done.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		entries:  make(map[string]entry),
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.record)
	r.GET(protocol.HealthPath, s.health)
	r.POST(protocol.SignPath, s.sign)
	r.POST(protocol.VerifyPath, s.verify)
	r.POST(protocol.GenerateKeysPath, s.generate)
	r.POST(protocol.RegisterPath, s.register)
	r.GET(protocol.DirectoryPath, s.directory)
	r.DELETE(protocol.DirectoryPath+"/:id", s.remove)
	s.Server = httptest.NewServer(r)
	return s
}

func route(method, path string) string {
	return method + " " + path
}

// record counts calls and serves failures injected with FailNext.
func (s *Server) record(c *gin.Context) {
	key := route(c.Request.Method, c.FullPath())
	s.mu.Lock()
	s.calls[key]++
	s.reqIDs = append(s.reqIDs, c.GetHeader(protocol.RequestIDHeader))
	f, fail := s.failures[key]
	delete(s.failures, key)
	s.mu.Unlock()
	if fail {
		if f.detail == "" {
			c.AbortWithStatus(f.status)
			return
		}
		c.AbortWithStatusJSON(f.status, protocol.ErrorResponse{Detail: f.detail})
		return
	}
	c.Next()
}

// FailNext makes the next request to method and path answer with status
// and detail. An empty detail sends no body. For the entry route use
// protocol.DirectoryPath+"/:id" as path.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route(method, path)] = failure{status, detail}
}

// Calls returns how many requests hit method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route(method, path)]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// RequestIDs returns the request id header of every request, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reqIDs...)
}

// Seed registers a signer whose key pair is secret and returns its id.
func (s *Server) Seed(name, department string, secret []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(name, department, secret)
}

// Entries returns the registered signers in registration order.
func (s *Server) Entries() []protocol.DirectoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.DirectoryEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].DirectoryEntry)
	}
	return out
}

// Signature returns what the service would answer when signing doc
// with secret.
func Signature(secret, doc []byte) []byte {
	h := sha256.New()
	h.Write(secret)
	h.Write(doc)
	sum := h.Sum(nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}

func (s *Server) addLocked(name, department string, secret []byte) string {
	id := uuid.NewString()[:8]
	s.entries[id] = entry{
		DirectoryEntry: protocol.DirectoryEntry{
			ID:         id,
			Name:       name,
			Department: department,
			CreatedAt:  time.Now().Format("2006-01-02T15:04:05.000000"),
		},
		secret: secret,
	}
	s.order = append(s.order, id)
	return id
}

func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, protocol.ErrorResponse{Detail: detail})
}

func readFile(c *gin.Context, field string) ([]byte, *multipart.FileHeader, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, false
	}
	return data, fh, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.HealthResponse{
		Status:  "ok",
		Message: "Digital Signature API (test)",
		Version: "2.0.0",
		Endpoints: map[string]string{
			"generate_keys": "POST " + protocol.GenerateKeysPath,
			"sign":          "POST " + protocol.SignPath,
			"verify":        "POST " + protocol.VerifyPath,
			"directory":     "GET " + protocol.DirectoryPath,
			"register":      "POST " + protocol.RegisterPath,
		},
	})
}

func (s *Server) sign(c *gin.Context) {
	doc, fh, ok := readFile(c, protocol.FieldFile)
	if !ok {
		fail(c, http.StatusUnprocessableEntity, "Field required: file")
		return
	}
	key, _, ok := readFile(c, protocol.FieldPrivateKey)
	if !ok || len(strings.TrimSpace(string(key))) == 0 {
		fail(c, http.StatusBadRequest, "Invalid key: empty private key")
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+fh.Filename+".sig")
	c.Data(http.StatusOK, "application/octet-stream", Signature(key, doc))
}

func (s *Server) verify(c *gin.Context) {
	doc, _, ok := readFile(c, protocol.FieldFile)
	if !ok {
		fail(c, http.StatusUnprocessableEntity, "Field required: file")
		return
	}
	sig, _, ok := readFile(c, protocol.FieldSignature)
	if !ok {
		fail(c, http.StatusUnprocessableEntity, "Field required: signature")
		return
	}

	var secret []byte
	var signer string
	keyID := c.PostForm(protocol.FieldKeyID)
	s.mu.Lock()
	e, known := s.entries[keyID]
	s.mu.Unlock()
	if keyID != "" && known {
		secret, signer = e.secret, e.Label()
	} else if pub, _, ok := readFile(c, protocol.FieldPublicKeyFile); ok {
		secret, signer = pub, "Uploaded Key"
	} else {
		fail(c, http.StatusBadRequest, "Must provide either key_id or public_key_file")
		return
	}

	if string(Signature(secret, doc)) == strings.TrimSpace(string(sig)) {
		c.JSON(http.StatusOK, protocol.VerifyResponse{Valid: true, Message: ValidMessage, Signer: signer})
		return
	}
	c.JSON(http.StatusOK, protocol.VerifyResponse{Valid: false, Message: InvalidMessage})
}

func (s *Server) generate(c *gin.Context) {
	name := c.PostForm(protocol.FieldName)
	department := c.PostForm(protocol.FieldDepartment)
	if name == "" || department == "" {
		fail(c, http.StatusUnprocessableEntity, "Field required: name, department")
		return
	}
	size := protocol.DefaultKeySize
	if v := c.PostForm(protocol.FieldKeySize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, http.StatusUnprocessableEntity, "Input should be a valid integer")
			return
		}
		size = n
	}
	if !protocol.ValidKeySize(size) {
		fail(c, http.StatusBadRequest, "Key size must be 512, 1024, or 2048")
		return
	}

	secret := []byte(strconv.Itoa(size) + ":" + uuid.NewString())
	s.mu.Lock()
	id := s.addLocked(name, department, secret)
	s.mu.Unlock()

	c.Header("Content-Disposition", "attachment; filename="+strings.ReplaceAll(name, " ", "_")+"_private.key")
	c.Header(protocol.KeyIDHeader, id)
	c.Data(http.StatusOK, "application/octet-stream", secret)
}

func (s *Server) register(c *gin.Context) {
	name := c.PostForm(protocol.FieldName)
	department := c.PostForm(protocol.FieldDepartment)
	if name == "" || department == "" {
		fail(c, http.StatusUnprocessableEntity, "Field required: name, department")
		return
	}
	pub, _, ok := readFile(c, protocol.FieldPublicKey)
	if !ok || len(strings.TrimSpace(string(pub))) == 0 {
		fail(c, http.StatusBadRequest, "Invalid public key: empty key")
		return
	}
	s.mu.Lock()
	id := s.addLocked(name, department, pub)
	s.mu.Unlock()
	c.JSON(http.StatusOK, protocol.RegisterResponse{
		Message: "Public key registered successfully",
		KeyID:   id,
	})
}

func (s *Server) directory(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.DirectoryResponse{Entries: s.Entries()})
}

func (s *Server) remove(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		fail(c, http.StatusNotFound, "Key not found")
		return
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key deleted successfully"})
}
