package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/google/uuid"
)

// A Client talks to one signature service instance.
// It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *application.Logger
	newRequestID func() string
}

// An Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes the Client send its requests through h.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *application.Logger) Option {
	return func(c *Client) { c.logger = l.Named("service") }
}

// WithTimeout bounds every exchange with the service. Zero means no bound.
// The http.Client in use is copied first, so a shared client is left as is.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.httpClient
		h.Timeout = d
		c.httpClient = &h
	}
}

// New returns a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		logger:       application.NewNopLogger(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the address the Client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// A GeneratedKey is the result of a key generation request.
type GeneratedKey struct {
	// KeyID is the identifier the service registered the public half
	// under. It is empty if the service did not send one.
	KeyID string
	// PrivateKey is the PEM encoded private half.
	PrivateKey []byte
}

// Health fetches the service description.
func (c *Client) Health(ctx context.Context) (*protocol.HealthResponse, error) {
	res, err := c.do(ctx, http.MethodGet, protocol.HealthPath, nil)
	if err != nil {
		return nil, err
	}
	var h protocol.HealthResponse
	if err := res.decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Sign asks the service to sign doc with key and returns the signature.
func (c *Client) Sign(ctx context.Context, doc, key artifact.Artifact) ([]byte, error) {
	f := newForm()
	f.file(protocol.FieldFile, doc)
	f.file(protocol.FieldPrivateKey, key)
	res, err := c.do(ctx, http.MethodPost, protocol.SignPath, f)
	if err != nil {
		return nil, err
	}
	return res.body, nil
}

// Verify checks sig over doc against the registered key keyID.
func (c *Client) Verify(ctx context.Context, doc, sig artifact.Artifact, keyID string) (*protocol.VerifyResponse, error) {
	f := newForm()
	f.file(protocol.FieldFile, doc)
	f.file(protocol.FieldSignature, sig)
	f.field(protocol.FieldKeyID, keyID)
	return c.verify(ctx, f)
}

// VerifyWithKeyFile checks sig over doc against an uploaded public key.
func (c *Client) VerifyWithKeyFile(ctx context.Context, doc, sig, pub artifact.Artifact) (*protocol.VerifyResponse, error) {
	f := newForm()
	f.file(protocol.FieldFile, doc)
	f.file(protocol.FieldSignature, sig)
	f.file(protocol.FieldPublicKeyFile, pub)
	return c.verify(ctx, f)
}

func (c *Client) verify(ctx context.Context, f *form) (*protocol.VerifyResponse, error) {
	res, err := c.do(ctx, http.MethodPost, protocol.VerifyPath, f)
	if err != nil {
		return nil, err
	}
	var v protocol.VerifyResponse
	if err := res.decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GenerateKeys asks the service for a new key pair registered under
// name and department.
func (c *Client) GenerateKeys(ctx context.Context, name, department string, keySize int) (*GeneratedKey, error) {
	f := newForm()
	f.field(protocol.FieldName, name)
	f.field(protocol.FieldDepartment, department)
	f.field(protocol.FieldKeySize, strconv.Itoa(keySize))
	res, err := c.do(ctx, http.MethodPost, protocol.GenerateKeysPath, f)
	if err != nil {
		return nil, err
	}
	return &GeneratedKey{
		KeyID:      res.header.Get(protocol.KeyIDHeader),
		PrivateKey: res.body,
	}, nil
}

// Register publishes pub in the directory under name and department.
// The acknowledgement is decoded on a best-effort basis: a successful
// status with an unexpected body still counts as registered.
func (c *Client) Register(ctx context.Context, name, department string, pub artifact.Artifact) (*protocol.RegisterResponse, error) {
	f := newForm()
	f.field(protocol.FieldName, name)
	f.field(protocol.FieldDepartment, department)
	f.file(protocol.FieldPublicKey, pub)
	res, err := c.do(ctx, http.MethodPost, protocol.RegisterPath, f)
	if err != nil {
		return nil, err
	}
	var r protocol.RegisterResponse
	if err := json.Unmarshal(res.body, &r); err != nil {
		c.logger.Debug("unreadable register acknowledgement", "error", err)
	}
	return &r, nil
}

// Directory lists the registered signer identities in service order.
func (c *Client) Directory(ctx context.Context) ([]protocol.DirectoryEntry, error) {
	res, err := c.do(ctx, http.MethodGet, protocol.DirectoryPath, nil)
	if err != nil {
		return nil, err
	}
	var d protocol.DirectoryResponse
	if err := res.decode(&d); err != nil {
		return nil, err
	}
	return d.Entries, nil
}

// DeleteEntry removes the directory entry id.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, protocol.EntryPath(id), nil)
	return err
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) decode(v interface{}) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return transportError(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// do sends one request and reads the whole response. Every non-2xx
// status is turned into an *Error with code protocol.ErrRejected.
func (c *Client) do(ctx context.Context, method, path string, f *form) (*response, error) {
	var body io.Reader
	var contentType string
	if f != nil {
		b, ct, err := f.encode()
		if err != nil {
			return nil, transportError(err)
		}
		body, contentType = b, ct
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transportError(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	reqID := c.newRequestID()
	req.Header.Set(protocol.RequestIDHeader, reqID)
	log := c.logger.With("method", method, "path", path, "request_id", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("reading response failed", "status", resp.StatusCode, "error", err)
		return nil, transportError(err)
	}
	log.Debug("request completed", "status", resp.StatusCode,
		"bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Code:   protocol.ErrRejected,
			Status: resp.StatusCode,
			Detail: detail(data),
		}
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// detail extracts the "detail" string of an error body. Bodies that are
// not JSON, or whose detail is not a string, yield "".
func detail(body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err != nil || len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

type part struct {
	field string
	value string
	file  *artifact.Artifact
}

type form struct {
	parts []part
}

func newForm() *form {
	return &form{}
}

func (f *form) field(name, value string) {
	f.parts = append(f.parts, part{field: name, value: value})
}

func (f *form) file(name string, a artifact.Artifact) {
	f.parts = append(f.parts, part{field: name, file: &a})
}

func (f *form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.file == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		filename := p.file.Name
		if filename == "" {
			filename = p.field
		}
		pw, err := w.CreateFormFile(p.field, filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(p.file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
