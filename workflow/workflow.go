// Package workflow runs the operator's workflows against the signature
// service.
//
// Every flow follows the same sequence. Inputs are checked first and an
// incomplete flow returns protocol.ErrInputIncomplete without touching the
// network or the presenter. Otherwise the flow marks itself busy, clears
// the previous outcome of its workflow, issues exactly one request and
// applies the side effects of a success (download, slot reset, directory
// refresh). The outcome is always handed to the presenter, success or not,
// and the busy mark is released last.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/download"
	"github.com/GiveMe1Star/digital-signature/gatekeeper"
	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/GiveMe1Star/digital-signature/service"
)

// Fallback messages used when the service gives no detail.
const (
	SignFailed     = "Signing failed"
	VerifyFailed   = "Verification failed"
	GenerateFailed = "Generation failed"
	RegisterFailed = "Registration failed"
	DeleteFailed   = "Delete failed"
)

// Service is the subset of the service client the flows use.
type Service interface {
	Sign(ctx context.Context, doc, key artifact.Artifact) ([]byte, error)
	Verify(ctx context.Context, doc, sig artifact.Artifact, keyID string) (*protocol.VerifyResponse, error)
	VerifyWithKeyFile(ctx context.Context, doc, sig, pub artifact.Artifact) (*protocol.VerifyResponse, error)
	GenerateKeys(ctx context.Context, name, department string, keySize int) (*service.GeneratedKey, error)
	Register(ctx context.Context, name, department string, pub artifact.Artifact) (*protocol.RegisterResponse, error)
}

// Directory is the signer directory the flows keep current.
type Directory interface {
	Refresh(ctx context.Context)
	Remove(ctx context.Context, id string) error
}

// Deps lists the collaborators of an Executor. Logger may be nil.
type Deps struct {
	Service   Service
	Collector *artifact.Collector
	Presenter *presenter.Presenter
	Downloads download.Sink
	Directory Directory
	Logger    *application.Logger
}

// An Executor runs workflows. Flows may run concurrently; each one is
// sequential.
type Executor struct {
	svc       Service
	collector *artifact.Collector
	presenter *presenter.Presenter
	downloads download.Sink
	directory Directory
	logger    *application.Logger
}

// New returns an Executor wired to d.
func New(d Deps) *Executor {
	logger := d.Logger
	if logger == nil {
		logger = application.NewNopLogger()
	}
	return &Executor{
		svc:       d.Service,
		collector: d.Collector,
		presenter: d.Presenter,
		downloads: d.Downloads,
		directory: d.Directory,
		logger:    logger.Named("workflow"),
	}
}

// inputs loads the artifacts bound to roles once the gate allows the
// workflow.
func (e *Executor) inputs(allowed func(artifact.Snapshot) bool, roles ...artifact.Role) (artifact.Snapshot, []artifact.Artifact, error) {
	s, err := e.collector.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	if !allowed(s) {
		return nil, nil, protocol.ErrInputIncomplete
	}
	out := make([]artifact.Artifact, len(roles))
	for i, r := range roles {
		a, ok, err := e.collector.Get(r)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, protocol.ErrInputIncomplete
		}
		out[i] = a
	}
	return s, out, nil
}

// begin marks w busy and clears its stale outcome.
func (e *Executor) begin(w protocol.Workflow) func() {
	release := e.presenter.Begin()
	e.presenter.Clear(w)
	return release
}

func (e *Executor) show(o presenter.Outcome) presenter.Outcome {
	e.presenter.Show(o)
	return o
}

func (e *Executor) failure(w protocol.Workflow, err error, fallback string) presenter.Outcome {
	e.logger.Info("workflow failed", "workflow", w, "error", err)
	return e.show(presenter.Outcome{
		Workflow: w,
		Kind:     presenter.Failure,
		Message:  service.DetailOr(err, fallback),
	})
}

// Sign signs the document with the private key and downloads the
// signature as "<document name>.sig".
func (e *Executor) Sign(ctx context.Context) (presenter.Outcome, error) {
	_, in, err := e.inputs(gatekeeper.CanSign, artifact.RoleDocument, artifact.RolePrivateKey)
	if err != nil {
		return presenter.Outcome{}, err
	}
	doc, key := in[0], in[1]

	defer e.begin(protocol.WorkflowSign)()
	sig, err := e.svc.Sign(ctx, doc, key)
	if err != nil {
		return e.failure(protocol.WorkflowSign, err, SignFailed), nil
	}
	name := doc.Name
	if name == "" {
		name = "document"
	}
	path, err := e.downloads.Save(name+".sig", sig)
	if err != nil {
		return e.failure(protocol.WorkflowSign, err, "Saving signature failed: "+err.Error()), nil
	}
	return e.show(presenter.Outcome{
		Workflow: protocol.WorkflowSign,
		Kind:     presenter.Success,
		Message:  "Document signed",
		Path:     path,
	}), nil
}

// Verify checks the signature over the document against the directory
// entry selected. An invalid signature is a failure outcome carrying the
// service's message and no signer.
func (e *Executor) Verify(ctx context.Context, selected string) (presenter.Outcome, error) {
	allowed := func(s artifact.Snapshot) bool { return gatekeeper.CanVerify(s, selected) }
	_, in, err := e.inputs(allowed, artifact.RoleVerifyDocument, artifact.RoleSignature)
	if err != nil {
		return presenter.Outcome{}, err
	}

	defer e.begin(protocol.WorkflowVerify)()
	res, err := e.svc.Verify(ctx, in[0], in[1], selected)
	return e.verified(res, err), nil
}

// VerifyWithKeyFile checks the signature over the document against an
// uploaded public key instead of a directory entry.
func (e *Executor) VerifyWithKeyFile(ctx context.Context) (presenter.Outcome, error) {
	_, in, err := e.inputs(gatekeeper.CanVerifyWithKeyFile,
		artifact.RoleVerifyDocument, artifact.RoleSignature, artifact.RolePublicKeyFile)
	if err != nil {
		return presenter.Outcome{}, err
	}

	defer e.begin(protocol.WorkflowVerify)()
	res, err := e.svc.VerifyWithKeyFile(ctx, in[0], in[1], in[2])
	return e.verified(res, err), nil
}

func (e *Executor) verified(res *protocol.VerifyResponse, err error) presenter.Outcome {
	if err != nil {
		return e.failure(protocol.WorkflowVerify, err, VerifyFailed)
	}
	if !res.Valid {
		return e.show(presenter.Outcome{
			Workflow: protocol.WorkflowVerify,
			Kind:     presenter.Failure,
			Message:  res.Message,
		})
	}
	return e.show(presenter.Outcome{
		Workflow: protocol.WorkflowVerify,
		Kind:     presenter.Success,
		Message:  res.Message,
		Signer:   res.Signer,
	})
}

// PrivateKeyFileName returns the file name a generated private key for
// name is saved under. Each run of whitespace becomes a single '_'.
func PrivateKeyFileName(name string) string {
	return strings.Join(strings.Fields(name), "_") + "_private.key"
}

// Generate asks the service for a new key pair, downloads the private
// half, resets the generate form and refreshes the directory.
func (e *Executor) Generate(ctx context.Context) (presenter.Outcome, error) {
	s, _, err := e.inputs(gatekeeper.CanGenerate)
	if err != nil {
		return presenter.Outcome{}, err
	}
	name := s.Value(artifact.RoleName)
	department := s.Value(artifact.RoleDepartment)
	size, _ := protocol.ParseKeySize(s.Value(artifact.RoleKeySize))

	defer e.begin(protocol.WorkflowGenerate)()
	key, err := e.svc.GenerateKeys(ctx, name, department, size)
	if err != nil {
		return e.failure(protocol.WorkflowGenerate, err, GenerateFailed), nil
	}
	// The public half is registered at this point whatever happens to
	// the download.
	defer e.directory.Refresh(ctx)

	path, err := e.downloads.Save(PrivateKeyFileName(name), key.PrivateKey)
	if err != nil {
		e.logger.Error("saving private key failed", "key_id", key.KeyID, "error", err)
		return e.show(presenter.Outcome{
			Workflow: protocol.WorkflowGenerate,
			Kind:     presenter.Failure,
			Message:  fmt.Sprintf("Key %s was generated but the private key could not be saved: %v", key.KeyID, err),
			KeyID:    key.KeyID,
		}), nil
	}
	if err := e.collector.Clear(protocol.WorkflowGenerate); err != nil {
		e.logger.Warn("clearing generate form failed", "error", err)
	}
	return e.show(presenter.Outcome{
		Workflow: protocol.WorkflowGenerate,
		Kind:     presenter.Success,
		Message:  "Key pair generated",
		KeyID:    key.KeyID,
		Path:     path,
	}), nil
}

// Register publishes the public key, resets the register form and
// refreshes the directory. The result is raised as an alert.
func (e *Executor) Register(ctx context.Context) (presenter.Outcome, error) {
	s, in, err := e.inputs(gatekeeper.CanRegister, artifact.RolePublicKey)
	if err != nil {
		return presenter.Outcome{}, err
	}

	defer e.begin(protocol.WorkflowRegister)()
	res, err := e.svc.Register(ctx,
		s.Value(artifact.RoleRegisterName), s.Value(artifact.RoleRegisterDepartment), in[0])
	if err != nil {
		return e.failure(protocol.WorkflowRegister, err, RegisterFailed), nil
	}
	if err := e.collector.Clear(protocol.WorkflowRegister); err != nil {
		e.logger.Warn("clearing register form failed", "error", err)
	}
	e.directory.Refresh(ctx)

	msg := res.Message
	if msg == "" {
		msg = "Public key registered"
	}
	return e.show(presenter.Outcome{
		Workflow: protocol.WorkflowRegister,
		Kind:     presenter.Success,
		Message:  msg,
		KeyID:    res.KeyID,
	}), nil
}

// Delete removes a directory entry after confirmation. A declined
// confirmation shows nothing and returns protocol.ErrDeclined. A failure
// is raised as an alert and returned.
func (e *Executor) Delete(ctx context.Context, id string) error {
	e.presenter.Clear(protocol.WorkflowDelete)
	err := e.directory.Remove(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, protocol.ErrDeclined):
		return err
	}
	e.failure(protocol.WorkflowDelete, err, DeleteFailed)
	return err
}
