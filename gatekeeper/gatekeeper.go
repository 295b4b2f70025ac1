// Package gatekeeper decides which workflow triggers are actionable.
//
// Every function is pure: it reads a snapshot of the artifact slots (and,
// for verification, the selected signer) and returns a boolean. Callers
// re-evaluate after every slot change and every directory refresh.
package gatekeeper

import (
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/protocol"
)

// Enablement holds the trigger state of every workflow.
type Enablement struct {
	Sign              bool
	Verify            bool
	VerifyWithKeyFile bool
	Generate          bool
	Register          bool
}

// CanSign reports whether both the document and the private key are present.
func CanSign(s artifact.Snapshot) bool {
	return s.HasAll(artifact.RoleDocument, artifact.RolePrivateKey)
}

// CanVerify reports whether the document, the signature and a signer
// selection are present. The placeholder selection is the empty string.
func CanVerify(s artifact.Snapshot, selected string) bool {
	return selected != "" &&
		s.HasAll(artifact.RoleVerifyDocument, artifact.RoleSignature)
}

// CanVerifyWithKeyFile reports whether a document can be verified against
// an uploaded public key instead of a directory entry.
func CanVerifyWithKeyFile(s artifact.Snapshot) bool {
	return s.HasAll(artifact.RoleVerifyDocument, artifact.RoleSignature, artifact.RolePublicKeyFile)
}

// CanGenerate reports whether name, department and an accepted key size
// are filled in.
func CanGenerate(s artifact.Snapshot) bool {
	if s.Value(artifact.RoleName) == "" || s.Value(artifact.RoleDepartment) == "" {
		return false
	}
	_, ok := protocol.ParseKeySize(s.Value(artifact.RoleKeySize))
	return ok
}

// CanRegister reports whether name, department and a public key file are
// present.
func CanRegister(s artifact.Snapshot) bool {
	return s.Value(artifact.RoleRegisterName) != "" &&
		s.Value(artifact.RoleRegisterDepartment) != "" &&
		s.Has(artifact.RolePublicKey)
}

// Evaluate computes the enablement of every workflow at once.
func Evaluate(s artifact.Snapshot, selected string) Enablement {
	return Enablement{
		Sign:              CanSign(s),
		Verify:            CanVerify(s, selected),
		VerifyWithKeyFile: CanVerifyWithKeyFile(s),
		Generate:          CanGenerate(s),
		Register:          CanRegister(s),
	}
}
