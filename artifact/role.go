package artifact

import (
	"fmt"
	"strconv"

	"github.com/GiveMe1Star/digital-signature/protocol"
)

// A Role names a slot within a workflow.
type Role string

// Roles of the sign workflow.
const (
	RoleDocument   Role = "document"
	RolePrivateKey Role = "private-key"
)

// Roles of the verify workflow. RolePublicKeyFile is only used when a
// document is verified against an uploaded key instead of a directory entry.
const (
	RoleVerifyDocument Role = "verify-document"
	RoleSignature      Role = "signature"
	RolePublicKeyFile  Role = "public-key-file"
)

// Roles of the generate workflow. All of them are text fields.
const (
	RoleName       Role = "name"
	RoleDepartment Role = "department"
	RoleKeySize    Role = "key-size"
)

// Roles of the register workflow.
const (
	RoleRegisterName       Role = "register-name"
	RoleRegisterDepartment Role = "register-department"
	RolePublicKey          Role = "public-key"
)

type roleInfo struct {
	workflow protocol.Workflow
	field    bool
	def      string
}

var roles = map[Role]roleInfo{
	RoleDocument:           {protocol.WorkflowSign, false, ""},
	RolePrivateKey:         {protocol.WorkflowSign, false, ""},
	RoleVerifyDocument:     {protocol.WorkflowVerify, false, ""},
	RoleSignature:          {protocol.WorkflowVerify, false, ""},
	RolePublicKeyFile:      {protocol.WorkflowVerify, false, ""},
	RoleName:               {protocol.WorkflowGenerate, true, ""},
	RoleDepartment:         {protocol.WorkflowGenerate, true, ""},
	RoleKeySize:            {protocol.WorkflowGenerate, true, strconv.Itoa(protocol.DefaultKeySize)},
	RoleRegisterName:       {protocol.WorkflowRegister, true, ""},
	RoleRegisterDepartment: {protocol.WorkflowRegister, true, ""},
	RolePublicKey:          {protocol.WorkflowRegister, false, ""},
}

// ParseRole returns the Role named s.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Workflow returns the workflow owning r.
func (r Role) Workflow() protocol.Workflow {
	return roles[r].workflow
}

// IsField reports whether r is a text form field rather than a file.
func (r Role) IsField() bool {
	return roles[r].field
}

// Default returns the value a field holds when the form is fresh, or ""
// if it starts empty.
func (r Role) Default() string {
	return roles[r].def
}

// RolesOf returns the roles owned by w in a stable order.
func RolesOf(w protocol.Workflow) []Role {
	var out []Role
	for _, r := range allRoles {
		if roles[r].workflow == w {
			out = append(out, r)
		}
	}
	return out
}

var allRoles = []Role{
	RoleDocument, RolePrivateKey,
	RoleVerifyDocument, RoleSignature, RolePublicKeyFile,
	RoleName, RoleDepartment, RoleKeySize,
	RoleRegisterName, RoleRegisterDepartment, RolePublicKey,
}

// AllRoles returns every known role.
func AllRoles() []Role {
	return append([]Role(nil), allRoles...)
}
