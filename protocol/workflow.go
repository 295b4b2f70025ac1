package protocol

// A Workflow is a single operator intent mapped to one exchange with the
// signature service and its side effects.
type Workflow string

// The workflows an operator can trigger.
const (
	WorkflowSign     Workflow = "sign"
	WorkflowVerify   Workflow = "verify"
	WorkflowGenerate Workflow = "generate"
	WorkflowRegister Workflow = "register"
	WorkflowDelete   Workflow = "delete"
)

// Workflows lists every workflow in display order.
var Workflows = []Workflow{
	WorkflowSign,
	WorkflowVerify,
	WorkflowGenerate,
	WorkflowRegister,
	WorkflowDelete,
}
