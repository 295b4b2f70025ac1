/*
Package artifact collects the inputs an operator supplies for each workflow.

Every workflow owns a fixed set of roles ("document", "private-key", ...).
A role is a slot: it is either empty or holds exactly one artifact, and
setting it again replaces the previous artifact. No type or size checks are
performed here; the remote service is the only judge of what a valid key or
signature looks like.

Text form fields (name, department, key size) are stored the same way, the
artifact bytes being the field value. Slots are cleared only by resetting
the whole workflow.
*/
package artifact
