/*
Package protocol defines the contract between the signing client and the
remote signature service.

The remote service owns all cryptography and all persistent state. The
client only knows the endpoints, the multipart form fields each endpoint
expects, and the JSON documents it answers with.

Message

This module defines the endpoint paths, form field names and the JSON
response documents of the signature service (verification results, the
signer directory, registration acknowledgements and error details).

Error

This module defines the constants representing the ways a client workflow
can end without a successful result: missing input, a request the service
rejected, a transport or decoding failure, and a destructive action the
operator declined.

Workflow

This module names the workflows an operator can trigger.
*/
package protocol
