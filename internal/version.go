// Package internal holds build metadata shared by the signing client
// executables.
package internal

// Version is the semantic version of the signing client.
const Version = "0.3.0"
