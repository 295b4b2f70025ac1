// Package cli provides the cobra command builders shared by the signing
// client executables.
package cli

import (
	"github.com/spf13/cobra"
)

// cobraCommand is used to implement any type of cobra command
// for any of the signing command-line tools and executables.
type cobraCommand interface {
	Build() *cobra.Command
}

// A RunFunc implements a command. A returned error is printed by
// ExecuteRoot and turns into a non-zero exit status.
type RunFunc func(cmd *cobra.Command, args []string) error
