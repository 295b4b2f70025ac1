package cmd

import (
	"github.com/GiveMe1Star/digital-signature/cli"
)

// RootCmd represents the base "signclient" command when called without any
// subcommands (sign, verify, ...).
var RootCmd = cli.NewRootCommand("signclient",
	"Client for the digital signature service",
	`signclient signs documents, verifies signatures and manages the
directory of registered signers through a remote signature service.

The service performs all cryptography. signclient collects the inputs,
sends exactly one request per action and stores what comes back
(signatures and private keys) in the configured download directory.`)

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "config.toml",
		"Config file for the client (contains the service address etc).")
}
