package cmd

import (
	"github.com/GiveMe1Star/digital-signature/cli"
)

var versionCmd = cli.NewVersionCommand("signclient")

func init() {
	RootCmd.AddCommand(versionCmd)
}
