// Executable signing client. Run "signclient init" to write a
// configuration, then "signclient run" for an interactive session or one
// of the one-shot commands (sign, verify, keygen, register, directory).
package main

import (
	"github.com/GiveMe1Star/digital-signature/cli"
	"github.com/GiveMe1Star/digital-signature/cli/signclient/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}
