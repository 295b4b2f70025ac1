package cmd

import (
	"strconv"

	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key pair and register its public half.",
	Long: `Generate a key pair and register its public half.

The service registers the public key in the directory and sends back the
private key, which is saved as "<name>_private.key" in the download
directory. Keep it safe: the service does not keep a copy you can fetch.`,
	Args: cobra.NoArgs,
	RunE: keygen,
}

func init() {
	RootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringP("name", "n", "", "Name of the key owner")
	keygenCmd.Flags().StringP("department", "D", "", "Department of the key owner")
	keygenCmd.Flags().Int("key-size", protocol.DefaultKeySize, "Key size in bits (512, 1024 or 2048)")
	keygenCmd.MarkFlagRequired("name")
	keygenCmd.MarkFlagRequired("department")
}

func keygen(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	size, _ := cmd.Flags().GetInt("key-size")
	for role, v := range map[artifact.Role]string{
		artifact.RoleName:       cmd.Flag("name").Value.String(),
		artifact.RoleDepartment: cmd.Flag("department").Value.String(),
		artifact.RoleKeySize:    strconv.Itoa(size),
	} {
		if err := e.session.SetField(role, v); err != nil {
			return err
		}
	}
	o, err := e.session.Generate(cmd.Context())
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), o)
}
