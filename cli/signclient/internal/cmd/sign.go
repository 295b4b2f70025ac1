package cmd

import (
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a document with a private key.",
	Long: `Sign a document with a private key.

The signature is saved as "<document name>.sig" in the download directory.`,
	Args: cobra.NoArgs,
	RunE: sign,
}

func init() {
	RootCmd.AddCommand(signCmd)
	signCmd.Flags().StringP("document", "f", "", "Document to sign")
	signCmd.Flags().StringP("key", "k", "", "Private key file")
	signCmd.MarkFlagRequired("document")
	signCmd.MarkFlagRequired("key")
}

func sign(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := loadFiles(e, map[artifact.Role]string{
		artifact.RoleDocument:   cmd.Flag("document").Value.String(),
		artifact.RolePrivateKey: cmd.Flag("key").Value.String(),
	}); err != nil {
		return err
	}
	o, err := e.session.Sign(cmd.Context())
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), o)
}

func loadFiles(e *env, files map[artifact.Role]string) error {
	for role, path := range files {
		if err := e.session.LoadArtifact(role, path); err != nil {
			return err
		}
	}
	return nil
}
