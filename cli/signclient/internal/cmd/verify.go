package cmd

import (
	"errors"

	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signature of a document.",
	Long: `Verify the signature of a document.

The signer is either a registered directory entry (--key-id) or a public
key file (--public-key).`,
	Args: cobra.NoArgs,
	RunE: verify,
}

func init() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringP("document", "f", "", "Signed document")
	verifyCmd.Flags().StringP("signature", "s", "", "Signature file")
	verifyCmd.Flags().String("key-id", "", "Directory id of the signer")
	verifyCmd.Flags().String("public-key", "", "Public key file of the signer")
	verifyCmd.MarkFlagRequired("document")
	verifyCmd.MarkFlagRequired("signature")
}

func verify(cmd *cobra.Command, args []string) error {
	keyID := cmd.Flag("key-id").Value.String()
	pubKey := cmd.Flag("public-key").Value.String()
	if (keyID == "") == (pubKey == "") {
		return errors.New("exactly one of --key-id and --public-key is required")
	}

	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	files := map[artifact.Role]string{
		artifact.RoleVerifyDocument: cmd.Flag("document").Value.String(),
		artifact.RoleSignature:      cmd.Flag("signature").Value.String(),
	}
	if pubKey != "" {
		files[artifact.RolePublicKeyFile] = pubKey
	}
	if err := loadFiles(e, files); err != nil {
		return err
	}

	var o presenter.Outcome
	if pubKey != "" {
		o, err = e.session.VerifyWithKeyFile(cmd.Context())
	} else {
		if err := e.session.SelectSigner(cmd.Context(), keyID); err != nil {
			return err
		}
		o, err = e.session.Verify(cmd.Context())
	}
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), o)
}
