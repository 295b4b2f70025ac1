package cmd

import (
	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an existing public key in the directory.",
	Args:  cobra.NoArgs,
	RunE:  register,
}

func init() {
	RootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringP("name", "n", "", "Name of the key owner")
	registerCmd.Flags().StringP("department", "D", "", "Department of the key owner")
	registerCmd.Flags().StringP("public-key", "p", "", "Public key file")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("department")
	registerCmd.MarkFlagRequired("public-key")
}

func register(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.session.SetField(artifact.RoleRegisterName, cmd.Flag("name").Value.String()); err != nil {
		return err
	}
	if err := e.session.SetField(artifact.RoleRegisterDepartment, cmd.Flag("department").Value.String()); err != nil {
		return err
	}
	if err := e.session.LoadArtifact(artifact.RolePublicKey, cmd.Flag("public-key").Value.String()); err != nil {
		return err
	}
	o, err := e.session.Register(cmd.Context())
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), o)
}
