package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/GiveMe1Star/digital-signature/application/client"
	"github.com/GiveMe1Star/digital-signature/cli"
	"github.com/spf13/cobra"
)

var initCmd = cli.NewInitCommand("signclient", mkConfig)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".",
		"Location of directory for storing generated files")
	initCmd.Flags().String("address", client.DefaultAddress,
		"Base address of the signature service")
	initCmd.Flags().String("download-dir", "downloads",
		"Where signatures and private keys are saved, relative to the config file")
}

func mkConfig(cmd *cobra.Command, args []string) error {
	dir := cmd.Flag("dir").Value.String()
	file := filepath.Join(dir, "config.toml")

	conf := client.NewConfig(file, "toml",
		cmd.Flag("address").Value.String(),
		cmd.Flag("download-dir").Value.String())
	if err := conf.Save(); err != nil {
		return fmt.Errorf("Couldn't save config. Error message: [%v]", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", file)
	return nil
}
