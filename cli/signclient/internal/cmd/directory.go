package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/GiveMe1Star/digital-signature/directory"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/GiveMe1Star/digital-signature/render"
	"github.com/GiveMe1Star/digital-signature/session"
	"github.com/spf13/cobra"
)

var directoryCmd = &cobra.Command{
	Use:     "directory",
	Aliases: []string{"dir"},
	Short:   "List or delete registered signers.",
}

var directoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered signers.",
	Args:  cobra.NoArgs,
	RunE:  directoryList,
}

var directoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a registered signer after confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  directoryDelete,
}

func init() {
	RootCmd.AddCommand(directoryCmd)
	directoryCmd.AddCommand(directoryListCmd, directoryDeleteCmd)
	directoryListCmd.Flags().String("format", "text", "Output format: text or html")
	directoryDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func directoryList(cmd *cobra.Command, args []string) error {
	format := cmd.Flag("format").Value.String()
	if format != "text" && format != "html" {
		return fmt.Errorf("unknown format %q", format)
	}
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	e.session.ActivateView(cmd.Context(), session.ViewDirectory)
	return writeDirectory(cmd.OutOrStdout(), format, e.session.State().Entries, e.conf.DateLayout)
}

func writeDirectory(w io.Writer, format string, entries []protocol.DirectoryEntry, layout string) error {
	d := render.DirectoryRows(entries, layout)
	if format == "html" {
		return render.WriteDirectoryHTML(w, d)
	}
	return render.WriteDirectoryText(w, d)
}

func directoryDelete(cmd *cobra.Command, args []string) error {
	var confirm directory.Confirmer = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		confirm = directory.ConfirmFunc(acceptAll)
	}
	e, err := newEnv(cmd, confirm)
	if err != nil {
		return err
	}
	defer e.Close()

	err = e.session.Delete(cmd.Context(), args[0])
	switch {
	case err == nil:
		fmt.Fprintln(cmd.OutOrStdout(), "[+] Deleted", args[0])
		return nil
	case errors.Is(err, protocol.ErrDeclined):
		return nil
	}
	if a := e.session.State().Presenter.Alert; a != nil {
		fmt.Fprintln(cmd.OutOrStdout(), render.AlertLine(*a))
	}
	return err
}
