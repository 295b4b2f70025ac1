package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the signature service is reachable.",
	Args:  cobra.NoArgs,
	RunE:  status,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func status(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	h, err := e.service.Health(cmd.Context())
	if err != nil {
		return err
	}
	writeHealth(cmd.OutOrStdout(), e.service.BaseURL(), h)
	return nil
}

func writeHealth(w io.Writer, addr string, h *protocol.HealthResponse) {
	fmt.Fprintf(w, "%s: %s (%s, v%s)\n", addr, h.Status, h.Message, h.Version)
	names := make([]string, 0, len(h.Endpoints))
	for name := range h.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, h.Endpoints[name])
	}
}
