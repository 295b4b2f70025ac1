package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GiveMe1Star/digital-signature/artifact"
	"github.com/GiveMe1Star/digital-signature/cli"
	"github.com/GiveMe1Star/digital-signature/directory"
	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/GiveMe1Star/digital-signature/protocol"
	"github.com/GiveMe1Star/digital-signature/render"
	"github.com/GiveMe1Star/digital-signature/service"
	"github.com/GiveMe1Star/digital-signature/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const prompt = "signclient> "

const help = "- set [role] [path or value]:\r\n" +
	"	Fill an input. File roles: document, private-key, verify-document,\r\n" +
	"	signature, public-key-file, public-key. Text roles: name, department,\r\n" +
	"	key-size, register-name, register-department.\r\n" +
	"- select [id|-]:\r\n" +
	"	Select the signer used by verify, or the placeholder with \"-\".\r\n" +
	"- sign, verify, verify-key, generate, register:\r\n" +
	"	Run a workflow once its inputs are complete.\r\n" +
	"- list [html], signers, refresh:\r\n" +
	"	Show the directory, the signer selector, or refetch the directory.\r\n" +
	"- delete [id]:\r\n" +
	"	Delete a directory entry after confirmation.\r\n" +
	"- state, dismiss, status:\r\n" +
	"	Show inputs and enabled actions, hide the alert, check the service.\r\n" +
	"- enable timestamp, disable timestamp:\r\n" +
	"	Print a <15:04:05.999999999> timestamp along with the result.\r\n" +
	"- help:\r\n" +
	"	Display this message.\r\n" +
	"- exit, q:\r\n" +
	"	Close the REPL and exit the client."

var runCmd = cli.NewRunCommand("signclient",
	"Run gives you a REPL, so that you can fill in inputs and trigger workflows against the signature service. Currently, it supports:\n"+help,
	run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("debug", "d", false, "Turn on debugging mode")
}

func run(cmd *cobra.Command, args []string) error {
	isDebugging, _ := strconv.ParseBool(cmd.Flag("debug").Value.String())

	t := term.NewTerminal(os.Stdin, prompt)
	e, err := newEnv(cmd, terminalConfirmer(t))
	if err != nil {
		return err
	}
	defer e.Close()

	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer term.Restore(int(os.Stdin.Fd()), state)

	r := &repl{
		session:    e.session,
		service:    e.service,
		out:        t,
		dateLayout: e.conf.DateLayout,
		timestamps: isDebugging,
	}
	ctx := cmd.Context()
	for {
		line, err := t.ReadLine()
		if err != nil {
			r.writeLine(err.Error())
			return nil
		}
		if r.handle(ctx, line) {
			return nil
		}
	}
}

// terminalConfirmer asks for a y/N answer on t, reusing the REPL's
// terminal.
func terminalConfirmer(t *term.Terminal) directory.ConfirmFunc {
	return func(ctx context.Context, question string) bool {
		t.SetPrompt(question + " [y/N] ")
		defer t.SetPrompt(prompt)
		line, err := t.ReadLine()
		if err != nil {
			return false
		}
		return isYes(line)
	}
}

// repl executes one command line at a time against a session.
type repl struct {
	session    *session.Session
	service    *service.Client
	out        io.Writer
	dateLayout string
	timestamps bool
}

// append "\r\n" to msg and then write to terminal in raw mode.
func (r *repl) writeLine(msg string) {
	if r.timestamps {
		io.WriteString(r.out, "<"+time.Now().Format("15:04:05.999999999")+"> ")
	}
	io.WriteString(r.out, msg+"\r\n")
}

// writeBlock writes multi-line output produced by the renderers.
func (r *repl) writeBlock(text string) {
	text = strings.TrimRight(text, "\n")
	io.WriteString(r.out, strings.ReplaceAll(text, "\n", "\r\n")+"\r\n")
}

// handle runs line and reports whether the REPL should stop.
func (r *repl) handle(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) < 1 {
		r.writeLine(`[!] Type "help" for more information.`)
		return false
	}
	switch cmd := args[0]; cmd {
	case "exit", "q":
		r.writeLine("[+] See ya.")
		return true
	case "help":
		io.WriteString(r.out, help+"\r\n")
	case "enable", "disable":
		if len(args) != 2 || args[1] != "timestamp" {
			r.writeLine("[!] Unrecognized command: " + line)
			return false
		}
		r.timestamps = cmd == "enable"
	case "set":
		if len(args) < 3 {
			r.writeLine("[!] Incorrect number of args to set.")
			return false
		}
		r.set(args[1], strings.Join(args[2:], " "))
	case "select":
		if len(args) != 2 {
			r.writeLine("[!] Incorrect number of args to select.")
			return false
		}
		id := args[1]
		if id == "-" {
			id = ""
		}
		if err := r.session.SelectSigner(ctx, id); err != nil {
			r.writeLine("[!] " + err.Error())
		}
	case "sign":
		r.outcome(r.session.Sign(ctx))
	case "verify":
		r.outcome(r.session.Verify(ctx))
	case "verify-key":
		r.outcome(r.session.VerifyWithKeyFile(ctx))
	case "generate":
		r.outcome(r.session.Generate(ctx))
	case "register":
		r.outcome(r.session.Register(ctx))
	case "list":
		format := "text"
		if len(args) == 2 {
			format = args[1]
		}
		r.session.ActivateView(ctx, session.ViewDirectory)
		var b strings.Builder
		if err := writeDirectory(&b, format, r.session.State().Entries, r.dateLayout); err != nil {
			r.writeLine("[!] " + err.Error())
			return false
		}
		r.writeBlock(b.String())
	case "signers":
		r.session.ActivateView(ctx, session.ViewVerify)
		st := r.session.State()
		var b strings.Builder
		render.WriteSignersText(&b, render.SignerOptions(st.Entries, st.Selected))
		r.writeBlock(b.String())
	case "refresh":
		r.session.Refresh(ctx)
		r.writeLine(fmt.Sprintf("[+] %d signers listed.", len(r.session.State().Entries)))
	case "delete":
		if len(args) != 2 {
			r.writeLine("[!] Incorrect number of args to delete.")
			return false
		}
		r.delete(ctx, args[1])
	case "dismiss":
		r.session.DismissAlert()
	case "state":
		r.state()
	case "status":
		h, err := r.service.Health(ctx)
		if err != nil {
			r.writeLine("[!] " + err.Error())
			return false
		}
		var b strings.Builder
		writeHealth(&b, r.service.BaseURL(), h)
		r.writeBlock(b.String())
	default:
		r.writeLine("[!] Unrecognized command: " + cmd)
	}
	return false
}

func (r *repl) set(name, value string) {
	role, err := artifact.ParseRole(name)
	if err != nil {
		r.writeLine("[!] " + err.Error())
		return
	}
	if role.IsField() {
		err = r.session.SetField(role, value)
	} else {
		err = r.session.LoadArtifact(role, value)
	}
	if err != nil {
		r.writeLine("[!] " + err.Error())
	}
}

func (r *repl) outcome(o presenter.Outcome, err error) {
	switch {
	case errors.Is(err, protocol.ErrInputIncomplete):
		r.writeLine("[!] " + err.Error() + `. Type "state" to see what is missing.`)
	case err != nil:
		r.writeLine("[!] " + err.Error())
	case presenter.HasSlot(o.Workflow):
		r.writeLine(render.OutcomeLine(o))
	default:
		r.writeLine(render.AlertLine(o))
	}
}

func (r *repl) delete(ctx context.Context, id string) {
	err := r.session.Delete(ctx, id)
	switch {
	case err == nil:
		r.writeLine("[+] Deleted " + id)
	case errors.Is(err, protocol.ErrDeclined):
	default:
		if a := r.session.State().Presenter.Alert; a != nil {
			r.writeLine(render.AlertLine(*a))
			return
		}
		r.writeLine("[!] " + err.Error())
	}
}

func (r *repl) state() {
	st := r.session.State()
	var b strings.Builder
	for _, role := range artifact.AllRoles() {
		slot, ok := st.Slots[role]
		switch {
		case !ok:
			fmt.Fprintf(&b, "  %-20s -\n", role)
		case role.IsField():
			fmt.Fprintf(&b, "  %-20s %q\n", role, slot.Value)
		default:
			fmt.Fprintf(&b, "  %-20s %s (%d bytes)\n", role, slot.Name, slot.Size)
		}
	}
	selected := st.Selected
	if selected == "" {
		selected = "-"
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "signer", selected)
	en := st.Enablement
	fmt.Fprintf(&b, "enabled: sign=%t verify=%t verify-key=%t generate=%t register=%t\n",
		en.Sign, en.Verify, en.VerifyWithKeyFile, en.Generate, en.Register)
	fmt.Fprintln(&b, render.BusyLine(st.Presenter))
	if st.Presenter.Alert != nil {
		fmt.Fprintln(&b, render.AlertLine(*st.Presenter.Alert))
	}
	r.writeBlock(b.String())
}
