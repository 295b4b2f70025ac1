package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GiveMe1Star/digital-signature/application"
	"github.com/GiveMe1Star/digital-signature/application/client"
	"github.com/GiveMe1Star/digital-signature/directory"
	"github.com/GiveMe1Star/digital-signature/download"
	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/GiveMe1Star/digital-signature/render"
	"github.com/GiveMe1Star/digital-signature/service"
	"github.com/GiveMe1Star/digital-signature/session"
	"github.com/spf13/cobra"
)

const configMissingUsage = `
Couldn't load client's config-file.

To create a valid config, run
  signclient init
this creates a toml file pointing at the signature service
(http://localhost:8000 unless --address is given).

The client looks for a file called 'config.toml' in its current working directory.
If you prefer the config-file to be named or stored somewhere different you can
specify where to look for the config with the --config flag. For example:
 signclient init --dir /etc/signclient/
 signclient run --config /etc/signclient/config.toml
`

func loadConfig(cmd *cobra.Command) (*client.Config, error) {
	config := cmd.Flag("config").Value.String()
	conf := &client.Config{}
	if err := conf.Load(config, "toml"); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), configMissingUsage)
		return nil, err
	}
	return conf, nil
}

// env is what every command works with once the config is loaded.
type env struct {
	conf    *client.Config
	logger  *application.Logger
	service *service.Client
	session *session.Session
}

func newEnv(cmd *cobra.Command, confirm directory.Confirmer) (*env, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := application.NewLogger(conf.Logger)
	if err != nil {
		return nil, err
	}
	svc := service.New(conf.Address,
		service.WithLogger(logger),
		service.WithTimeout(conf.Timeout.Duration))
	sess, err := session.New(session.Config{
		Service:   svc,
		Downloads: download.NewDir(conf.DownloadDir, logger),
		Confirmer: confirm,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	return &env{conf: conf, logger: logger, service: svc, session: sess}, nil
}

func (e *env) Close() {
	e.session.Close()
	e.logger.Sync()
}

// report prints o and turns a failure outcome into an error for the exit
// status.
func report(w io.Writer, o presenter.Outcome) error {
	fmt.Fprintln(w, render.OutcomeLine(o))
	if !o.OK() {
		return fmt.Errorf("%s failed", o.Workflow)
	}
	return nil
}

// promptConfirmer asks on out and reads the answer from in. Only "y" and
// "yes" confirm.
func promptConfirmer(in io.Reader, out io.Writer) directory.ConfirmFunc {
	r := bufio.NewReader(in)
	return func(ctx context.Context, prompt string) bool {
		fmt.Fprint(out, prompt+" [y/N] ")
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		return isYes(line)
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func acceptAll(context.Context, string) bool { return true }
