package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mozhi-it/LAN-Transfer/internal/cli"
	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/filter"
	"github.com/mozhi-it/LAN-Transfer/internal/history"
	"github.com/mozhi-it/LAN-Transfer/internal/keybinds"
	"github.com/mozhi-it/LAN-Transfer/internal/keys"
	"github.com/mozhi-it/LAN-Transfer/internal/logging"
	"github.com/mozhi-it/LAN-Transfer/internal/server"
	"github.com/mozhi-it/LAN-Transfer/internal/session"
	"github.com/mozhi-it/LAN-Transfer/internal/tui"
)

// app is the client-side wiring shared by the TUI and the commands
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	history   *history.Manager
	state     session.State
}

// newApp loads the configuration, opens the log file and the history
// database. Close releases both.
func newApp() (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{cfg: cfg, log: zerolog.Nop()}

	logger, closer, err := logging.File(cfg.LogFile(), cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		a.log, a.logCloser = logger, closer
	}

	if cfg.History.Enabled {
		hist, err := history.NewManager(config.DatabasePath)
		if err != nil {
			a.log.Warn().Err(err).Msg("transfer history unavailable")
		} else {
			a.history = hist
		}
	}

	st, err := session.LoadState(session.StatePath())
	if err != nil {
		a.log.Warn().Err(err).Msg("ignoring session file")
	}
	a.state = st

	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

func (a *app) recorder() history.Recorder {
	if a.history == nil {
		return nil
	}
	return history.LogRecorder{Manager: a.history, Logger: a.log, MaxEntries: a.cfg.History.MaxEntries}
}

// userName prefers an explicitly configured name over the remembered one
func (a *app) userName() string {
	if userNameConfigured() || a.state.UserName == "" {
		return a.cfg.User.Name
	}
	return a.state.UserName
}

func userNameConfigured() bool {
	if viper.InConfig("user.name") {
		return true
	}
	if _, ok := os.LookupEnv("LANTRANSFER_USER_NAME"); ok {
		return true
	}
	f := rootCmd.PersistentFlags().Lookup("user")
	return f != nil && f.Changed
}

func (a *app) session(address string) *session.Session {
	cfg := *a.cfg
	cfg.User.Name = a.userName()
	return session.New(session.Options{
		Address:  address,
		Config:   &cfg,
		Logger:   a.log.With().Str("server", address).Logger(),
		Recorder: a.recorder(),
	})
}

// withRunner builds a session on the configured address and runs fn with a
// command runner. The poller is never started for one-shot commands.
func withRunner(cmd *cobra.Command, fn func(a *app, r *cli.Runner) error) error {
	if err := cli.ValidateFormat(flagOutput); err != nil {
		return err
	}
	if _, err := filter.Compile(flagFilter, flagQuery); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	address, err := config.ParseAddress(a.cfg.ServerAddress())
	if err != nil {
		return err
	}
	sess := a.session(address)
	defer sess.Close()

	opts := cli.RunOptions{
		OutputFormat: flagOutput,
		Filter:       flagFilter,
		Query:        flagQuery,
		Match:        flagMatch,
		Out:          os.Stdout,
		Err:          os.Stderr,
		Color:        !flagNoColor && cli.IsTerminalOutput(),
		Yes:          flagYes,
	}
	if cli.IsInteractive() {
		opts.In = os.Stdin
	}
	return fn(a, cli.New(sess, a.history, opts))
}

// runTUI asks for the server when none is configured, checks that it
// answers, and runs the interactive client until the user quits.
func runTUI(cmd *cobra.Command) error {
	if !keys.IsTerminal(os.Stdin) {
		return fmt.Errorf("the interactive client needs a terminal; see 'lantransfer --help' for commands")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	bindings, err := keybinds.LoadOrDefault(a.cfg.Keys)
	if err != nil {
		return err
	}

	address := a.cfg.Server.Address
	if address == "" {
		address, err = cli.PromptAddress(a.state.LastAddress)
		if errors.Is(err, cli.ErrCancelled) {
			return nil
		}
	} else {
		address, err = config.ParseAddress(address)
	}
	if err != nil {
		return err
	}

	sess := a.session(address)
	defer sess.Close()

	ctx := cmd.Context()
	fmt.Printf("Connecting to %s...\n", address)
	pingCtx, cancel := context.WithTimeout(ctx, a.cfg.Client.ControlTimeout)
	err = sess.Service.Ping(pingCtx)
	cancel()
	if err != nil {
		a.log.Warn().Err(err).Str("address", address).Msg("server unreachable")
		return fmt.Errorf("cannot reach %s: %s", address, errors.Describe(err))
	}

	a.log.Info().Str("address", address).Str("user", sess.UserName()).Msg("session started")
	rt := tui.New(tui.Options{
		Session:  sess,
		Keys:     keys.NewReader(os.Stdin),
		Out:      os.Stdout,
		Bindings: bindings,
	})
	runErr := rt.Run(ctx)

	st := session.State{LastAddress: address, UserName: sess.UserName()}
	if err := session.SaveState(session.StatePath(), st); err != nil {
		a.log.Warn().Err(err).Msg("failed to save session")
	}
	a.log.Info().Err(runErr).Msg("session ended")
	return runErr
}

// runKeys prints the merged key bindings and warns about risky ones
func runKeys(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	bindings, err := keybinds.LoadOrDefault(cfg.Keys)
	if err != nil {
		return err
	}

	for _, w := range keybinds.Check(bindings).Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), w)
	}
	out, err := yaml.Marshal(map[string]keybinds.Config{"keys": keybinds.Export(bindings)})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// runServe runs the file server in the foreground until interrupted
func runServe(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Console(os.Stdout, cfg.Logging.Level)
	srv := server.New(server.Options{
		Listen:         cfg.Serve.Listen,
		UploadDir:      cfg.Serve.UploadDir,
		MaxUploadBytes: cfg.Serve.MaxUploadBytes(),
		Logger:         logger,
	})

	if _, port, err := net.SplitHostPort(cfg.Serve.Listen); err == nil {
		for _, ip := range server.LocalAddresses() {
			logger.Info().Msgf("reachable at http://%s", net.JoinHostPort(ip, port))
		}
	}
	return srv.Run(cmd.Context())
}
