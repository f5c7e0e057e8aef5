package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"moneymanager/internal/cli"
	"moneymanager/internal/config"
	"moneymanager/internal/insight"
	"moneymanager/internal/log"
	"moneymanager/internal/services"
)

// app is the state shared by every command. Tests construct it with a
// ready wallet; otherwise it is built from the environment before the
// first command runs.
type app struct {
	wallet   *services.Wallet
	session  *cli.Session
	cfg      *config.Config
	logger   *log.Logger
	currency string
	out      io.Writer
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	if a.wallet != nil {
		return nil
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.currency = cfg.CurrencySymbol
	a.logger = cli.SetupLogger(cfg, cmd.ErrOrStderr(), log.ComponentCLI)

	session, err := cli.OpenStore(cmd.Context(), cfg, a.logger)
	if err != nil {
		return err
	}
	a.session = session

	client := insight.NewClient(insight.Config{
		RelayURL: cfg.InsightRelayURL,
		Currency: cfg.CurrencySymbol,
	}, a.logger)
	a.wallet = services.NewWallet(session.Store, client, a.logger)
	return nil
}

func (a *app) teardown() error {
	if a.session == nil {
		return nil
	}
	err := a.session.Close()
	a.session = nil
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "moneymanager",
		Short:         "Personal income and expense tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		newTxCmd(a),
		newCategoryCmd(a),
		newAccountCmd(a),
		newDashboardCmd(a),
		newGroupCmd(a),
		newBreakdownCmd(a),
		newInsightCmd(a),
		newResetCmd(a),
		newWatchCmd(a),
	)
	return root
}

func main() {
	a := &app{}
	root := newRootCmd(a)
	if err := root.ExecuteContext(context.Background()); err != nil {
		_ = a.teardown()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
