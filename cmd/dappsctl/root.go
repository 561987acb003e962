package main

import (
	"fmt"

	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contracts/extension"
	"github.com/colorfulnotion/dappstaking/contracts/staking"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/hostsim"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
	"github.com/spf13/cobra"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string

	cfg      types.CommandConfig
	contract common.AccountId
	caller   common.AccountId
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "dappsctl",
		Short:         "Dapps-staking chain extension tool",
		Long:          `Runs the DappsStakingExtension and Staking contracts against a simulated host ledger and inspects the chain extension wire format.`,
		Version:       fmt.Sprintf("%s (%s)", Version, commit()),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.dataDir, "datadir", "", "ledger directory (default ~/.dappstaking, \""+types.MemoryDataDir+"\" for a throwaway ledger)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: terminal or json")

	rootCmd.AddCommand(
		a.eraCmd(),
		a.eraInfoCmd(),
		a.bondCmd(),
		a.fundCmd(),
		a.balanceCmd(),
		a.advanceEraCmd(),
		encodeCmd(),
		decodeCmd(),
		selectorsCmd(),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := types.LoadCommandConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("datadir") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.InitLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	log.EnableModules(cfg.DebugModules)

	if a.contract, err = common.ParseAccountId(cfg.Contract); err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	if a.caller, err = common.ParseAccountId(cfg.Caller); err != nil {
		return fmt.Errorf("caller: %w", err)
	}
	a.cfg = cfg
	log.Debug(log.CLI, "config", "cfg", cfg.String())
	return nil
}

// session holds both contracts deployed on one open transaction.
type session struct {
	ext *extension.DappsStakingExtension
	stk *staking.Staking
}

func newSession(tx *hostsim.Tx) *session {
	ext := extension.New(tx, dappsstaking.NewExtension(tx))
	return &session{ext: ext, stk: staking.NewOverExtension(tx, ext)}
}

func (a *app) open() (*hostsim.Runtime, error) {
	return hostsim.New(hostsim.Config{DataDir: a.cfg.LedgerDir(), Contract: a.contract})
}

// withSession runs fn as one transaction from the configured caller.
func (a *app) withSession(fn func(s *session) error) error {
	rt, err := a.open()
	if err != nil {
		return err
	}
	defer rt.Close()
	return rt.Transact(a.caller, func(tx *hostsim.Tx) error { return fn(newSession(tx)) })
}
